package compiler

import (
	"encoding/json"

	"github.com/covenantc/compiler/address"
	"github.com/covenantc/compiler/amount"
	"github.com/covenantc/compiler/chainhash"
	"github.com/covenantc/compiler/clause"
)

// Compiled is the output of compiling a contract instance (spec.md §3):
// an on-chain address, the lowered policy, the amount range this node
// may validly receive, and every committed or advisory child discovered
// while compiling it.
//
// known_children is generalized from the spec's one-hash-to-one-Compiled
// mapping to one-hash-to-many, since a single committed template may
// carry more than one contract output. The vault scenario's "step"
// template carries one: it pays its hot-key share to a plain address,
// not to a child contract, and only the next vault node is compiled.
// An address-only template still gets an entry, with an empty slice.
type Compiled struct {
	Address          address.Address
	Policy           clause.Clause
	PolicyDescriptor string
	AmountRange      [2]amount.Amount
	KnownChildren    map[chainhash.Hash][]*Compiled
	Descriptors      []string
	Metadata         map[string]string
}

type compiledJSON struct {
	Address        string                 `json:"address"`
	Policy         string                 `json:"policy"`
	AmountRange    [2]uint64              `json:"amount_range"`
	KnownChildren  map[string][]*Compiled `json:"known_children"`
	MetadataMapS2S map[string]string      `json:"metadata_map_s2s"`
	Descriptors    []string               `json:"descriptors,omitempty"`
}

// MarshalJSON renders the Compiled artifact per spec.md §6's schema.
func (c *Compiled) MarshalJSON() ([]byte, error) {
	addr := ""
	if c.Address != nil {
		addr = c.Address.EncodeAddress()
	}
	knownChildren := make(map[string][]*Compiled, len(c.KnownChildren))
	for h, children := range c.KnownChildren {
		knownChildren[h.String()] = children
	}
	return json.Marshal(compiledJSON{
		Address:        addr,
		Policy:         c.PolicyDescriptor,
		AmountRange:    [2]uint64{uint64(c.AmountRange[0]), uint64(c.AmountRange[1])},
		KnownChildren:  knownChildren,
		MetadataMapS2S: c.Metadata,
		Descriptors:    c.Descriptors,
	})
}
