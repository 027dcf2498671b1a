// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package address renders the on-chain descriptor a Compiled contract
// node carries (spec.md §3, "address: on-chain descriptor derived from
// policy"). It is adapted from the teacher's util.Address family, swapping
// Bech32Prefix/P2PKH/P2SH for the witness-program addresses spec.md §6
// calls for: P2WSH and, where the backend supports it, P2TR.
package address

import (
	"github.com/pkg/errors"

	"github.com/covenantc/compiler/bech32"
)

// Network identifies which chain an address is rendered for. Compilation
// requires the host to supply it (spec.md §6, "rendering the address
// requires the target network ... supplied by the host").
type Network int

const (
	// Mainnet is the production Bitcoin network.
	Mainnet Network = iota
	// Testnet is the public test network.
	Testnet
	// Regtest is a local regression-test network.
	Regtest
)

// humanReadablePart returns the bech32 HRP for the network, mirroring the
// teacher's per-network Bech32Prefix dispatch.
func (n Network) humanReadablePart() (string, error) {
	switch n {
	case Mainnet:
		return "bc", nil
	case Testnet:
		return "tb", nil
	case Regtest:
		return "bcrt", nil
	default:
		return "", errors.Errorf("unknown network %d", n)
	}
}

// String implements fmt.Stringer.
func (n Network) String() string {
	switch n {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	case Regtest:
		return "regtest"
	default:
		return "unknown"
	}
}

// Address is an on-chain payment destination. Part of the Address
// interface the teacher's util package exposes; here it is narrowed to
// what the compiler needs: the string encoding, the witness program and
// its witness version.
type Address interface {
	// EncodeAddress returns the string encoding of the address.
	EncodeAddress() string
	// ScriptPubKeyProgram returns the raw witness program bytes to be
	// committed inside a txout's scriptPubKey.
	ScriptPubKeyProgram() []byte
	// WitnessVersion returns the segwit witness version for the address.
	WitnessVersion() byte
}

// witnessAddress is the shared implementation for P2WSH and P2TR — both
// are single witness-version, single-program segwit addresses; only the
// version and the program's provenance differ.
type witnessAddress struct {
	network Network
	version byte
	program [32]byte
	encoded string
}

// EncodeAddress implements Address.
func (a *witnessAddress) EncodeAddress() string { return a.encoded }

// ScriptPubKeyProgram implements Address.
func (a *witnessAddress) ScriptPubKeyProgram() []byte {
	out := make([]byte, len(a.program))
	copy(out, a.program[:])
	return out
}

// WitnessVersion implements Address.
func (a *witnessAddress) WitnessVersion() byte { return a.version }

// NewP2WSH returns a pay-to-witness-script-hash address (witness version
// 0) for the given 32-byte SHA256 of a script.
func NewP2WSH(scriptHash [32]byte, network Network) (Address, error) {
	return newWitnessAddress(scriptHash, 0, network)
}

// NewP2TR returns a pay-to-taproot address (witness version 1) for the
// given 32-byte output key, used when the policy backend can produce a
// Taproot output key instead of a P2WSH script hash. The string uses the
// same BIP-173 bech32 checksum as NewP2WSH; bech32m is not implemented.
func NewP2TR(outputKey [32]byte, network Network) (Address, error) {
	return newWitnessAddress(outputKey, 1, network)
}

func newWitnessAddress(program [32]byte, version byte, network Network) (Address, error) {
	hrp, err := network.humanReadablePart()
	if err != nil {
		return nil, err
	}
	encoded, err := bech32.Encode(hrp, program[:], version)
	if err != nil {
		return nil, errors.Wrap(err, "encoding witness address")
	}
	return &witnessAddress{network: network, version: version, program: program, encoded: encoded}, nil
}

// Decode parses a bech32 witness address string back into an Address,
// verifying it matches the expected network.
func Decode(addr string, expected Network) (Address, error) {
	hrp, program, version, err := bech32.Decode(addr)
	if err != nil {
		return nil, errors.Wrap(err, "decoding address")
	}
	wantHRP, err := expected.humanReadablePart()
	if err != nil {
		return nil, err
	}
	if hrp != wantHRP {
		return nil, errors.Errorf("address is for a different network: got hrp %q, want %q", hrp, wantHRP)
	}
	if len(program) != 32 {
		return nil, errors.Errorf("unsupported witness program length %d", len(program))
	}
	var prog [32]byte
	copy(prog[:], program)
	return &witnessAddress{network: expected, version: version, program: prog, encoded: addr}, nil
}
