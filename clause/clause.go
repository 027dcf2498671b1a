// Package clause implements the spending-condition algebra of spec.md
// §3–§4.A: a small tagged-union expression language, a normalizer that
// rewrites to a canonical fixpoint, and structural equality over it.
// Lowering the normalized form to a script policy lives in the sibling
// package policy, to keep clause free of any script/address dependency.
package clause

// Clause is a spending condition. It forms a finite tree (spec.md §3,
// "clauses form a finite tree; no cycles") — every concrete clause type
// below only ever holds other Clauses or scalar leaves, so acyclicity is
// a property of Go's value construction, not something the algebra has
// to check separately.
type Clause interface {
	isClause()
}

// Key requires a signature from the given public key.
type Key struct {
	PubKey *PublicKey
}

func (Key) isClause() {}

// Threshold requires at least K of Children to be satisfied.
type Threshold struct {
	K        int
	Children []Clause
}

func (Threshold) isClause() {}

// And requires every child to be satisfied. Semantically Threshold(len(Children), Children).
type And struct {
	Children []Clause
}

func (And) isClause() {}

// Or requires any child to be satisfied. Semantically Threshold(1, Children).
type Or struct {
	Children []Clause
}

func (Or) isClause() {}

// Older requires the input's relative locktime to have matured by at
// least Relative units (BIP-68 semantics).
type Older struct {
	Relative uint32
}

func (Older) isClause() {}

// After requires the transaction's absolute locktime to be at least
// Absolute (BIP-65 semantics).
type After struct {
	Absolute uint32
}

func (After) isClause() {}

// Hash requires revealing a preimage whose SHA256 equals Commitment.
type Hash struct {
	Commitment [32]byte
}

func (Hash) isClause() {}

// CTV requires the spending transaction's BIP-119 commitment hash to
// equal CommitmentHash exactly (spec.md §6).
type CTV struct {
	CommitmentHash [32]byte
}

func (CTV) isClause() {}

// Trivial is always satisfied; the identity element for And.
type Trivial struct{}

func (Trivial) isClause() {}

// Unsatisfiable is never satisfied; the identity element for Or.
type Unsatisfiable struct{}

func (Unsatisfiable) isClause() {}
