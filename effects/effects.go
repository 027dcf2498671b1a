// Package effects defines the host-supplied escape hatch contract
// instances use to consult external state (price oracles, signing
// emulators) during guard and continuation evaluation. Per spec.md §5,
// any asynchronous provider must be pre-materialized into a synchronous
// one before the compiler runs; this package only describes the
// synchronous interface the compiler itself calls.
package effects

import "github.com/pkg/errors"

// ErrOracleUnavailable is returned by a Provider when it cannot answer a
// query. It propagates out of the compiler unchanged as the
// OracleUnavailable error kind (spec.md §4.D).
var ErrOracleUnavailable = errors.New("effects: oracle unavailable")

// Query is an opaque request a contract instance constructs; the
// compiler never interprets its contents (spec.md §6).
type Query interface{}

// Result is an opaque response a Provider returns for a Query.
type Result interface{}

// Provider is the single method a host must implement to answer
// effect lookups during compilation.
type Provider interface {
	Lookup(query Query) (Result, error)
}

// StaticProvider answers lookups from an in-memory map built before
// compilation starts — the pattern spec.md §5 mandates for hosts with an
// asynchronous underlying oracle ("pre-materialize results into an
// in-memory map before invoking the compiler").
type StaticProvider struct {
	answers map[Query]Result
}

// NewStaticProvider wraps a pre-computed answer map as a Provider.
func NewStaticProvider(answers map[Query]Result) *StaticProvider {
	if answers == nil {
		answers = map[Query]Result{}
	}
	return &StaticProvider{answers: answers}
}

// Lookup implements Provider.
func (p *StaticProvider) Lookup(query Query) (Result, error) {
	result, ok := p.answers[query]
	if !ok {
		return nil, ErrOracleUnavailable
	}
	return result, nil
}

// NoopProvider answers every lookup with ErrOracleUnavailable. It is the
// default Provider for contexts that never consult external state.
type NoopProvider struct{}

// Lookup implements Provider.
func (NoopProvider) Lookup(Query) (Result, error) {
	return nil, ErrOracleUnavailable
}
