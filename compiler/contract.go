package compiler

import (
	"github.com/covenantc/compiler/clause"
	"github.com/covenantc/compiler/compctx"
)

// NamedClauseProducer is one of an instance's guards: a stable name (for
// caching and error breadcrumbs, per spec.md §9) paired with a pure
// function from the current Context to the Clause it guards.
type NamedClauseProducer struct {
	Name    string
	Produce func(ctx *compctx.Context) (clause.Clause, error)
}

// ThenFn drains to a set of in-progress Builders, one per
// forward-commitment branch this continuation offers. The compiler
// drives each to completion via Finalize. FinishFn shares the same
// shape; the difference between a then-continuation and a finish-or-func
// is purely in how the Contract Compiler treats the result (spec.md
// §4.D steps 2 vs 3), not in the function's signature.
type ThenFn func(ctx *compctx.Context) ([]*Builder, error)

// FinishFn is the finish-or continuation shape; see ThenFn.
type FinishFn = ThenFn

// ThenContinuation pairs a guard reference with the function that
// produces its committed forward branches.
type ThenContinuation struct {
	GuardRef string
	Then     ThenFn
}

// FinishOrFunc pairs a guard reference with an optional advisory
// continuation. Finish may be nil: spec.md §4.D's "Option<FinishFn>".
type FinishOrFunc struct {
	GuardRef string
	Finish   FinishFn
}

// UpdateSchema optionally describes parameters a caller may mutate
// between compilations. It plays no role in compilation itself
// (spec.md §4.D.5).
type UpdateSchema struct {
	Fields map[string]string
}

// ContractInstance is the capability set every contract must expose
// (spec.md §4.D): guards, then-continuations, advisory finish
// continuations, pure finish guards, and an optional update schema.
type ContractInstance interface {
	Guards() []NamedClauseProducer
	ThenContinuations() []ThenContinuation
	FinishOrFuncs() []FinishOrFunc
	FinishGuards() []string
	UpdatableMetadata() *UpdateSchema
}
