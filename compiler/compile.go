package compiler

import (
	stderrors "errors"

	"github.com/covenantc/compiler/address"
	"github.com/covenantc/compiler/amount"
	"github.com/covenantc/compiler/chainhash"
	"github.com/covenantc/compiler/clause"
	"github.com/covenantc/compiler/compctx"
	"github.com/covenantc/compiler/effects"
	"github.com/covenantc/compiler/logger"
	"github.com/covenantc/compiler/policy"
)

var log = logger.Get(logger.TagCompiler)

// Compile is the contract compiler's entry point (spec.md §4.D): given a
// contract instance and the Context funding it, it evaluates guards,
// expands then-continuations and finish-or-funcs, collects finish
// guards, assembles and normalizes the resulting policy, lowers it to an
// on-chain address for network, and emits the Compiled node. It returns
// exactly one of (*Compiled, nil) or (nil, *CompilationError).
func Compile(instance ContractInstance, ctx *compctx.Context, network address.Network) (*Compiled, *CompilationError) {
	if ctx.Cancelled() {
		return nil, newCompilationError(TerminateCompilation, ctx.Path(), "context cancelled before compilation")
	}

	funding := ctx.Available()
	log.Debugf("compiling instance at path %v, funding %s", ctx.Path(), funding)

	// Step 1: evaluate guards once each, cached by name.
	guards := map[string]clause.Clause{}
	for _, g := range instance.Guards() {
		c, err := g.Produce(ctx)
		if err != nil {
			kind := TerminateCompilation
			if stderrors.Is(err, effects.ErrOracleUnavailable) {
				kind = OracleUnavailable
			}
			return nil, newCompilationError(kind, ctx.Path(), "guard "+g.Name+": "+err.Error())
		}
		guards[g.Name] = c
	}

	knownChildren := map[chainhash.Hash][]*Compiled{}
	var branches []clause.Clause

	// Step 2: expand then-continuations — committed (CTV-bound) branches.
	for _, tc := range instance.ThenContinuations() {
		guardClause, ok := guards[tc.GuardRef]
		if !ok {
			return nil, newCompilationError(TerminateCompilation, ctx.Path(), "unknown guard reference "+tc.GuardRef)
		}
		branchCtx := ctx.Sibling(tc.GuardRef)
		builders, err := tc.Then(branchCtx)
		if err != nil {
			kind := TerminateCompilation
			if stderrors.Is(err, effects.ErrOracleUnavailable) {
				kind = OracleUnavailable
			}
			return nil, newCompilationError(kind, ctx.Path(), err.Error())
		}
		for _, b := range builders {
			_, h, children, cerr := b.Finalize()
			if cerr != nil {
				return nil, cerr
			}
			if _, exists := knownChildren[h]; exists {
				return nil, newCompilationError(DuplicateCommitment, ctx.Path(), "commitment hash "+h.String()+" produced twice")
			}
			knownChildren[h] = children
			branches = append(branches, clause.And{Children: []clause.Clause{guardClause, clause.CTV{CommitmentHash: h}}})
		}
	}

	// Step 3: expand finish-or-funcs — advisory, uncommitted branches.
	for _, fo := range instance.FinishOrFuncs() {
		guardClause, ok := guards[fo.GuardRef]
		if !ok {
			return nil, newCompilationError(TerminateCompilation, ctx.Path(), "unknown guard reference "+fo.GuardRef)
		}
		branches = append(branches, guardClause)
		if fo.Finish == nil {
			continue
		}
		branchCtx := ctx.Sibling(fo.GuardRef)
		builders, err := fo.Finish(branchCtx)
		if err != nil {
			kind := TerminateCompilation
			if stderrors.Is(err, effects.ErrOracleUnavailable) {
				kind = OracleUnavailable
			}
			return nil, newCompilationError(kind, ctx.Path(), err.Error())
		}
		for _, b := range builders {
			_, h, children, cerr := b.Finalize()
			if cerr != nil {
				return nil, cerr
			}
			if _, exists := knownChildren[h]; exists {
				return nil, newCompilationError(DuplicateCommitment, ctx.Path(), "commitment hash "+h.String()+" produced twice")
			}
			knownChildren[h] = children
		}
	}

	// Step 4: pure finish guards.
	for _, guardRef := range instance.FinishGuards() {
		guardClause, ok := guards[guardRef]
		if !ok {
			return nil, newCompilationError(TerminateCompilation, ctx.Path(), "unknown guard reference "+guardRef)
		}
		branches = append(branches, guardClause)
	}

	// Step 5: assemble and normalize.
	assembled := clause.Or{Children: branches}
	normalized := clause.Normalize(assembled)
	if _, isUnsat := normalized.(clause.Unsatisfiable); isUnsat || len(branches) == 0 {
		return nil, newCompilationError(NoSpendPaths, ctx.Path(), "policy has no admitted spend path")
	}

	// Step 6: lower to policy and render the address.
	artifact, err := policy.CompileToPolicy(normalized)
	if err != nil {
		return nil, newCompilationError(PolicyCompilation, ctx.Path(), err.Error())
	}
	scriptHash := chainhash.HashB(artifact.Script)
	addr, err := address.NewP2WSH([32]byte(scriptHash), network)
	if err != nil {
		return nil, newCompilationError(PolicyCompilation, ctx.Path(), "rendering address: "+err.Error())
	}

	// Step 7: emit.
	return &Compiled{
		Address:          addr,
		Policy:           normalized,
		PolicyDescriptor: artifact.Descriptor,
		AmountRange:      [2]amount.Amount{0, funding},
		KnownChildren:    knownChildren,
		Metadata:         nil,
	}, nil
}
