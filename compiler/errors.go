package compiler

import (
	"fmt"
	"strings"
)

// CompilationErrorKind tags the fatal, never-retried-locally error
// taxonomy of spec.md §4.D and §4.B.
type CompilationErrorKind int

const (
	// TerminateCompilation is a generic abort raised by a contract
	// instance itself, or by cooperative cancellation.
	TerminateCompilation CompilationErrorKind = iota
	// AmountExceeded means an output or fork requested more than the
	// node's available_amount.
	AmountExceeded
	// AmountNotConserved means a template's outputs summed to more than
	// its funding amount.
	AmountNotConserved
	// SequenceConflict means an input's relative lock was re-set to a
	// disjoint value.
	SequenceConflict
	// LockTimeConflict means a template's absolute lock was re-set to a
	// disjoint value.
	LockTimeConflict
	// PolicyCompilation means the assembled clause could not be lowered
	// to the target script under its constraints.
	PolicyCompilation
	// DuplicateCommitment means two templates produced the same
	// commitment hash within one node's known_children.
	DuplicateCommitment
	// NoSpendPaths means the assembled policy normalized to
	// Unsatisfiable or had no branches at all.
	NoSpendPaths
	// DepthExceeded means depth_budget reached zero before recursion
	// terminated.
	DepthExceeded
	// OracleUnavailable is propagated unchanged from an effects.Provider
	// lookup failure.
	OracleUnavailable
	// EmptyTemplate means a template builder was finalized with no
	// outputs.
	EmptyTemplate
)

func (k CompilationErrorKind) String() string {
	switch k {
	case TerminateCompilation:
		return "TerminateCompilation"
	case AmountExceeded:
		return "AmountExceeded"
	case AmountNotConserved:
		return "AmountNotConserved"
	case SequenceConflict:
		return "SequenceConflict"
	case LockTimeConflict:
		return "LockTimeConflict"
	case PolicyCompilation:
		return "PolicyCompilation"
	case DuplicateCommitment:
		return "DuplicateCommitment"
	case NoSpendPaths:
		return "NoSpendPaths"
	case DepthExceeded:
		return "DepthExceeded"
	case OracleUnavailable:
		return "OracleUnavailable"
	case EmptyTemplate:
		return "EmptyTemplate"
	default:
		return fmt.Sprintf("CompilationErrorKind(%d)", int(k))
	}
}

// CompilationError is the sole error type the compiler entry point
// returns (spec.md §7): a machine-readable Kind, a breadcrumb Path
// locating the failing subcontract, and human-readable Detail.
type CompilationError struct {
	Kind   CompilationErrorKind
	Path   []string
	Detail string
}

func (e *CompilationError) Error() string {
	where := "root"
	if len(e.Path) > 0 {
		where = strings.Join(e.Path, "/")
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, where, e.Detail)
}

func newCompilationError(kind CompilationErrorKind, path []string, detail string) *CompilationError {
	p := make([]string, len(path))
	copy(p, path)
	return &CompilationError{Kind: kind, Path: p, Detail: detail}
}
