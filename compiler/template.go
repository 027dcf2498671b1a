package compiler

import (
	stderrors "errors"

	"github.com/covenantc/compiler/address"
	"github.com/covenantc/compiler/amount"
	"github.com/covenantc/compiler/chainhash"
	"github.com/covenantc/compiler/compctx"
)

// Output is one payment of a Template: either a passthrough on-chain
// address or a child contract the builder compiled on the caller's
// behalf (spec.md §3).
type Output struct {
	Amount   amount.Amount
	Contract *Compiled
	Address  address.Address
	Metadata map[string]string
}

// resolvedAddress returns the on-chain destination this output pays,
// whichever of Contract/Address produced it.
func (o Output) resolvedAddress() address.Address {
	if o.Contract != nil {
		return o.Contract.Address
	}
	return o.Address
}

// Template is a candidate next-transaction description before hashing
// (spec.md §3). Input 0 is reserved for the covenant input; sequences
// for other inputs are caller-provided.
type Template struct {
	Sequences []uint32
	LockTime  uint32
	Outputs   []Output
	Label     string
	Metadata  map[string]string
}

// Builder accumulates one candidate Template. No operation is visible
// until Finalize; Finalize consumes the builder and may not be called
// twice (spec.md §4.B).
type Builder struct {
	ctx      *compctx.Context
	funding  amount.Amount
	outputs  []Output
	seqs     map[int]uint32
	maxSeq   int
	lockTime uint32
	lockSet  bool
	label    string
	metadata map[string]string
	consumed bool
	err      *CompilationError
}

// NewBuilder returns a Builder drawing on ctx's available_amount as the
// funding this template must not exceed.
func NewBuilder(ctx *compctx.Context) *Builder {
	return &Builder{
		ctx:     ctx,
		funding: ctx.Available(),
		seqs:    map[int]uint32{},
		maxSeq:  -1,
	}
}

// AddContractOutput forks a child context carrying amount, compiles
// instance against it, and appends the result as a contract-backed
// output.
func (b *Builder) AddContractOutput(amt amount.Amount, instance ContractInstance, network address.Network, edgeTag string, metadata map[string]string) *Builder {
	if b.consumed {
		return b
	}
	child, err := b.ctx.Fork(amt, edgeTag)
	if err != nil {
		kind := AmountExceeded
		if b.ctx.Cancelled() {
			kind = TerminateCompilation
		} else if stderrors.Is(err, compctx.ErrDepthExceeded) {
			kind = DepthExceeded
		}
		b.fail(newCompilationError(kind, b.ctx.Path(), err.Error()))
		return b
	}
	compiled, cerr := Compile(instance, child, network)
	if cerr != nil {
		b.fail(cerr)
		return b
	}
	b.outputs = append(b.outputs, Output{Amount: amt, Contract: compiled, Metadata: metadata})
	return b
}

// AddAddressOutput consumes amt from the builder's context and appends
// a plain passthrough address output.
func (b *Builder) AddAddressOutput(amt amount.Amount, addr address.Address, metadata map[string]string) *Builder {
	if b.consumed {
		return b
	}
	if err := b.ctx.Consume(amt); err != nil {
		kind := AmountExceeded
		if b.ctx.Cancelled() {
			kind = TerminateCompilation
		}
		b.fail(newCompilationError(kind, b.ctx.Path(), err.Error()))
		return b
	}
	b.outputs = append(b.outputs, Output{Amount: amt, Address: addr, Metadata: metadata})
	return b
}

// SetSequence records a relative lock for inputIndex. Re-setting to a
// disjoint value fails SequenceConflict.
func (b *Builder) SetSequence(inputIndex int, value uint32) *Builder {
	if b.consumed {
		return b
	}
	if existing, ok := b.seqs[inputIndex]; ok && existing != value {
		b.fail(newCompilationError(SequenceConflict, b.ctx.Path(), "input sequence re-set to a disjoint value"))
		return b
	}
	b.seqs[inputIndex] = value
	if inputIndex > b.maxSeq {
		b.maxSeq = inputIndex
	}
	return b
}

// SetLockTime sets the template's absolute lock. Re-setting to a
// disjoint value fails LockTimeConflict.
func (b *Builder) SetLockTime(value uint32) *Builder {
	if b.consumed {
		return b
	}
	if b.lockSet && b.lockTime != value {
		b.fail(newCompilationError(LockTimeConflict, b.ctx.Path(), "lock_time re-set to a disjoint value"))
		return b
	}
	b.lockTime = value
	b.lockSet = true
	return b
}

// SetLabel attaches a human-readable tag to the template.
func (b *Builder) SetLabel(label string) *Builder {
	if b.consumed {
		return b
	}
	b.label = label
	return b
}

// SetMetadata attaches a free-form key/value pair to the template.
func (b *Builder) SetMetadata(key, value string) *Builder {
	if b.consumed {
		return b
	}
	if b.metadata == nil {
		b.metadata = map[string]string{}
	}
	b.metadata[key] = value
	return b
}

func (b *Builder) fail(err *CompilationError) {
	if b.err == nil {
		b.err = err
	}
}

// Finalize freezes the template and computes its commitment hash
// (spec.md §6). It may be called at most once per Builder.
func (b *Builder) Finalize() (*Template, chainhash.Hash, []*Compiled, *CompilationError) {
	if b.consumed {
		return nil, chainhash.Hash{}, nil, newCompilationError(TerminateCompilation, b.ctx.Path(), "builder already finalized")
	}
	b.consumed = true

	if b.err != nil {
		return nil, chainhash.Hash{}, nil, b.err
	}
	if len(b.outputs) == 0 {
		return nil, chainhash.Hash{}, nil, newCompilationError(EmptyTemplate, b.ctx.Path(), "template has no outputs")
	}

	amounts := make([]amount.Amount, len(b.outputs))
	for i, o := range b.outputs {
		amounts[i] = o.Amount
	}
	total, err := amount.Sum(amounts)
	if err != nil || total > b.funding {
		return nil, chainhash.Hash{}, nil, newCompilationError(AmountNotConserved, b.ctx.Path(), "template output total exceeds funding")
	}

	sequences := make([]uint32, b.maxSeq+1)
	for idx, v := range b.seqs {
		sequences[idx] = v
	}

	template := &Template{
		Sequences: sequences,
		LockTime:  b.lockTime,
		Outputs:   append([]Output(nil), b.outputs...),
		Label:     b.label,
		Metadata:  b.metadata,
	}

	h, err := ComputeCommitmentHash(template.LockTime, template.Sequences, template.Outputs, 0)
	if err != nil {
		return nil, chainhash.Hash{}, nil, newCompilationError(PolicyCompilation, b.ctx.Path(), err.Error())
	}

	children := childrenOf(template.Outputs)
	return template, h, children, nil
}

func childrenOf(outputs []Output) []*Compiled {
	var children []*Compiled
	for _, o := range outputs {
		if o.Contract != nil {
			children = append(children, o.Contract)
		}
	}
	return children
}
