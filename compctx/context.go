// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package compctx carries the per-compilation-node state threaded
// through the template builder and contract compiler (spec.md §3,
// §4.C): the amount still unassigned at this node, the path of edge
// tags from the root, the remaining recursion budget, and the host's
// effects provider.
package compctx

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/covenantc/compiler/amount"
	"github.com/covenantc/compiler/effects"
)

// ErrDepthExceeded is returned by Fork once depth_budget has been
// exhausted.
var ErrDepthExceeded = errors.New("depth budget exhausted")

// ErrAmountExceeded is returned by Fork when the requested amount would
// overdraw the parent's available_amount.
var ErrAmountExceeded = errors.New("fork amount exceeds available amount")

// Context is the ephemeral compilation-node carrier of spec.md §3.
// Forking decrements the parent's available_amount, gives the child a
// depth_budget one lower than the parent's, and extends the child's
// path; a Context is discarded once the template that owns it is
// finalized.
type Context struct {
	availableAmount amount.Amount
	path            []string
	depthBudget     int
	provider        effects.Provider
	cancelled       *atomic.Bool
}

// New constructs a root Context. Every child Context reachable from it
// via Fork shares the same cancellation flag, so cancelling the root
// cancels the whole compilation tree cooperatively (spec.md §5).
func New(available amount.Amount, depthBudget int, provider effects.Provider) *Context {
	if provider == nil {
		provider = effects.NoopProvider{}
	}
	return &Context{
		availableAmount: available,
		path:            nil,
		depthBudget:     depthBudget,
		provider:        provider,
		cancelled:       new(atomic.Bool),
	}
}

// Available returns the amount still unassigned at this node.
func (c *Context) Available() amount.Amount {
	return c.availableAmount
}

// Path returns the ordered sequence of edge tags from the root.
func (c *Context) Path() []string {
	out := make([]string, len(c.path))
	copy(out, c.path)
	return out
}

// DepthBudget returns the remaining recursion budget at this node.
func (c *Context) DepthBudget() int {
	return c.depthBudget
}

// Effects returns the provider for external oracle lookups.
func (c *Context) Effects() effects.Provider {
	return c.provider
}

// Cancel cooperatively flags this Context's entire compilation tree for
// abort. Callers observe it via Cancelled at the next Fork point.
func (c *Context) Cancel() {
	c.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called anywhere in this
// Context's tree.
func (c *Context) Cancelled() bool {
	return c.cancelled.Load()
}

// Fork splits a child Context for a single child-contract output: the
// parent's available_amount decreases by amount, the child's path is
// extended with edgeTag, and depth_budget decrements by one. Forking
// more amount than is available, forking past a zero depth_budget, or
// forking an already-cancelled Context all fail — the first two are
// fatal to the caller's compilation, the last is how cancellation
// propagates cooperatively through the tree (spec.md §5).
func (c *Context) Fork(amt amount.Amount, edgeTag string) (*Context, error) {
	if c.Cancelled() {
		return nil, errors.New("context cancelled")
	}
	if c.depthBudget <= 0 {
		return nil, ErrDepthExceeded
	}
	if amt > c.availableAmount {
		return nil, errors.Wrapf(ErrAmountExceeded, "requested %s, have %s", amt, c.availableAmount)
	}

	c.availableAmount = c.availableAmount.Sub(amt)

	childPath := make([]string, len(c.path)+1)
	copy(childPath, c.path)
	childPath[len(c.path)] = edgeTag

	return &Context{
		availableAmount: amt,
		path:            childPath,
		depthBudget:     c.depthBudget - 1,
		provider:        c.provider,
		cancelled:       c.cancelled,
	}, nil
}

// Consume decrements available_amount by amt without descending (no new
// path segment, no depth_budget change). The template builder uses this
// for address outputs, which spend funding at this node but never
// recurse into a child contract compilation.
func (c *Context) Consume(amt amount.Amount) error {
	if c.Cancelled() {
		return errors.New("context cancelled")
	}
	if amt > c.availableAmount {
		return errors.Wrapf(ErrAmountExceeded, "requested %s, have %s", amt, c.availableAmount)
	}
	c.availableAmount = c.availableAmount.Sub(amt)
	return nil
}

// Sibling returns an independent per-branch context carrying the same
// available_amount and depth_budget as c, but without drawing down c's
// own bookkeeping. Alternative continuations of one contract node (the
// branches of an Or) are mutually exclusive on-chain — only one is ever
// actually spent — so evaluating each of them to build the policy tree
// must not make them compete for a single shared budget the way genuine
// descents into child contracts do via Fork.
func (c *Context) Sibling(edgeTag string) *Context {
	childPath := make([]string, len(c.path)+1)
	copy(childPath, c.path)
	childPath[len(c.path)] = edgeTag

	return &Context{
		availableAmount: c.availableAmount,
		path:            childPath,
		depthBudget:     c.depthBudget,
		provider:        c.provider,
		cancelled:       c.cancelled,
	}
}
