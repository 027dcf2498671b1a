package compiler

import (
	"testing"

	"github.com/covenantc/compiler/address"
	"github.com/covenantc/compiler/amount"
	"github.com/covenantc/compiler/clause"
	"github.com/covenantc/compiler/compctx"
)

func mustTestKey(t *testing.T, seed byte) *clause.PublicKey {
	t.Helper()
	data := make([]byte, 33)
	data[0] = 0x02
	data[1] = seed
	pk, err := clause.NewPublicKeyFromBytes(data)
	if err != nil {
		t.Fatalf("NewPublicKeyFromBytes: %v", err)
	}
	return pk
}

// payToPublicKey is the S1 scenario fixture: a single owner key, no
// continuations at all.
type payToPublicKey struct {
	key *clause.PublicKey
}

func (p *payToPublicKey) Guards() []NamedClauseProducer {
	return []NamedClauseProducer{
		{Name: "owner", Produce: func(*compctx.Context) (clause.Clause, error) {
			return clause.Key{PubKey: p.key}, nil
		}},
	}
}
func (p *payToPublicKey) ThenContinuations() []ThenContinuation { return nil }
func (p *payToPublicKey) FinishOrFuncs() []FinishOrFunc         { return nil }
func (p *payToPublicKey) FinishGuards() []string                { return []string{"owner"} }
func (p *payToPublicKey) UpdatableMetadata() *UpdateSchema      { return nil }

func TestScenarioS1PayToPublicKey(t *testing.T) {
	alice := mustTestKey(t, 1)
	ctx := compctx.New(amount.Amount(100_000), 5, nil)
	compiled, cerr := Compile(&payToPublicKey{key: alice}, ctx, address.Regtest)
	if cerr != nil {
		t.Fatalf("Compile: %v", cerr)
	}
	if !clause.Equal(compiled.Policy, clause.Key{PubKey: alice}) {
		t.Errorf("policy = %#v, want Key(alice)", compiled.Policy)
	}
	if len(compiled.KnownChildren) != 0 {
		t.Errorf("known_children should be empty, got %v", compiled.KnownChildren)
	}
	if compiled.Address == nil || compiled.Address.EncodeAddress() == "" {
		t.Error("expected a rendered address")
	}
}

// basicEscrow is the S2 scenario fixture: two pure finish guards, no
// templates at all — a 2-of-2 cooperative path and an escrow-assisted
// 1-of-2 path.
type basicEscrow struct {
	alice, bob, escrow *clause.PublicKey
}

func (b *basicEscrow) Guards() []NamedClauseProducer {
	return []NamedClauseProducer{
		{Name: "cooperative", Produce: func(*compctx.Context) (clause.Clause, error) {
			return clause.Threshold{K: 2, Children: []clause.Clause{
				clause.Key{PubKey: b.alice}, clause.Key{PubKey: b.bob},
			}}, nil
		}},
		{Name: "escrow_assisted", Produce: func(*compctx.Context) (clause.Clause, error) {
			return clause.And{Children: []clause.Clause{
				clause.Key{PubKey: b.escrow},
				clause.Threshold{K: 1, Children: []clause.Clause{
					clause.Key{PubKey: b.alice}, clause.Key{PubKey: b.bob},
				}},
			}}, nil
		}},
	}
}
func (b *basicEscrow) ThenContinuations() []ThenContinuation { return nil }
func (b *basicEscrow) FinishOrFuncs() []FinishOrFunc         { return nil }
func (b *basicEscrow) FinishGuards() []string                { return []string{"cooperative", "escrow_assisted"} }
func (b *basicEscrow) UpdatableMetadata() *UpdateSchema      { return nil }

func TestScenarioS2BasicEscrow(t *testing.T) {
	alice, bob, escrow := mustTestKey(t, 1), mustTestKey(t, 2), mustTestKey(t, 3)
	ctx := compctx.New(amount.Amount(100_000), 5, nil)
	compiled, cerr := Compile(&basicEscrow{alice: alice, bob: bob, escrow: escrow}, ctx, address.Regtest)
	if cerr != nil {
		t.Fatalf("Compile: %v", cerr)
	}

	want := clause.Normalize(clause.Or{Children: []clause.Clause{
		clause.Threshold{K: 2, Children: []clause.Clause{clause.Key{PubKey: alice}, clause.Key{PubKey: bob}}},
		clause.And{Children: []clause.Clause{
			clause.Key{PubKey: escrow},
			clause.Threshold{K: 1, Children: []clause.Clause{clause.Key{PubKey: alice}, clause.Key{PubKey: bob}}},
		}},
	}})
	if !clause.Equal(compiled.Policy, want) {
		t.Errorf("policy = %#v, want %#v", compiled.Policy, want)
	}
	if len(compiled.KnownChildren) != 0 {
		t.Error("BasicEscrow should register no known_children")
	}
}

// trustlessEscrow is the S3 scenario fixture: one committed then-branch
// splitting funding straight to the two parties' addresses, plus a pure
// cooperative finish guard.
type trustlessEscrow struct {
	alice, bob         *clause.PublicKey
	aliceAddr, bobAddr address.Address
	aliceAmt, bobAmt   amount.Amount
}

func (e *trustlessEscrow) Guards() []NamedClauseProducer {
	return []NamedClauseProducer{
		{Name: "anyone", Produce: func(*compctx.Context) (clause.Clause, error) {
			return clause.Trivial{}, nil
		}},
		{Name: "cooperative", Produce: func(*compctx.Context) (clause.Clause, error) {
			return clause.And{Children: []clause.Clause{
				clause.Key{PubKey: e.alice}, clause.Key{PubKey: e.bob},
			}}, nil
		}},
	}
}

func (e *trustlessEscrow) ThenContinuations() []ThenContinuation {
	return []ThenContinuation{
		{GuardRef: "anyone", Then: func(ctx *compctx.Context) ([]*Builder, error) {
			b := NewBuilder(ctx).
				AddAddressOutput(e.aliceAmt, e.aliceAddr, nil).
				AddAddressOutput(e.bobAmt, e.bobAddr, nil).
				SetSequence(0, 1700)
			return []*Builder{b}, nil
		}},
	}
}
func (e *trustlessEscrow) FinishOrFuncs() []FinishOrFunc { return nil }
func (e *trustlessEscrow) FinishGuards() []string        { return []string{"cooperative"} }
func (e *trustlessEscrow) UpdatableMetadata() *UpdateSchema { return nil }

func TestScenarioS3TrustlessEscrow(t *testing.T) {
	alice, bob := mustTestKey(t, 1), mustTestKey(t, 2)
	ctx := compctx.New(amount.Amount(100_000), 5, nil)
	fixture := &trustlessEscrow{
		alice: alice, bob: bob,
		aliceAddr: mustAddress(t, 10), bobAddr: mustAddress(t, 11),
		aliceAmt: amount.Amount(30_000), bobAmt: amount.Amount(70_000),
	}
	compiled, cerr := Compile(fixture, ctx, address.Regtest)
	if cerr != nil {
		t.Fatalf("Compile: %v", cerr)
	}
	if len(compiled.KnownChildren) != 1 {
		t.Fatalf("expected exactly one known_children entry, got %d", len(compiled.KnownChildren))
	}
	for h, children := range compiled.KnownChildren {
		if len(children) != 0 {
			t.Errorf("escrow template has no contract outputs, got %d children for %s", len(children), h)
		}
		recomputed, err := ComputeCommitmentHash(0, []uint32{1700}, []Output{
			{Amount: amount.Amount(30_000), Address: fixture.aliceAddr},
			{Amount: amount.Amount(70_000), Address: fixture.bobAddr},
		}, 0)
		if err != nil {
			t.Fatalf("ComputeCommitmentHash: %v", err)
		}
		if recomputed != h {
			t.Errorf("known_children key %s does not match recomputed template hash %s", h, recomputed)
		}
	}
}

// stepVault is a minimal VaultTree-style fixture (SPEC_FULL.md §4.D,
// grounded on sapio-contrib's vault.rs): at each step the owner may
// either advance to the next step (paying amountStep to an immediate
// hot-key passthrough and the remainder to the next vault node) or
// finalize early straight to cold storage. stepsLeft strictly decreases
// on every "step" descent, the well-founded measure spec.md §4.D
// requires for termination.
type stepVault struct {
	stepsLeft  int
	amountStep amount.Amount
	hot, cold  address.Address
}

func (v *stepVault) Guards() []NamedClauseProducer {
	return []NamedClauseProducer{
		{Name: "unlock", Produce: func(*compctx.Context) (clause.Clause, error) {
			return clause.Older{Relative: 144}, nil
		}},
	}
}

func (v *stepVault) ThenContinuations() []ThenContinuation {
	if v.stepsLeft <= 0 {
		return nil
	}
	return []ThenContinuation{
		{GuardRef: "unlock", Then: func(ctx *compctx.Context) ([]*Builder, error) {
			funding := ctx.Available()

			toCold := NewBuilder(ctx.Sibling("to_cold")).AddAddressOutput(funding, v.cold, nil)

			remainder := funding.Sub(v.amountStep)
			next := &stepVault{stepsLeft: v.stepsLeft - 1, amountStep: v.amountStep, hot: v.hot, cold: v.cold}
			step := NewBuilder(ctx.Sibling("step")).
				AddAddressOutput(v.amountStep, v.hot, nil).
				AddContractOutput(remainder, next, address.Regtest, "next", nil)

			return []*Builder{toCold, step}, nil
		}},
	}
}
func (v *stepVault) FinishOrFuncs() []FinishOrFunc { return nil }

// FinishGuards exposes the timelock guard directly once the chain
// bottoms out (stepsLeft reaches zero): a fully matured vault has
// nothing left to commit to, only the same unlock condition every node
// along the way already carries.
func (v *stepVault) FinishGuards() []string {
	if v.stepsLeft <= 0 {
		return []string{"unlock"}
	}
	return nil
}
func (v *stepVault) UpdatableMetadata() *UpdateSchema { return nil }

func TestScenarioS4VaultConservesAmountAtEveryDepth(t *testing.T) {
	ctx := compctx.New(amount.Amount(3_000_000), 10, nil)
	v := &stepVault{stepsLeft: 3, amountStep: amount.Amount(1_000_000), hot: mustAddress(t, 20), cold: mustAddress(t, 21)}
	compiled, cerr := Compile(v, ctx, address.Regtest)
	if cerr != nil {
		t.Fatalf("Compile: %v", cerr)
	}
	if len(compiled.KnownChildren) != 2 {
		t.Fatalf("expected 2 known_children (to_cold, step), got %d", len(compiled.KnownChildren))
	}
}

func TestScenarioS6DepthExhaustionFails(t *testing.T) {
	ctx := compctx.New(amount.Amount(3_000_000), 2, nil)
	v := &stepVault{stepsLeft: 3, amountStep: amount.Amount(1_000_000), hot: mustAddress(t, 20), cold: mustAddress(t, 21)}
	_, cerr := Compile(v, ctx, address.Regtest)
	if cerr == nil {
		t.Fatal("expected DepthExceeded for a vault deeper than the depth budget")
	}
	if cerr.Kind != DepthExceeded {
		t.Errorf("got %v, want DepthExceeded", cerr.Kind)
	}
}

func TestScenarioDeterminismAcrossRepeatedCompiles(t *testing.T) {
	alice := mustTestKey(t, 1)
	compileOnce := func() *Compiled {
		ctx := compctx.New(amount.Amount(100_000), 5, nil)
		compiled, cerr := Compile(&payToPublicKey{key: alice}, ctx, address.Regtest)
		if cerr != nil {
			t.Fatalf("Compile: %v", cerr)
		}
		return compiled
	}
	a, b := compileOnce(), compileOnce()
	if a.Address.EncodeAddress() != b.Address.EncodeAddress() {
		t.Errorf("addresses differ across repeated compiles: %s != %s", a.Address.EncodeAddress(), b.Address.EncodeAddress())
	}
	if a.PolicyDescriptor != b.PolicyDescriptor {
		t.Errorf("policy descriptors differ across repeated compiles: %s != %s", a.PolicyDescriptor, b.PolicyDescriptor)
	}
}
