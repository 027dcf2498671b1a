package compctx

import (
	"testing"

	"github.com/covenantc/compiler/amount"
	"github.com/covenantc/compiler/effects"
)

func TestForkDecrementsAvailableAndDepth(t *testing.T) {
	root := New(amount.Amount(1000), 3, nil)
	child, err := root.Fork(amount.Amount(400), "left")
	if err != nil {
		t.Fatalf("Fork: %v", err)
	}

	if root.Available() != amount.Amount(600) {
		t.Errorf("parent available = %s, want 600 sat", root.Available())
	}
	if child.Available() != amount.Amount(400) {
		t.Errorf("child available = %s, want 400 sat", child.Available())
	}
	if child.DepthBudget() != 2 {
		t.Errorf("child depth budget = %d, want 2", child.DepthBudget())
	}
	if got := child.Path(); len(got) != 1 || got[0] != "left" {
		t.Errorf("child path = %v, want [left]", got)
	}
}

func TestForkRejectsOverdraw(t *testing.T) {
	root := New(amount.Amount(100), 3, nil)
	if _, err := root.Fork(amount.Amount(200), "x"); err == nil {
		t.Fatal("expected an error forking more than available")
	}
}

func TestForkRejectsZeroDepthBudget(t *testing.T) {
	root := New(amount.Amount(100), 0, nil)
	if _, err := root.Fork(amount.Amount(10), "x"); err != ErrDepthExceeded {
		t.Fatalf("err = %v, want ErrDepthExceeded", err)
	}
}

func TestForkSumNeverExceedsParentInitialAmount(t *testing.T) {
	root := New(amount.Amount(1000), 5, nil)
	var forked []*Context
	for i := 0; i < 3; i++ {
		child, err := root.Fork(amount.Amount(300), "edge")
		if err != nil {
			t.Fatalf("Fork %d: %v", i, err)
		}
		forked = append(forked, child)
	}
	if _, err := root.Fork(amount.Amount(300), "edge"); err == nil {
		t.Fatal("expected fourth fork to exceed the parent's remaining amount")
	}
	if len(forked) != 3 {
		t.Fatalf("expected 3 successful forks, got %d", len(forked))
	}
}

func TestCancelPropagatesToForkedChildren(t *testing.T) {
	root := New(amount.Amount(1000), 5, nil)
	child, err := root.Fork(amount.Amount(100), "edge")
	if err != nil {
		t.Fatalf("Fork: %v", err)
	}
	root.Cancel()
	if !child.Cancelled() {
		t.Fatal("child should observe cancellation via the shared flag")
	}
	if _, err := child.Fork(amount.Amount(10), "deeper"); err == nil {
		t.Fatal("expected Fork on a cancelled context to fail")
	}
}

func TestNewDefaultsToNoopProvider(t *testing.T) {
	root := New(amount.Amount(1), 1, nil)
	if _, ok := root.Effects().(effects.NoopProvider); !ok {
		t.Errorf("Effects() = %T, want effects.NoopProvider", root.Effects())
	}
}

func TestConsumeDecrementsWithoutDescending(t *testing.T) {
	root := New(amount.Amount(1000), 3, nil)
	if err := root.Consume(amount.Amount(250)); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if root.Available() != amount.Amount(750) {
		t.Errorf("available = %s, want 750 sat", root.Available())
	}
	if root.DepthBudget() != 3 {
		t.Errorf("depth budget changed by Consume, got %d", root.DepthBudget())
	}
	if len(root.Path()) != 0 {
		t.Errorf("path changed by Consume, got %v", root.Path())
	}
}

func TestSiblingsEachGetTheFullBudgetIndependently(t *testing.T) {
	root := New(amount.Amount(1000), 3, nil)
	a := root.Sibling("step")
	b := root.Sibling("to_cold")

	if a.Available() != amount.Amount(1000) || b.Available() != amount.Amount(1000) {
		t.Fatalf("siblings should each start with the full parent budget, got a=%s b=%s", a.Available(), b.Available())
	}
	if _, err := a.Fork(amount.Amount(900), "child"); err != nil {
		t.Fatalf("a.Fork: %v", err)
	}
	if _, err := b.Fork(amount.Amount(900), "child"); err != nil {
		t.Fatalf("b.Fork should not be constrained by a's spending: %v", err)
	}
	if root.Available() != amount.Amount(1000) {
		t.Errorf("root available should be untouched by sibling forks, got %s", root.Available())
	}
}
