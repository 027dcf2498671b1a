package compiler

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/covenantc/compiler/amount"
)

func TestComputeCommitmentHashIsDeterministic(t *testing.T) {
	outputs := []Output{
		{Amount: amount.Amount(300), Address: mustAddress(t, 1)},
		{Amount: amount.Amount(400), Address: mustAddress(t, 2)},
	}
	h1, err := ComputeCommitmentHash(144, []uint32{0, 0xffffffff}, outputs, 0)
	if err != nil {
		t.Fatalf("ComputeCommitmentHash: %v", err)
	}
	h2, err := ComputeCommitmentHash(144, []uint32{0, 0xffffffff}, outputs, 0)
	if err != nil {
		t.Fatalf("ComputeCommitmentHash: %v", err)
	}
	if h1 != h2 {
		t.Errorf("hash not deterministic: %s != %s\noutputs:\n%s", h1, h2, spew.Sdump(outputs))
	}
}

func TestComputeCommitmentHashDiffersOnOutputChange(t *testing.T) {
	base := []Output{{Amount: amount.Amount(300), Address: mustAddress(t, 1)}}
	changed := []Output{{Amount: amount.Amount(301), Address: mustAddress(t, 1)}}

	h1, err := ComputeCommitmentHash(0, nil, base, 0)
	if err != nil {
		t.Fatalf("ComputeCommitmentHash: %v", err)
	}
	h2, err := ComputeCommitmentHash(0, nil, changed, 0)
	if err != nil {
		t.Fatalf("ComputeCommitmentHash: %v", err)
	}
	if h1 == h2 {
		t.Error("changing an output amount should change the commitment hash")
	}
}

func TestComputeCommitmentHashDiffersOnLockTime(t *testing.T) {
	outputs := []Output{{Amount: amount.Amount(300), Address: mustAddress(t, 1)}}
	h1, err := ComputeCommitmentHash(100, nil, outputs, 0)
	if err != nil {
		t.Fatalf("ComputeCommitmentHash: %v", err)
	}
	h2, err := ComputeCommitmentHash(200, nil, outputs, 0)
	if err != nil {
		t.Fatalf("ComputeCommitmentHash: %v", err)
	}
	if h1 == h2 {
		t.Error("changing lock_time should change the commitment hash")
	}
}

func TestComputeCommitmentHashRejectsUnresolvedOutput(t *testing.T) {
	outputs := []Output{{Amount: amount.Amount(300)}}
	if _, err := ComputeCommitmentHash(0, nil, outputs, 0); err == nil {
		t.Fatal("expected an error for an output with no resolved address")
	}
}
