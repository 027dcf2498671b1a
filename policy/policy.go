// Package policy lowers a normalized clause.Clause into the target
// script policy language (spec.md §4.A, "compile_to_policy"): a
// Miniscript-family textual descriptor plus the raw Bitcoin Script bytes
// that descriptor compiles to, modeled on the rust-miniscript policy
// grammar (pk/and/or/thresh/older/after/sha256). The descriptor is not
// itself valid Miniscript policy: and/or take any number of arguments,
// and CTV and Trivial leaves render as ctv(<hash>) and TRUE.
package policy

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"

	"github.com/covenantc/compiler/clause"
	"github.com/covenantc/compiler/scriptbuilder"
)

// PolicyArtifact is the lowered form of a clause: a textual descriptor
// for interop, the compiled script bytes, and a witness-weight estimate.
// The estimate is reported only; which encoding a clause lowers to is
// fixed by its shape (see lowerMultisigThreshold) and does not read it.
type PolicyArtifact struct {
	Descriptor    string
	Script        []byte
	WitnessWeight int
}

// CompileToPolicy lowers a clause (normally already clause.Normalize'd)
// into a PolicyArtifact, or fails with a wrapped PolicyCompilation error
// when the clause cannot be expressed under the target script
// constraints.
func CompileToPolicy(c clause.Clause) (*PolicyArtifact, error) {
	artifact, err := lower(c)
	if err != nil {
		return nil, errors.Wrap(err, "policy compilation")
	}
	return artifact, nil
}

func lower(c clause.Clause) (*PolicyArtifact, error) {
	switch v := c.(type) {
	case clause.Key:
		return lowerKey(v)
	case clause.Older:
		return lowerOlder(v)
	case clause.After:
		return lowerAfter(v)
	case clause.Hash:
		return lowerHash(v)
	case clause.CTV:
		return lowerCTV(v)
	case clause.Trivial:
		return &PolicyArtifact{Descriptor: "TRUE", Script: []byte{byte(scriptbuilder.OpTrue)}, WitnessWeight: 0}, nil
	case clause.Unsatisfiable:
		return nil, errors.New("clause has no satisfying assignment (Unsatisfiable)")
	case clause.And:
		return lowerAnd(v.Children)
	case clause.Or:
		return lowerOr(v.Children)
	case clause.Threshold:
		return lowerThreshold(v.K, v.Children)
	default:
		return nil, errors.Errorf("unknown clause type %T", c)
	}
}

func lowerKey(v clause.Key) (*PolicyArtifact, error) {
	hexKey := v.PubKey.String()
	script, err := scriptbuilder.NewScriptBuilder().
		AddData(v.PubKey.Bytes()).
		AddOp(scriptbuilder.OpCheckSig).
		Script()
	if err != nil {
		return nil, errors.Wrap(err, "building pk script")
	}
	return &PolicyArtifact{
		Descriptor:    fmt.Sprintf("pk(%s)", hexKey),
		Script:        script,
		WitnessWeight: 66, // roughly a 64-byte Schnorr signature plus a length byte
	}, nil
}

func lowerOlder(v clause.Older) (*PolicyArtifact, error) {
	script, err := scriptbuilder.NewScriptBuilder().
		AddInt64(int64(v.Relative)).
		AddOp(scriptbuilder.OpCheckSequenceVerify).
		AddOp(scriptbuilder.OpDrop).
		Script()
	if err != nil {
		return nil, errors.Wrap(err, "building older script")
	}
	return &PolicyArtifact{
		Descriptor:    fmt.Sprintf("older(%d)", v.Relative),
		Script:        script,
		WitnessWeight: 0,
	}, nil
}

func lowerAfter(v clause.After) (*PolicyArtifact, error) {
	script, err := scriptbuilder.NewScriptBuilder().
		AddInt64(int64(v.Absolute)).
		AddOp(scriptbuilder.OpCheckLockTimeVerify).
		AddOp(scriptbuilder.OpDrop).
		Script()
	if err != nil {
		return nil, errors.Wrap(err, "building after script")
	}
	return &PolicyArtifact{
		Descriptor:    fmt.Sprintf("after(%d)", v.Absolute),
		Script:        script,
		WitnessWeight: 0,
	}, nil
}

func lowerHash(v clause.Hash) (*PolicyArtifact, error) {
	script, err := scriptbuilder.NewScriptBuilder().
		AddOp(scriptbuilder.OpSha256).
		AddData(v.Commitment[:]).
		AddOp(scriptbuilder.OpEqualVerify).
		Script()
	if err != nil {
		return nil, errors.Wrap(err, "building sha256 script")
	}
	return &PolicyArtifact{
		Descriptor:    fmt.Sprintf("sha256(%s)", hex.EncodeToString(v.Commitment[:])),
		Script:        script,
		WitnessWeight: 33, // a 32-byte preimage plus a length byte
	}, nil
}

func lowerCTV(v clause.CTV) (*PolicyArtifact, error) {
	script, err := scriptbuilder.NewScriptBuilder().
		AddData(v.CommitmentHash[:]).
		AddOp(scriptbuilder.OpCheckTemplateVerify).
		Script()
	if err != nil {
		return nil, errors.Wrap(err, "building ctv script")
	}
	return &PolicyArtifact{
		Descriptor:    fmt.Sprintf("ctv(%s)", hex.EncodeToString(v.CommitmentHash[:])),
		Script:        script,
		WitnessWeight: 0, // CTV needs no witness data beyond the spend itself
	}, nil
}

func lowerAnd(children []clause.Clause) (*PolicyArtifact, error) {
	if len(children) == 0 {
		return nil, errors.New("And with no children")
	}
	lowered := make([]*PolicyArtifact, len(children))
	for i, child := range children {
		artifact, err := lower(child)
		if err != nil {
			return nil, err
		}
		lowered[i] = artifact
	}

	builder := scriptbuilder.NewScriptBuilder()
	descriptors := make([]string, len(lowered))
	weight := 0
	for i, artifact := range lowered {
		descriptors[i] = artifact.Descriptor
		weight += artifact.WitnessWeight
		builder.AppendRaw(artifact.Script)
		if i != len(lowered)-1 {
			builder.AddOp(scriptbuilder.OpVerify)
		}
	}
	script, err := builder.Script()
	if err != nil {
		return nil, errors.Wrap(err, "building and() script")
	}
	return &PolicyArtifact{
		Descriptor:    "and(" + joinDescriptors(descriptors) + ")",
		Script:        script,
		WitnessWeight: weight,
	}, nil
}

func lowerOr(children []clause.Clause) (*PolicyArtifact, error) {
	if len(children) == 0 {
		return nil, errors.New("Or with no children")
	}
	lowered := make([]*PolicyArtifact, len(children))
	for i, child := range children {
		artifact, err := lower(child)
		if err != nil {
			return nil, err
		}
		lowered[i] = artifact
	}

	script, err := buildOrChain(lowered)
	if err != nil {
		return nil, err
	}

	descriptors := make([]string, len(lowered))
	minWeight := lowered[0].WitnessWeight
	for i, artifact := range lowered {
		descriptors[i] = artifact.Descriptor
		if artifact.WitnessWeight < minWeight {
			minWeight = artifact.WitnessWeight
		}
	}
	return &PolicyArtifact{
		Descriptor:    "or(" + joinDescriptors(descriptors) + ")",
		Script:        script,
		WitnessWeight: minWeight + 1, // +1 for the branch-selector push
	}, nil
}

// buildOrChain emits a right-nested IF/ELSE/ENDIF tree: the spender
// selects a branch by prefixing the witness with the right run of
// true/false selector bits, the standard Script encoding of a policy OR
// when a single script (rather than a Taproot multi-leaf tree) must
// express every branch.
func buildOrChain(branches []*PolicyArtifact) ([]byte, error) {
	if len(branches) == 1 {
		return branches[0].Script, nil
	}
	b := scriptbuilder.NewScriptBuilder()
	b.AddOp(scriptbuilder.OpIf)
	b.AppendRaw(branches[0].Script)
	b.AddOp(scriptbuilder.OpElse)
	rest, err := buildOrChain(branches[1:])
	if err != nil {
		return nil, err
	}
	b.AppendRaw(rest)
	b.AddOp(scriptbuilder.OpEndIf)
	return b.Script()
}

func lowerThreshold(k int, children []clause.Clause) (*PolicyArtifact, error) {
	if k < 1 || k > len(children) {
		return nil, errors.Errorf("threshold %d of %d children is out of range", k, len(children))
	}
	if len(children) > scriptbuilder.MaxStackSize {
		return nil, errors.Errorf("threshold of %d children exceeds max stack size %d", len(children), scriptbuilder.MaxStackSize)
	}

	ctvCount := 0
	for _, child := range children {
		if _, ok := child.(clause.CTV); ok {
			ctvCount++
		}
	}
	if ctvCount > 1 {
		return nil, errors.New("threshold requires more than one covenant commitment simultaneously, which can never be satisfied")
	}

	lowered := make([]*PolicyArtifact, len(children))
	allKeys := true
	for i, child := range children {
		artifact, err := lower(child)
		if err != nil {
			return nil, err
		}
		lowered[i] = artifact
		if _, ok := child.(clause.Key); !ok {
			allKeys = false
		}
	}

	descriptors := make([]string, len(lowered))
	for i, artifact := range lowered {
		descriptors[i] = artifact.Descriptor
	}
	descriptor := fmt.Sprintf("thresh(%d,%s)", k, joinDescriptors(descriptors))

	if allKeys {
		return lowerMultisigThreshold(k, children, descriptor)
	}
	return lowerGenericThreshold(k, lowered, descriptor)
}

// lowerMultisigThreshold takes the lower-weight native OP_CHECKMULTISIG
// encoding when every branch of the threshold is a bare key — the
// tie-break rule spec.md §4.A calls for ("prefer the one minimizing
// witness weight").
func lowerMultisigThreshold(k int, children []clause.Clause, descriptor string) (*PolicyArtifact, error) {
	builder := scriptbuilder.NewScriptBuilder().AddInt64(int64(k))
	for _, child := range children {
		builder.AddData(child.(clause.Key).PubKey.Bytes())
	}
	builder.AddInt64(int64(len(children))).AddOp(scriptbuilder.OpCheckMultiSig)
	script, err := builder.Script()
	if err != nil {
		return nil, errors.Wrap(err, "building multisig threshold script")
	}
	return &PolicyArtifact{
		Descriptor:    descriptor,
		Script:        script,
		WitnessWeight: 66 * k, // k signatures, no redundant per-branch proof overhead
	}, nil
}

// lowerGenericThreshold handles a threshold whose branches aren't all
// bare keys by pushing each branch's own 0/1 result and summing them,
// the standard Miniscript thresh() compilation.
func lowerGenericThreshold(k int, lowered []*PolicyArtifact, descriptor string) (*PolicyArtifact, error) {
	builder := scriptbuilder.NewScriptBuilder()
	weight := 0
	for i, artifact := range lowered {
		builder.AppendRaw(artifact.Script)
		weight += artifact.WitnessWeight
		if i > 0 {
			builder.AddOp(scriptbuilder.OpAdd)
		}
	}
	builder.AddInt64(int64(k)).AddOp(scriptbuilder.OpEqual)
	script, err := builder.Script()
	if err != nil {
		return nil, errors.Wrap(err, "building generic threshold script")
	}
	return &PolicyArtifact{
		Descriptor:    descriptor,
		Script:        script,
		WitnessWeight: weight,
	}, nil
}

func joinDescriptors(descriptors []string) string {
	out := ""
	for i, d := range descriptors {
		if i > 0 {
			out += ","
		}
		out += d
	}
	return out
}
