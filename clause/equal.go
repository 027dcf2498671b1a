package clause

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Equal reports structural equality between two clauses, used by
// normalization's duplicate-child rule (spec.md §4.A rule 3) and by
// tests asserting normal-form equivalence (spec.md §8 property 4).
func Equal(a, b Clause) bool {
	return fingerprint(a) == fingerprint(b)
}

// fingerprint renders a clause into a canonical string so structural
// equality reduces to string comparison. It is not meant to be a stable
// wire format — only a within-process dedup/equality key.
func fingerprint(c Clause) string {
	switch v := c.(type) {
	case Key:
		return "key:" + v.PubKey.String()
	case Threshold:
		return "thresh:" + fmt.Sprint(v.K) + ":" + fingerprintAll(v.Children)
	case And:
		return "and:" + fingerprintAll(v.Children)
	case Or:
		return "or:" + fingerprintAll(v.Children)
	case Older:
		return fmt.Sprintf("older:%d", v.Relative)
	case After:
		return fmt.Sprintf("after:%d", v.Absolute)
	case Hash:
		return "hash:" + hex.EncodeToString(v.Commitment[:])
	case CTV:
		return "ctv:" + hex.EncodeToString(v.CommitmentHash[:])
	case Trivial:
		return "trivial"
	case Unsatisfiable:
		return "unsat"
	default:
		return fmt.Sprintf("unknown:%T", c)
	}
}

func fingerprintAll(children []Clause) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = fingerprint(c)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
