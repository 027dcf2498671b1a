package clause

// Normalize rewrites c to its canonical fixpoint per spec.md §4.A rules
// 1–5: flatten associative combinators, collapse extreme thresholds to
// And/Or, drop duplicate children, and absorb identity elements. It is
// idempotent (spec.md §8 property 4) and always terminates — each pass
// either strictly reduces the clause's node count or leaves it
// unchanged, and the loop stops on the first unchanged pass.
func Normalize(c Clause) Clause {
	for {
		next := normalizeOnce(c)
		if Equal(next, c) {
			return next
		}
		c = next
	}
}

func normalizeOnce(c Clause) Clause {
	switch v := c.(type) {
	case Key, Older, After, Hash, CTV, Trivial, Unsatisfiable:
		return c

	case Threshold:
		children := normalizeChildren(v.Children)
		return normalizeThreshold(v.K, children)

	case And:
		return normalizeThreshold(len(v.Children), normalizeChildren(v.Children))

	case Or:
		return normalizeThreshold(1, normalizeChildren(v.Children))

	default:
		return c
	}
}

func normalizeChildren(children []Clause) []Clause {
	out := make([]Clause, len(children))
	for i, child := range children {
		out[i] = normalizeOnce(child)
	}
	return out
}

// normalizeThreshold applies rules 2–5 to a k-of-children combinator,
// regardless of whether it started life as And, Or, or an explicit
// Threshold — all three funnel through here so the simplification logic
// lives in one place.
func normalizeThreshold(k int, children []Clause) Clause {
	isAndLike := k == len(children)
	isOrLike := k == 1

	// Rule 3 names And/Or specifically ("drop duplicate clause children
	// within And/Or"); a generic k-of-n threshold keeps duplicates, since
	// dropping one could silently turn a "2 of 3" into a "2 of 2".
	if isAndLike {
		children = flattenAnd(children) // rule 1
		children = dedup(children)      // rule 3
		k = len(children)
	} else if isOrLike {
		children = flattenOr(children) // rule 1
		children = dedup(children)     // rule 3
	}

	// Rule 4: absorbing elements.
	if k == len(children) {
		for _, child := range children {
			if _, isUnsat := child.(Unsatisfiable); isUnsat {
				return Unsatisfiable{}
			}
		}
		// This level requires ALL children; Trivial children are
		// satisfied for free, so the requirement on what remains is
		// still "all of the remaining" — k tracks the shrunk count.
		children = dropTrivial(children)
		k = len(children)
	}
	if k == 1 {
		for _, child := range children {
			if _, isTrivial := child.(Trivial); isTrivial {
				return Trivial{}
			}
		}
		children = dropUnsatisfiable(children)
	}

	// Degenerate cases after absorption/dedup: a threshold of 0-of-0 is
	// vacuously satisfied; a threshold requiring more than is available
	// can never be satisfied. Spec.md §4.A doesn't name these explicitly,
	// but leaving them unreduced would violate normal-form idempotence
	// once And/Or round-trip through an empty child list.
	if len(children) == 0 {
		if k <= 0 {
			return Trivial{}
		}
		return Unsatisfiable{}
	}
	if k > len(children) {
		return Unsatisfiable{}
	}
	if k <= 0 {
		return Trivial{}
	}

	// Rule 5: singleton combinators unwrap.
	if len(children) == 1 {
		return children[0]
	}

	// Rule 2: re-tag to And/Or when the threshold is now extreme, so the
	// fixpoint is expressed in the most specific shape.
	if k == len(children) {
		return And{Children: children}
	}
	if k == 1 {
		return Or{Children: children}
	}
	return Threshold{K: k, Children: children}
}

func dedup(children []Clause) []Clause {
	out := make([]Clause, 0, len(children))
	for _, c := range children {
		dup := false
		for _, seen := range out {
			if Equal(c, seen) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

func flattenAnd(children []Clause) []Clause {
	var out []Clause
	for _, c := range children {
		if nested, ok := c.(And); ok {
			out = append(out, nested.Children...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func flattenOr(children []Clause) []Clause {
	var out []Clause
	for _, c := range children {
		if nested, ok := c.(Or); ok {
			out = append(out, nested.Children...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func dropTrivial(children []Clause) []Clause {
	out := make([]Clause, 0, len(children))
	for _, c := range children {
		if _, isTrivial := c.(Trivial); isTrivial {
			continue
		}
		out = append(out, c)
	}
	return out
}

func dropUnsatisfiable(children []Clause) []Clause {
	out := make([]Clause, 0, len(children))
	for _, c := range children {
		if _, isUnsat := c.(Unsatisfiable); isUnsat {
			continue
		}
		out = append(out, c)
	}
	return out
}
