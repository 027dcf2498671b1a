package clause

import "testing"

func mustKey(t *testing.T, seed byte) *PublicKey {
	t.Helper()
	data := make([]byte, 33)
	data[0] = 0x02
	data[1] = seed
	pk, err := NewPublicKeyFromBytes(data)
	if err != nil {
		t.Fatalf("NewPublicKeyFromBytes: %v", err)
	}
	return pk
}

func TestNormalizeFlattensNestedAnd(t *testing.T) {
	alice := Key{PubKey: mustKey(t, 1)}
	bob := Key{PubKey: mustKey(t, 2)}
	carol := Key{PubKey: mustKey(t, 3)}

	nested := And{Children: []Clause{alice, And{Children: []Clause{bob, carol}}}}
	got := Normalize(nested)

	want := And{Children: []Clause{alice, bob, carol}}
	if !Equal(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestNormalizeCollapsesThresholdToAndOr(t *testing.T) {
	alice := Key{PubKey: mustKey(t, 1)}
	bob := Key{PubKey: mustKey(t, 2)}

	allOf := Normalize(Threshold{K: 2, Children: []Clause{alice, bob}})
	if _, ok := allOf.(And); !ok {
		t.Errorf("Threshold(2,2) should normalize to And, got %#v", allOf)
	}

	anyOf := Normalize(Threshold{K: 1, Children: []Clause{alice, bob}})
	if _, ok := anyOf.(Or); !ok {
		t.Errorf("Threshold(1,2) should normalize to Or, got %#v", anyOf)
	}
}

func TestNormalizeDropsDuplicates(t *testing.T) {
	alice := Key{PubKey: mustKey(t, 1)}
	got := Normalize(And{Children: []Clause{alice, alice, alice}})
	if !Equal(got, alice) {
		t.Errorf("got %#v, want singleton %#v", got, alice)
	}
}

func TestNormalizeAbsorption(t *testing.T) {
	alice := Key{PubKey: mustKey(t, 1)}

	gotAnd := Normalize(And{Children: []Clause{alice, Unsatisfiable{}}})
	if _, ok := gotAnd.(Unsatisfiable); !ok {
		t.Errorf("And containing Unsatisfiable must collapse, got %#v", gotAnd)
	}

	gotOr := Normalize(Or{Children: []Clause{alice, Trivial{}}})
	if _, ok := gotOr.(Trivial); !ok {
		t.Errorf("Or containing Trivial must collapse, got %#v", gotOr)
	}

	gotAndTrivial := Normalize(And{Children: []Clause{alice, Trivial{}}})
	if !Equal(gotAndTrivial, alice) {
		t.Errorf("And should drop Trivial conjuncts, got %#v", gotAndTrivial)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	alice := Key{PubKey: mustKey(t, 1)}
	bob := Key{PubKey: mustKey(t, 2)}
	carol := Key{PubKey: mustKey(t, 3)}

	inputs := []Clause{
		And{Children: []Clause{alice, And{Children: []Clause{bob, carol}}, alice}},
		Or{Children: []Clause{Unsatisfiable{}, Threshold{K: 1, Children: []Clause{alice, bob}}}},
		Threshold{K: 2, Children: []Clause{alice, bob, carol}},
		Older{Relative: 144},
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if !Equal(once, twice) {
			t.Errorf("normalize not idempotent for %#v: once=%#v twice=%#v", in, once, twice)
		}
	}
}

func TestNormalizeSingletonUnwraps(t *testing.T) {
	alice := Key{PubKey: mustKey(t, 1)}
	got := Normalize(And{Children: []Clause{alice}})
	if !Equal(got, alice) {
		t.Errorf("singleton And should unwrap, got %#v", got)
	}
}
