package qschema

import "testing"

func buildBaseAndDerivedAddOns(t *testing.T) (base, derived *AddOn) {
	t.Helper()
	tkb := NewToolkitBuilder("t", Version{1, 0})
	tkb.DeclareAddOn("base", nil, false, Position{})
	baseB, _ := tkb.tk.AddOn("base")
	db := tkb.DeclareAddOn("derived", nil, false, Position{})
	db.Inherits(baseB)

	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	base, _ = tk.AddOn("base")
	derived, _ = tk.AddOn("derived")
	return base, derived
}

// Adding a more-specific entry on top of a less-specific one keeps only
// the more specific: base is redundant once derived (which extends it)
// is present.
func TestAddOnSetAddCollapsesToMostSpecific(t *testing.T) {
	base, derived := buildBaseAndDerivedAddOns(t)

	s := NewAddOnSet()
	s.Add(base)
	s.Add(derived)

	if s.Len() != 1 {
		t.Fatalf("expected 1 retained entry, got %d: %v", s.Len(), s.Items())
	}
	if s.Items()[0] != derived {
		t.Errorf("expected derived to survive the collapse, got %v", s.Items()[0])
	}
}

// Order of insertion doesn't matter: inserting the more specific entry
// first still drops the later, less specific one.
func TestAddOnSetAddCollapsesRegardlessOfOrder(t *testing.T) {
	base, derived := buildBaseAndDerivedAddOns(t)

	s := NewAddOnSet()
	s.Add(derived)
	s.Add(base)

	if s.Len() != 1 || s.Items()[0] != derived {
		t.Errorf("expected only derived retained regardless of insertion order, got %v", s.Items())
	}
}

// Contains answers true for an ancestor reachable through a retained
// entry's own full inheritance, even though only the most-specific
// entry is iterated by Items.
func TestAddOnSetContainsReachesAncestor(t *testing.T) {
	base, derived := buildBaseAndDerivedAddOns(t)

	s := NewAddOnSet()
	s.Add(derived)

	if !s.Contains(derived) {
		t.Error("expected Contains(derived) to be true")
	}
	if !s.Contains(base) {
		t.Error("expected Contains(base) to be true via derived's full inheritance")
	}
}

// Union merges two sets, applying the same collapse rule across both.
func TestAddOnSetUnionCollapses(t *testing.T) {
	base, derived := buildBaseAndDerivedAddOns(t)

	a := NewAddOnSet(base)
	b := NewAddOnSet(derived)
	a.Union(b)

	if a.Len() != 1 || a.Items()[0] != derived {
		t.Errorf("expected union to collapse to derived, got %v", a.Items())
	}
}

// Clone produces an independent copy: mutating the clone must not affect
// the original.
func TestAddOnSetCloneIsIndependent(t *testing.T) {
	base, _ := buildBaseAndDerivedAddOns(t)

	orig := NewAddOnSet(base)
	clone := orig.Clone()
	clone.items = append(clone.items, nil)

	if orig.Len() != 1 {
		t.Errorf("expected original set untouched by clone mutation, got len %d", orig.Len())
	}
}
