package qschema

// AddOnSet is the multi-inheritance set described in the design notes: a
// flat vector where inserting x collapses against any existing entry e
// comparable to x under is-assignable-from — the more specific of the
// two survives. Iteration yields only the most-specific entries, but
// [AddOnSet.Contains] still answers membership for any ancestor, because
// each retained entry's own FullInheritance has already been closed over
// its ancestors by the time it is inserted here (toolkit build proceeds
// in topological order).
type AddOnSet struct {
	items []*AddOn
}

// NewAddOnSet builds a set from zero or more add-ons, applying the
// collapse rule for each.
func NewAddOnSet(items ...*AddOn) *AddOnSet {
	s := &AddOnSet{}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts x, collapsing it against any comparable existing entry.
func (s *AddOnSet) Add(x *AddOn) {
	if x == nil {
		return
	}
	kept := make([]*AddOn, 0, len(s.items)+1)
	add := true
	for _, e := range s.items {
		switch {
		case e == x:
			kept = append(kept, e)
			add = false
		case x.IsAssignableFrom(e):
			// e is more specific than x: keep e, x is redundant.
			kept = append(kept, e)
			add = false
		case e.IsAssignableFrom(x):
			// x is more specific than e: drop e, x will be appended below.
		default:
			kept = append(kept, e)
		}
	}
	if add {
		kept = append(kept, x)
	}
	s.items = kept
}

// Union adds every entry of other into s.
func (s *AddOnSet) Union(other *AddOnSet) {
	if other == nil {
		return
	}
	for _, it := range other.items {
		s.Add(it)
	}
}

// Contains reports whether target is present in s directly, or is
// subsumed by (an ancestor reachable from) any retained entry.
func (s *AddOnSet) Contains(target *AddOn) bool {
	if s == nil || target == nil {
		return false
	}
	for _, e := range s.items {
		if e == target {
			return true
		}
		if e.base.fullInheritance != nil && e.base.fullInheritance != s && e.base.fullInheritance.containsDirect(target, map[*AddOnSet]bool{s: true}) {
			return true
		}
	}
	return false
}

// containsDirect is Contains with a visited guard, so a malformed cyclic
// full-inheritance (which toolkit build should never produce) cannot
// cause infinite recursion.
func (s *AddOnSet) containsDirect(target *AddOn, visited map[*AddOnSet]bool) bool {
	if s == nil || visited[s] {
		return false
	}
	visited[s] = true
	for _, e := range s.items {
		if e == target {
			return true
		}
		if e.base.fullInheritance.containsDirect(target, visited) {
			return true
		}
	}
	return false
}

// Items returns the most-specific entries, in insertion order.
func (s *AddOnSet) Items() []*AddOn {
	if s == nil {
		return nil
	}
	return s.items
}

// Len reports the number of retained (most-specific) entries.
func (s *AddOnSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Clone returns a shallow copy safe to mutate independently of s.
func (s *AddOnSet) Clone() *AddOnSet {
	if s == nil {
		return &AddOnSet{}
	}
	out := &AddOnSet{items: make([]*AddOn, len(s.items))}
	copy(out.items, s.items)
	return out
}
