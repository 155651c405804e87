package qschema

import "sync/atomic"

// declID is a process-wide, monotonically increasing identity tag minted
// for every ChildDecl. §9 of the design notes asks for id-based identity
// to break the owner<->child cycle that otherwise forms between an
// element-def and its children; Go's garbage collector does not need
// that to reclaim memory, so the id serves only as a stable handle
// exposed through ChildDecl. ChildEntry variants, ChildModifier, and all
// lookups refer to the declared child by pointer, since a declID alone
// cannot cross toolkit boundaries the way a pointer can when a
// dependency toolkit's children are inherited.
type declID int64

var nextDeclID atomic.Int64

func mintDeclID() declID {
	return declID(nextDeclID.Add(1))
}

// ChildDecl is an originally-declared child role.
type ChildDecl struct {
	id declID

	Owner               Definition
	Name                string
	Type                *ElementDef // nil = typeless
	Fulfillment         *RoleSet    // inherited roles this child satisfies
	DeclaredInheritance *AddOnSet
	Requirement         *AddOnSet // abstract add-ons a fulfiller must provide from elsewhere
	Min, Max            int
	Pos                 Position
}

func newChildDecl() *ChildDecl {
	return &ChildDecl{id: mintDeclID(), Fulfillment: &RoleSet{}, DeclaredInheritance: &AddOnSet{}, Requirement: &AddOnSet{}}
}

// ID is this declaration's stable, process-wide identity tag.
func (c *ChildDecl) ID() declID { return c.id }

// IsFulfilledBy implements the role-matching rule of §3:
// a.is-fulfilled-by(b) iff a == b or a.is-fulfilled-by(f) for some
// f in b.Fulfillment.
func (a *ChildDecl) IsFulfilledBy(b *ChildDecl) bool {
	return a.isFulfilledBy(b, map[*ChildDecl]bool{})
}

func (a *ChildDecl) isFulfilledBy(b *ChildDecl, visited map[*ChildDecl]bool) bool {
	if a == b {
		return true
	}
	if b == nil || visited[b] {
		return false
	}
	visited[b] = true
	for _, f := range b.Fulfillment.Items() {
		if a.isFulfilledBy(f, visited) {
			return true
		}
	}
	return false
}

// ChildModifier partially overrides an inherited child role, declared
// via modify-child. Min/Max are pointers: nil means "inherit".
type ChildModifier struct {
	Declared         *ChildDecl
	Type             *ElementDef // narrowed type; nil = inherit
	AddedInheritance *AddOnSet
	AddedRequirement *AddOnSet
	Min, Max         *int
	Overridden       bool // true if this modifier marks the role closed (Overridden variant)
	OverriddenBy     []*ChildDecl
	Pos              Position
}

// ChildEntry is the tagged variant described in the design notes:
// Declared / Modified / Overridden / Inherited. It mirrors the sealed
// marker-interface idiom used throughout this module's teacher corpus
// for AST-shaped data (an unexported method pins the set of
// implementations).
type ChildEntry interface {
	childEntry()
	DeclaredChild() *ChildDecl
}

// ChildEntryDeclared is an original child declaration, unmodified on the
// definition where it's being viewed.
type ChildEntryDeclared struct {
	Decl *ChildDecl
}

func (ChildEntryDeclared) childEntry()                    {}
func (e ChildEntryDeclared) DeclaredChild() *ChildDecl { return e.Decl }

// ChildEntryModified narrows or tightens an inherited child on a new
// owner.
type ChildEntryModified struct {
	Declared *ChildDecl
	NewOwner Definition
	Modifier *ChildModifier
}

func (ChildEntryModified) childEntry()                    {}
func (e ChildEntryModified) DeclaredChild() *ChildDecl { return e.Declared }

// ChildEntryOverridden marks that an inherited role is fully fulfilled by
// one or more newly-declared children; the inherited slot is closed
// (effective min=max=0).
type ChildEntryOverridden struct {
	Declared   *ChildDecl
	Overriders []*ChildDecl
}

func (ChildEntryOverridden) childEntry()                    {}
func (e ChildEntryOverridden) DeclaredChild() *ChildDecl { return e.Declared }

// ChildEntryInherited re-tags an owner over a child seen through a
// super-element or add-on, without otherwise changing it.
type ChildEntryInherited struct {
	Owner   Definition
	Wrapped *ChildDecl
}

func (ChildEntryInherited) childEntry()                    {}
func (e ChildEntryInherited) DeclaredChild() *ChildDecl { return e.Wrapped }

// RoleSet is a plain identity set of *ChildDecl (fulfillment sets do not
// collapse under is-assignable-from the way AddOnSet does — every
// fulfilled role is kept, since is-fulfilled-by already walks the
// transitive fulfillment graph at query time).
type RoleSet struct {
	items []*ChildDecl
}

func NewRoleSet(items ...*ChildDecl) *RoleSet {
	s := &RoleSet{}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

func (s *RoleSet) Add(c *ChildDecl) {
	if c == nil {
		return
	}
	for _, existing := range s.items {
		if existing == c {
			return
		}
	}
	s.items = append(s.items, c)
}

func (s *RoleSet) Union(other *RoleSet) {
	if other == nil {
		return
	}
	for _, it := range other.items {
		s.Add(it)
	}
}

func (s *RoleSet) Contains(c *ChildDecl) bool {
	if s == nil {
		return false
	}
	for _, existing := range s.items {
		if existing == c {
			return true
		}
	}
	return false
}

func (s *RoleSet) Items() []*ChildDecl {
	if s == nil {
		return nil
	}
	return s.items
}

func (s *RoleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// EffectiveChild is the compiled, flattened view of a child role as seen
// on a particular definition.
type EffectiveChild struct {
	Declared    *ChildDecl
	Owner       Definition
	Name        string
	Type        *ElementDef
	Fulfillment *RoleSet
	Inheritance *AddOnSet
	Requirement *AddOnSet
	Min, Max    int
	Overridden  bool
	Overriders  []*ChildDecl
	Trace       []ModifierTrace
}
