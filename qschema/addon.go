package qschema

// AddOn is a mixin that may modify the value, attributes, and children of
// the element-def it requires. An add-on may not declare a new value, nor
// change a child's min/max, nor change an attribute's or value's
// declared type — only relax or tighten specification and defaults, or
// (for children) narrow the type and add inheritance/requirement.
type AddOn struct {
	base commonDef

	requirement *ElementDef // optional: targets must inherit from this
}

func (a *AddOn) DefName() string            { return a.base.name }
func (a *AddOn) Declarer() *Toolkit         { return a.base.declarer }
func (a *AddOn) IsAbstract() bool           { return a.base.abstract }
func (a *AddOn) FullInheritance() *AddOnSet { return a.base.fullInheritance }
func (a *AddOn) common() *commonDef         { return &a.base }

// Requirement is the element-def that a target must (transitively)
// inherit from for this add-on to apply, or nil if unconstrained.
func (a *AddOn) Requirement() *ElementDef { return a.requirement }

// IsAssignableFrom tests whether other's full inheritance contains a,
// per §3: an add-on "requires" nothing of its own ancestry walk — it is
// assignable from anything that (transitively) inherits it.
func (a *AddOn) IsAssignableFrom(other Definition) bool {
	if other == nil {
		return false
	}
	if d, ok := other.(*AddOn); ok && d == a {
		return true
	}
	return other.FullInheritance().Contains(a)
}

func (a *AddOn) AttributeByName(name string) (*EffectiveAttribute, bool) {
	return a.base.AttributeByName(name)
}
func (a *AddOn) ChildByName(name string) (*EffectiveChild, bool) { return a.base.ChildByName(name) }
func (a *AddOn) Value() (*EffectiveValue, bool)                  { return a.base.Value() }
func (a *AddOn) AllAttributes() map[*AttributeDecl]*EffectiveAttribute {
	return a.base.AllAttributes()
}
func (a *AddOn) AllChildren() map[*ChildDecl]*EffectiveChild { return a.base.AllChildren() }
func (a *AddOn) DeclaredInheritance() *AddOnSet          { return a.base.DeclaredInheritance() }
func (a *AddOn) Pos() Position                           { return a.base.Pos() }
