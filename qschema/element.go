package qschema

// ElementDef is a declarable element type. It may be extended by other
// element-defs and optionally carries a promise add-on marking its
// instances as external-content placeholders (§4.5).
type ElementDef struct {
	base commonDef

	promise *AddOn // optional: non-nil marks instances as promise placeholders
}

func (e *ElementDef) DefName() string            { return e.base.name }
func (e *ElementDef) Declarer() *Toolkit         { return e.base.declarer }
func (e *ElementDef) IsAbstract() bool           { return e.base.abstract }
func (e *ElementDef) FullInheritance() *AddOnSet { return e.base.fullInheritance }
func (e *ElementDef) common() *commonDef         { return &e.base }

// SuperElement is the single parent element-def, or nil at the root.
func (e *ElementDef) SuperElement() *ElementDef { return e.base.superElement }

// Promise is the add-on marking this element-def's instances as
// external-content placeholders, or nil if this element-def is not a
// promise. qdoc marks an instance as a promise placeholder only when its
// type's Promise is non-nil.
func (e *ElementDef) Promise() *AddOn { return e.promise }

// IsAssignableFrom walks other's super-element chain looking for e,
// per §3: "walks other.super-element until a match or root."
func (e *ElementDef) IsAssignableFrom(other *ElementDef) bool {
	for cur := other; cur != nil; cur = cur.base.superElement {
		if cur == e {
			return true
		}
	}
	return false
}

// AttributeByName, ChildByName, Value, MetaSpec, AllAttributes,
// AllChildren, DeclaredInheritance, Pos all delegate to the embedded
// commonDef; exposed here so callers outside the package need not know
// about commonDef at all.
func (e *ElementDef) AttributeByName(name string) (*EffectiveAttribute, bool) {
	return e.base.AttributeByName(name)
}
func (e *ElementDef) ChildByName(name string) (*EffectiveChild, bool) {
	return e.base.ChildByName(name)
}
func (e *ElementDef) Value() (*EffectiveValue, bool)        { return e.base.Value() }
func (e *ElementDef) MetaSpec() *ElementDef                 { return e.base.MetaSpec() }
func (e *ElementDef) AllAttributes() map[*AttributeDecl]*EffectiveAttribute {
	return e.base.AllAttributes()
}
func (e *ElementDef) AllChildren() map[*ChildDecl]*EffectiveChild { return e.base.AllChildren() }
func (e *ElementDef) DeclaredInheritance() *AddOnSet              { return e.base.DeclaredInheritance() }
func (e *ElementDef) Pos() Position                               { return e.base.Pos() }
