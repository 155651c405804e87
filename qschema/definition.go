package qschema

// Definition is implemented by both *ElementDef and *AddOn: the shared
// "Element-or-AddOn" base described in §3 of the schema. Most merge and
// lookup logic is written against this interface so it does not care
// which concrete kind it is flattening.
type Definition interface {
	// DefName is the bare (unqualified) declared name.
	DefName() string
	// Declarer is the toolkit that owns this declaration.
	Declarer() *Toolkit
	// IsAbstract reports whether this type cannot be instantiated or
	// named in with-extension directly (add-ons) / at all (elements).
	IsAbstract() bool
	// FullInheritance is the transitively closed multi-inheritance set.
	FullInheritance() *AddOnSet
	// common exposes the shared declared/compiled state to package
	// internals (builder, merge, autoinherit, validate).
	common() *commonDef
}

// commonDef is the shared declared/compiled state embedded by both
// ElementDef and AddOn, corresponding to the "Element-or-AddOn" base of
// §3.
type commonDef struct {
	declarer *Toolkit
	name     string
	abstract bool

	superElement *ElementDef // nil for add-ons; may be nil for a root element

	declaredInheritance *AddOnSet
	fullInheritance     *AddOnSet

	declaredAttributes map[string]*AttributeDecl
	declaredChildren   map[string]*ChildDecl
	declaredValue      *ValueDecl

	attributeModifiers map[*AttributeDecl]*AttributeModifier
	childModifiers     map[*ChildDecl]*ChildModifier
	valueModifier      *ValueModifier

	allAttributes       map[*AttributeDecl]*EffectiveAttribute
	allAttributesByName map[string]*EffectiveAttribute
	allChildren         map[*ChildDecl]*EffectiveChild
	allChildrenByName   map[string]*EffectiveChild
	allValue            *EffectiveValue

	metaSpec *ElementDef

	pos Position
}

func newCommonDef(declarer *Toolkit, name string, abstract bool, pos Position) commonDef {
	return commonDef{
		declarer:            declarer,
		name:                name,
		abstract:            abstract,
		declaredInheritance: &AddOnSet{},
		fullInheritance:     &AddOnSet{},
		declaredAttributes:  map[string]*AttributeDecl{},
		declaredChildren:    map[string]*ChildDecl{},
		attributeModifiers:  map[*AttributeDecl]*AttributeModifier{},
		childModifiers:      map[*ChildDecl]*ChildModifier{},
		allAttributes:       map[*AttributeDecl]*EffectiveAttribute{},
		allAttributesByName: map[string]*EffectiveAttribute{},
		allChildren:         map[*ChildDecl]*EffectiveChild{},
		allChildrenByName:   map[string]*EffectiveChild{},
		pos:                 pos,
	}
}

// DeclaredInheritance is the set of add-ons named directly on this
// definition (before closure over super-element and nested add-ons).
func (c *commonDef) DeclaredInheritance() *AddOnSet { return c.declaredInheritance }

// AllAttributes is the flattened, compiled attribute view: every
// attribute visible on this definition, keyed by its declared root.
func (c *commonDef) AllAttributes() map[*AttributeDecl]*EffectiveAttribute { return c.allAttributes }

// AttributeByName looks up an effective attribute by name.
func (c *commonDef) AttributeByName(name string) (*EffectiveAttribute, bool) {
	a, ok := c.allAttributesByName[name]
	return a, ok
}

// AllChildren is the flattened, compiled child view, keyed by the
// declared root.
func (c *commonDef) AllChildren() map[*ChildDecl]*EffectiveChild { return c.allChildren }

// ChildByName looks up an effective child by name.
func (c *commonDef) ChildByName(name string) (*EffectiveChild, bool) {
	ch, ok := c.allChildrenByName[name]
	return ch, ok
}

// Value is the compiled, flattened value-def for this definition, if any.
func (c *commonDef) Value() (*EffectiveValue, bool) {
	if c.allValue == nil {
		return nil, false
	}
	return c.allValue, true
}

// MetaSpec is the element-def whose instances constitute this type's
// metadata, if declared.
func (c *commonDef) MetaSpec() *ElementDef { return c.metaSpec }

// Pos is the source position of the declaration.
func (c *commonDef) Pos() Position { return c.pos }
