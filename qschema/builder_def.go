package qschema

import "github.com/updownquark/qonfig/qvalue"

// DefBuilder is the per-type builder returned by ToolkitBuilder's
// declare-element / declare-add-on: add-attribute, modify-attribute,
// declare-value, modify-value, add-child, modify-child, inherits, meta.
type DefBuilder struct {
	tkb   *ToolkitBuilder
	elem  *ElementDef
	addOn *AddOn
}

func newDefBuilder(tkb *ToolkitBuilder, elem *ElementDef, addOn *AddOn) *DefBuilder {
	return &DefBuilder{tkb: tkb, elem: elem, addOn: addOn}
}

func (db *DefBuilder) definition() Definition {
	if db.elem != nil {
		return db.elem
	}
	return db.addOn
}

func (db *DefBuilder) common() *commonDef { return db.definition().common() }

// AddAttribute declares a new attribute on this definition.
func (db *DefBuilder) AddAttribute(name string, vt qvalue.Type, spec Specification, def any, hasDefault bool, pos Position) *AttributeDecl {
	c := db.common()
	if _, exists := c.declaredAttributes[name]; exists {
		db.tkb.diags.record(&DuplicateDeclarationError{Kind: "attribute", Name: name, Pos: pos})
		return nil
	}
	decl := &AttributeDecl{Owner: db.definition(), Name: name, ValueType: vt, Specification: spec, Default: def, HasDefault: hasDefault, Pos: pos}
	c.declaredAttributes[name] = decl
	return decl
}

// ModifyAttribute records a partial override of an inherited attribute.
// An add-on's own ValueType argument must be nil (add-ons may not change
// attribute types): a non-nil one is recorded as a ModifierLegalityError
// and dropped. A plain element-def's own modifier may legally narrow its
// own inherited attribute's type.
func (db *DefBuilder) ModifyAttribute(declared *AttributeDecl, vt qvalue.Type, spec *Specification, def any, hasDefault bool, pos Position) *AttributeModifier {
	if db.addOn != nil && vt != nil {
		db.tkb.diags.record(&ModifierLegalityError{DefName: db.common().name, Facet: "attribute", Name: declared.Name, Reason: "an add-on may not change an attribute's type", Pos: pos})
		vt = nil
	}
	mod := &AttributeModifier{Declared: declared, ValueType: vt, Specification: spec, Default: def, HasDefault: hasDefault, Pos: pos}
	db.common().attributeModifiers[declared] = mod
	return mod
}

// DeclareValue declares this definition's "text" value spec. Only legal
// on an ElementDef: §3 forbids an add-on from declaring a new value.
func (db *DefBuilder) DeclareValue(vt qvalue.Type, spec Specification, def any, hasDefault bool, pos Position) *ValueDecl {
	c := db.common()
	if db.addOn != nil {
		db.tkb.diags.record(&ModifierLegalityError{DefName: c.name, Facet: "value", Name: "(text)", Reason: "an add-on may not declare a new value", Pos: pos})
		return nil
	}
	if c.declaredValue != nil {
		db.tkb.diags.record(&DuplicateDeclarationError{Kind: "value", Name: "(text)", Pos: pos})
		return nil
	}
	decl := &ValueDecl{Owner: db.definition(), ValueType: vt, Specification: spec, Default: def, HasDefault: hasDefault, Pos: pos}
	c.declaredValue = decl
	return decl
}

// ModifyValue records a partial override of an inherited value spec. An
// add-on's own ValueType argument must be nil, as for ModifyAttribute.
func (db *DefBuilder) ModifyValue(declared *ValueDecl, vt qvalue.Type, spec *Specification, def any, hasDefault bool, pos Position) *ValueModifier {
	if db.addOn != nil && vt != nil {
		db.tkb.diags.record(&ModifierLegalityError{DefName: db.common().name, Facet: "value", Name: "(text)", Reason: "an add-on may not change a value's type", Pos: pos})
		vt = nil
	}
	mod := &ValueModifier{Declared: declared, ValueType: vt, Specification: spec, Default: def, HasDefault: hasDefault, Pos: pos}
	db.common().valueModifier = mod
	return mod
}

// AddChild declares a new child role on this definition.
func (db *DefBuilder) AddChild(name string, typ *ElementDef, min, max int, pos Position) *ChildDecl {
	c := db.common()
	if _, exists := c.declaredChildren[name]; exists {
		db.tkb.diags.record(&DuplicateDeclarationError{Kind: "child", Name: name, Pos: pos})
		return nil
	}
	decl := newChildDecl()
	decl.Owner, decl.Name, decl.Type, decl.Min, decl.Max, decl.Pos = db.definition(), name, typ, min, max, pos
	c.declaredChildren[name] = decl
	return decl
}

// ModifyChild records a partial override of an inherited child role. An
// add-on's own Min/Max arguments must be nil (add-ons may not change
// child min/max per §3); Type/AddedInheritance/AddedRequirement are the
// facets an add-on may legally set.
func (db *DefBuilder) ModifyChild(declared *ChildDecl, typ *ElementDef, addedInheritance, addedRequirement *AddOnSet, min, max *int, overridden bool, overriddenBy []*ChildDecl, pos Position) *ChildModifier {
	if db.addOn != nil && (min != nil || max != nil) {
		db.tkb.diags.record(&ModifierLegalityError{DefName: db.common().name, Facet: "child", Name: declared.Name, Reason: "an add-on may not change a child's min/max", Pos: pos})
		min, max = nil, nil
	}
	mod := &ChildModifier{
		Declared: declared, Type: typ, AddedInheritance: addedInheritance, AddedRequirement: addedRequirement,
		Min: min, Max: max, Overridden: overridden, OverriddenBy: overriddenBy, Pos: pos,
	}
	db.common().childModifiers[declared] = mod
	return mod
}

// Inherits adds addOn to this definition's declared inheritance set.
func (db *DefBuilder) Inherits(addOn *AddOn) {
	db.common().declaredInheritance.Add(addOn)
}

// Meta sets the element-def whose instances constitute this type's
// metadata.
func (db *DefBuilder) Meta(spec *ElementDef) {
	db.common().metaSpec = spec
}

// closeInheritance computes full-inheritance per step 2 of §4.1:
// declared-inheritance(T) unioned with full-inheritance(super(T)) and
// every declared add-on's own full-inheritance, as a multi-inheritance
// set (more-specific entries subsume less-specific ones).
func (db *DefBuilder) closeInheritance(diags *Diagnostics) {
	c := db.common()
	full := c.declaredInheritance.Clone()
	if e, ok := db.definition().(*ElementDef); ok && e.base.superElement != nil {
		full.Union(e.base.superElement.base.fullInheritance)
	}
	for _, addon := range c.declaredInheritance.Items() {
		full.Union(addon.base.fullInheritance)
	}
	c.fullInheritance = full
}

// flattenAttributes implements step 3 of §4.1.
func (db *DefBuilder) flattenAttributes(diags *Diagnostics) {
	c := db.common()

	type accum struct {
		decl         *AttributeDecl
		base         specDefault
		valueType    qvalue.Type
		priorTrace   []ModifierTrace
		contributors []AttributeContributor
	}
	byName := map[string]*accum{}

	if e, ok := db.definition().(*ElementDef); ok && e.base.superElement != nil {
		for name, eff := range e.base.superElement.base.allAttributesByName {
			byName[name] = &accum{
				decl:       eff.Declared,
				base:       specDefault{Spec: eff.Specification, Default: eff.Default, HasDefault: eff.HasDefault},
				valueType:  eff.ValueType,
				priorTrace: eff.Trace,
			}
		}
	}

	// T's own declared attributes are seeded before any add-on is
	// consulted: an add-on inherited by T may carry a modifier targeting
	// an attribute T itself declares (e.g. T both declares "n" and
	// inherits an add-on whose attr-mod narrows "n"), and that modifier
	// must see the decl it targets already present.
	for name, decl := range c.declaredAttributes {
		if existing, exists := byName[name]; exists {
			diags.record(&DuplicateDeclarationError{Kind: "attribute", Name: name, Pos: decl.Pos, FirstPos: existing.decl.Pos})
			continue
		}
		byName[name] = &accum{decl: decl, base: specDefault{Spec: decl.Specification, Default: decl.Default, HasDefault: decl.HasDefault}, valueType: decl.ValueType}
	}

	// Step 3 of §4.1: for each inherited add-on in order, merge its own
	// freshly declared attributes (error on name collision with a
	// non-equal pre-existing decl), then apply its modifiers. An add-on's
	// modifiers target a declared root reached through its requirement's
	// chain, not through the add-on's own (generally empty)
	// super-element/inheritance closure, so they are read from the
	// add-on's declaredAttributes/attributeModifiers maps directly rather
	// than from its flattened all-attributes view.
	for _, addon := range c.declaredInheritance.Items() {
		for name, decl := range addon.base.declaredAttributes {
			existing, exists := byName[name]
			if !exists {
				byName[name] = &accum{decl: decl, base: specDefault{Spec: decl.Specification, Default: decl.Default, HasDefault: decl.HasDefault}, valueType: decl.ValueType}
				continue
			}
			if existing.decl != decl {
				diags.record(&DuplicateDeclarationError{Kind: "attribute", Name: name, Pos: decl.Pos, FirstPos: existing.decl.Pos})
			}
		}
		for decl, mod := range addon.base.attributeModifiers {
			a, ok := byName[decl.Name]
			if !ok || a.decl != decl {
				continue
			}
			a.contributors = append(a.contributors, AttributeContributor{Path: []*AddOn{addon}, Mod: mod})
		}
	}

	for decl, mod := range c.attributeModifiers {
		a, ok := byName[decl.Name]
		if !ok || a.decl != decl {
			continue
		}
		a.contributors = append(a.contributors, AttributeContributor{Path: nil, Mod: mod})
	}

	c.allAttributes = map[*AttributeDecl]*EffectiveAttribute{}
	c.allAttributesByName = map[string]*EffectiveAttribute{}
	for name, a := range byName {
		eff := mergeAttribute(diags, a.decl.Pos, c.name, a.decl, a.base, a.valueType, a.priorTrace, a.contributors)
		eff.Owner = db.definition()
		c.allAttributes[a.decl] = eff
		c.allAttributesByName[name] = eff
	}
}

// flattenValue implements step 4 of §4.1.
func (db *DefBuilder) flattenValue(diags *Diagnostics) {
	c := db.common()

	var decl *ValueDecl
	var base specDefault
	var valueType qvalue.Type
	var priorTrace []ModifierTrace
	var contributors []ValueContributor

	if e, ok := db.definition().(*ElementDef); ok && e.base.superElement != nil {
		if eff := e.base.superElement.base.allValue; eff != nil {
			decl = eff.Declared
			base = specDefault{Spec: eff.Specification, Default: eff.Default, HasDefault: eff.HasDefault}
			valueType = eff.ValueType
			priorTrace = eff.Trace
		}
	}

	// §3 forbids an add-on from declaring a new value, so an add-on only
	// ever contributes a modifier, targeting the declared root already
	// established by the super-element chain.
	for _, addon := range c.declaredInheritance.Items() {
		mod := addon.base.valueModifier
		if mod == nil || decl == nil || mod.Declared != decl {
			continue
		}
		contributors = append(contributors, ValueContributor{Path: []*AddOn{addon}, Mod: mod})
	}

	if c.declaredValue != nil {
		decl = c.declaredValue
		base = specDefault{Spec: decl.Specification, Default: decl.Default, HasDefault: decl.HasDefault}
		valueType = decl.ValueType
		priorTrace = nil
		contributors = nil
	}

	if decl == nil {
		c.allValue = nil
		return
	}

	if c.valueModifier != nil {
		contributors = append(contributors, ValueContributor{Path: nil, Mod: c.valueModifier})
	}

	c.allValue = mergeValue(diags, decl.Pos, c.name, decl, base, valueType, priorTrace, contributors)
	c.allValue.Owner = db.definition()
}

// flattenChildren implements step 5 of §4.1: same pattern as attributes,
// with the extra Overridden/Inherited variants.
func (db *DefBuilder) flattenChildren(diags *Diagnostics) {
	c := db.common()

	type accum struct {
		decl         *ChildDecl
		base         childBase
		priorTrace   []ModifierTrace
		contributors []ChildContributor
	}
	byName := map[string]*accum{}

	if e, ok := db.definition().(*ElementDef); ok && e.base.superElement != nil {
		for name, eff := range e.base.superElement.base.allChildrenByName {
			byName[name] = &accum{decl: eff.Declared, base: childBaseFromEffective(eff), priorTrace: eff.Trace}
		}
	}

	// T's own declared children are seeded before any add-on is consulted,
	// for the same reason as in flattenAttributes: an inherited add-on may
	// carry a modifier targeting a child T declares on itself.
	for name, decl := range c.declaredChildren {
		if existing, exists := byName[name]; exists {
			diags.record(&DuplicateDeclarationError{Kind: "child", Name: name, Pos: decl.Pos, FirstPos: existing.decl.Pos})
			continue
		}
		byName[name] = &accum{decl: decl, base: childBaseFromDecl(decl)}
	}

	// As with attributes, an add-on's own declared children and child
	// modifiers are read from its declaredChildren/childModifiers maps
	// directly: its modifiers target a declared root reached through its
	// requirement's chain, which generally has nothing to do with the
	// add-on's own (usually empty) flattened child view.
	for _, addon := range c.declaredInheritance.Items() {
		for name, decl := range addon.base.declaredChildren {
			existing, exists := byName[name]
			if !exists {
				byName[name] = &accum{decl: decl, base: childBaseFromDecl(decl)}
				continue
			}
			if existing.decl != decl {
				diags.record(&DuplicateDeclarationError{Kind: "child", Name: name, Pos: decl.Pos, FirstPos: existing.decl.Pos})
			}
		}
		for decl, mod := range addon.base.childModifiers {
			a, ok := byName[decl.Name]
			if !ok || a.decl != decl {
				continue
			}
			if a.base.Overridden {
				diags.record(&ModifierLegalityError{DefName: c.name, Facet: "child", Name: decl.Name, Reason: "child is already marked Overridden", Pos: mod.Pos})
				continue
			}
			a.contributors = append(a.contributors, ChildContributor{Path: []*AddOn{addon}, Mod: mod})
		}
	}

	for decl, mod := range c.childModifiers {
		a, ok := byName[decl.Name]
		if !ok || a.decl != decl {
			continue
		}
		if a.base.Overridden {
			diags.record(&ModifierLegalityError{DefName: c.name, Facet: "child", Name: decl.Name, Reason: "child is already marked Overridden", Pos: mod.Pos})
			continue
		}
		a.contributors = append(a.contributors, ChildContributor{Path: nil, Mod: mod})
	}

	c.allChildren = map[*ChildDecl]*EffectiveChild{}
	c.allChildrenByName = map[string]*EffectiveChild{}
	for name, a := range byName {
		eff := mergeChild(diags, a.decl.Pos, c.name, a.decl, a.base, a.priorTrace, a.contributors)
		eff.Owner = db.definition()
		c.allChildren[a.decl] = eff
		c.allChildrenByName[name] = eff
	}
}
