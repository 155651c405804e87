package qschema

import "github.com/updownquark/qonfig/qvalue"

// AttributeContributor is one modifier contributing to an effective
// attribute: Path is the add-on chain from the owner to the contributing
// add-on (empty means the owner's own modifier).
type AttributeContributor struct {
	Path []*AddOn
	Mod  *AttributeModifier
}

// ValueContributor is the value-def analogue of AttributeContributor.
type ValueContributor struct {
	Path []*AddOn
	Mod  *ValueModifier
}

// ChildContributor is the child-def analogue of AttributeContributor.
type ChildContributor struct {
	Path []*AddOn
	Mod  *ChildModifier
}

// incomparable reports whether two add-on chains are incomparable for
// diamond-conflict purposes: neither chain's terminal add-on is
// (transitively) inherited by the other's.
func incomparable(a, b []*AddOn) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	ta, tb := a[len(a)-1], b[len(b)-1]
	if ta == tb {
		return false
	}
	if ta.FullInheritance().Contains(tb) || tb.FullInheritance().Contains(ta) {
		return false
	}
	return true
}

// mergeAttribute implements the attribute half of §4.2: flatten one
// inheritance level's worth of contributing modifiers onto a base
// (spec, default, type) drawn either from the fresh AttributeDecl, for a
// level that declares the attribute, or from the prior level's
// EffectiveAttribute, for a level that only inherits it. priorTrace
// carries forward earlier levels' trace entries so the final
// EffectiveAttribute.Trace spans the whole inheritance chain.
func mergeAttribute(diags *Diagnostics, pos Position, ownerName string, declared *AttributeDecl, base specDefault, valueType qvalue.Type, priorTrace []ModifierTrace, contributors []AttributeContributor) *EffectiveAttribute {
	var own *AttributeContributor
	var inherited []AttributeContributor
	for i := range contributors {
		c := contributors[i]
		if len(c.Path) == 0 {
			own = &contributors[i]
		} else {
			inherited = append(inherited, c)
		}
	}

	if own == nil {
		for i := 0; i < len(inherited); i++ {
			for j := i + 1; j < len(inherited); j++ {
				if !incomparable(inherited[i].Path, inherited[j].Path) {
					continue
				}
				ri, _ := applySpecDefaultOnly(base, inherited[i].Mod)
				rj, _ := applySpecDefaultOnly(base, inherited[j].Mod)
				if ri.Spec != rj.Spec || ri.HasDefault != rj.HasDefault || !equalDefault(ri.Default, rj.Default) {
					diags.record(&InheritanceConflictError{
						DefName: ownerName, Facet: "attribute", Name: declared.Name,
						PathA: inherited[i].Path, PathB: inherited[j].Path, Pos: pos,
					})
				}
			}
		}
	}

	trace := append([]ModifierTrace{}, priorTrace...)
	cur := base
	for _, c := range inherited {
		cur, valueType = applyAttributeModifier(diags, pos, ownerName, declared.Name, cur, valueType, c.Mod)
		trace = append(trace, ModifierTrace{Path: c.Path, Modifier: c.Mod})
	}
	if own != nil {
		cur, valueType = applyAttributeModifier(diags, pos, ownerName, declared.Name, cur, valueType, own.Mod)
		trace = append(trace, ModifierTrace{Path: nil, Modifier: own.Mod})
	}

	return &EffectiveAttribute{
		Declared: declared, Owner: declared.Owner, Name: declared.Name,
		ValueType: valueType, Specification: cur.Spec, Default: cur.Default, HasDefault: cur.HasDefault,
		Trace: trace,
	}
}

func applySpecDefaultOnly(base specDefault, mod *AttributeModifier) (specDefault, bool) {
	override := base
	if mod != nil {
		if mod.Specification != nil {
			override.Spec = *mod.Specification
		}
		if mod.HasDefault {
			override.Default, override.HasDefault = mod.Default, true
		}
	}
	diags := &Diagnostics{}
	out, ok := mergeSpec(diags, Position{}, base, override)
	return out, ok
}

func applyAttributeModifier(diags *Diagnostics, pos Position, ownerName, attrName string, cur specDefault, curType qvalue.Type, mod *AttributeModifier) (specDefault, qvalue.Type) {
	if mod == nil {
		return cur, curType
	}
	nextType := curType
	if mod.ValueType != nil {
		// §3: an add-on modifier may never change an attribute's declared
		// value type. The owning element-def's own modifier is the only
		// legal source of a ValueType change, so this path is reached
		// only when the caller built the contributor from T's own
		// modifier; DefBuilder.ModifyAttribute drops the ValueType of an
		// add-on's modifier, so no inherited AttributeContributor carries one.
		nextType = mod.ValueType
	}
	override := specDefault{Spec: cur.Spec, Default: cur.Default, HasDefault: cur.HasDefault}
	if mod.Specification != nil {
		override.Spec = *mod.Specification
	}
	if mod.HasDefault {
		override.Default, override.HasDefault = mod.Default, true
	}
	merged, ok := mergeSpec(diags, pos, cur, override)
	if !ok {
		return cur, nextType
	}
	return merged, nextType
}

// mergeValue is the value-def analogue of mergeAttribute.
func mergeValue(diags *Diagnostics, pos Position, ownerName string, declared *ValueDecl, base specDefault, valueType qvalue.Type, priorTrace []ModifierTrace, contributors []ValueContributor) *EffectiveValue {
	var own *ValueContributor
	var inherited []ValueContributor
	for i := range contributors {
		c := contributors[i]
		if len(c.Path) == 0 {
			own = &contributors[i]
		} else {
			inherited = append(inherited, c)
		}
	}

	if own == nil {
		for i := 0; i < len(inherited); i++ {
			for j := i + 1; j < len(inherited); j++ {
				if !incomparable(inherited[i].Path, inherited[j].Path) {
					continue
				}
				ri := applyValueSpecOnly(base, inherited[i].Mod)
				rj := applyValueSpecOnly(base, inherited[j].Mod)
				if ri.Spec != rj.Spec || ri.HasDefault != rj.HasDefault || !equalDefault(ri.Default, rj.Default) {
					diags.record(&InheritanceConflictError{
						DefName: ownerName, Facet: "value", Name: "(text)",
						PathA: inherited[i].Path, PathB: inherited[j].Path, Pos: pos,
					})
				}
			}
		}
	}

	trace := append([]ModifierTrace{}, priorTrace...)
	cur := base
	for _, c := range inherited {
		cur, valueType = applyValueModifier(diags, pos, ownerName, cur, valueType, c.Mod)
		trace = append(trace, ModifierTrace{Path: c.Path, Modifier: c.Mod})
	}
	if own != nil {
		cur, valueType = applyValueModifier(diags, pos, ownerName, cur, valueType, own.Mod)
		trace = append(trace, ModifierTrace{Path: nil, Modifier: own.Mod})
	}

	return &EffectiveValue{
		Declared: declared, Owner: declared.Owner,
		ValueType: valueType, Specification: cur.Spec, Default: cur.Default, HasDefault: cur.HasDefault,
		Trace: trace,
	}
}

func applyValueSpecOnly(base specDefault, mod *ValueModifier) specDefault {
	override := base
	if mod != nil {
		if mod.Specification != nil {
			override.Spec = *mod.Specification
		}
		if mod.HasDefault {
			override.Default, override.HasDefault = mod.Default, true
		}
	}
	diags := &Diagnostics{}
	out, _ := mergeSpec(diags, Position{}, base, override)
	return out
}

func applyValueModifier(diags *Diagnostics, pos Position, ownerName string, cur specDefault, curType qvalue.Type, mod *ValueModifier) (specDefault, qvalue.Type) {
	if mod == nil {
		return cur, curType
	}
	nextType := curType
	if mod.ValueType != nil {
		nextType = mod.ValueType
	}
	override := specDefault{Spec: cur.Spec, Default: cur.Default, HasDefault: cur.HasDefault}
	if mod.Specification != nil {
		override.Spec = *mod.Specification
	}
	if mod.HasDefault {
		override.Default, override.HasDefault = mod.Default, true
	}
	merged, ok := mergeSpec(diags, pos, cur, override)
	if !ok {
		return cur, nextType
	}
	return merged, nextType
}

// childBase is the pre-modifier state mergeChild starts from: either a
// fresh ChildDecl's own fields (the level that declares the role) or an
// inherited EffectiveChild's fields (a level that only sees it through a
// super-element or add-on).
type childBase struct {
	Type        *ElementDef
	Min, Max    int
	Inheritance *AddOnSet
	Requirement *AddOnSet
	Fulfillment *RoleSet
	Overridden  bool
	Overriders  []*ChildDecl
}

func childBaseFromDecl(d *ChildDecl) childBase {
	return childBase{
		Type: d.Type, Min: d.Min, Max: d.Max,
		Inheritance: d.DeclaredInheritance.Clone(), Requirement: d.Requirement.Clone(),
		Fulfillment: NewRoleSet(d.Fulfillment.Items()...),
	}
}

func childBaseFromEffective(e *EffectiveChild) childBase {
	return childBase{
		Type: e.Type, Min: e.Min, Max: e.Max,
		Inheritance: e.Inheritance.Clone(), Requirement: e.Requirement.Clone(),
		Fulfillment: NewRoleSet(e.Fulfillment.Items()...),
		Overridden:  e.Overridden, Overriders: append([]*ChildDecl{}, e.Overriders...),
	}
}

// mergeChild implements the child half of §4.2: type narrowing bounded to
// subtypes of the declared type, accumulating inheritance/requirement
// sets, and tightening (never relaxing) min/max.
func mergeChild(diags *Diagnostics, pos Position, ownerName string, declared *ChildDecl, base childBase, priorTrace []ModifierTrace, contributors []ChildContributor) *EffectiveChild {
	curType := base.Type
	min, max := base.Min, base.Max
	inheritance := base.Inheritance
	requirement := base.Requirement
	fulfillment := base.Fulfillment
	overridden := base.Overridden
	overriders := append([]*ChildDecl{}, base.Overriders...)

	trace := append([]ModifierTrace{}, priorTrace...)
	for _, c := range contributors {
		mod := c.Mod
		if mod == nil {
			continue
		}
		if mod.Overridden {
			overridden = true
			overriders = append(overriders, mod.OverriddenBy...)
		}
		if mod.Type != nil {
			if curType == nil || !curType.IsAssignableFrom(mod.Type) {
				diags.record(&ModifierLegalityError{
					DefName: ownerName, Facet: "child", Name: declared.Name,
					Reason: "narrowed type must be a subtype of the inherited type", Pos: pos,
				})
			} else {
				curType = mod.Type
			}
		}
		if mod.AddedInheritance != nil {
			inheritance.Union(mod.AddedInheritance)
		}
		if mod.AddedRequirement != nil {
			requirement.Union(mod.AddedRequirement)
		}
		if mod.Min != nil {
			if *mod.Min < min {
				diags.record(&ModifierLegalityError{
					DefName: ownerName, Facet: "child", Name: declared.Name,
					Reason: "min may only be tightened, never relaxed", Pos: pos,
				})
			} else {
				min = *mod.Min
			}
		}
		if mod.Max != nil {
			if *mod.Max > max {
				diags.record(&ModifierLegalityError{
					DefName: ownerName, Facet: "child", Name: declared.Name,
					Reason: "max may only be tightened, never relaxed", Pos: pos,
				})
			} else {
				max = *mod.Max
			}
		}
		trace = append(trace, ModifierTrace{Path: c.Path, Modifier: mod})
	}

	return &EffectiveChild{
		Declared: declared, Owner: declared.Owner, Name: declared.Name,
		Type: curType, Fulfillment: fulfillment, Inheritance: inheritance, Requirement: requirement,
		Min: min, Max: max, Overridden: overridden, Overriders: overriders, Trace: trace,
	}
}
