package qschema

// ValidateToolkit runs the §4.6 whole-toolkit validation pass over an
// already-built (but not yet necessarily closed) toolkit: for every
// declared child on every element-def and add-on, walk the inheritance
// chain collecting each inherited add-on's modifier together with its
// trace (the path of add-ons from the owner to the contributor), and
// report whenever two traces reach the same child with incompatible
// specs. Recursion is guarded by a no-recurse set so a self-referential
// child type (an element-def whose child type is itself, directly or
// through an ancestor) terminates instead of looping.
//
// This is a consistency check layered over the flattening already
// performed by ToolkitBuilder.Build: flattenChildren computes the same
// traces incrementally, level by level, as part of closing each
// definition; ValidateToolkit reads those recorded traces, checks every
// incomparable pair in them, and walks each child's type recursively,
// which is how a diamond conflict hiding behind a self-referential type
// gets caught even when the incremental pass's per-level view looked
// locally consistent.
func ValidateToolkit(diags *Diagnostics, tk *Toolkit) {
	noRecurse := map[Definition]bool{}
	for _, e := range tk.Elements() {
		validateDef(diags, e, noRecurse)
	}
	for _, a := range tk.AddOns() {
		validateDef(diags, a, noRecurse)
	}
}

func validateDef(diags *Diagnostics, def Definition, noRecurse map[Definition]bool) {
	if noRecurse[def] {
		return
	}
	noRecurse[def] = true

	c := def.common()
	for declared, eff := range c.allChildren {
		validateChild(diags, def.DefName(), declared, eff)
		if eff.Type != nil {
			validateDef(diags, eff.Type, noRecurse)
		}
	}
}

// validateChild cross-checks a flattened EffectiveChild's trace for
// internal consistency: every pairwise-incomparable pair of inherited
// add-on contributions in the trace must agree on min/max and type,
// since mergeChild would otherwise have recorded a ModifierLegalityError
// already — this re-derivation exists to surface the case where the
// conflict only becomes visible once the full (possibly
// self-referential) type graph is walked.
func validateChild(diags *Diagnostics, ownerName string, declared *ChildDecl, eff *EffectiveChild) {
	var inherited []ModifierTrace
	for _, t := range eff.Trace {
		if len(t.Path) > 0 {
			inherited = append(inherited, t)
		}
	}
	for i := 0; i < len(inherited); i++ {
		mi, ok := inherited[i].Modifier.(*ChildModifier)
		if !ok {
			continue
		}
		for j := i + 1; j < len(inherited); j++ {
			mj, ok := inherited[j].Modifier.(*ChildModifier)
			if !ok {
				continue
			}
			if !incomparable(inherited[i].Path, inherited[j].Path) {
				continue
			}
			if childModifiersConflict(mi, mj) {
				diags.record(&InheritanceConflictError{
					DefName: ownerName, Facet: "child", Name: declared.Name,
					PathA: inherited[i].Path, PathB: inherited[j].Path, Pos: declared.Pos,
				})
			}
		}
	}
}

func childModifiersConflict(a, b *ChildModifier) bool {
	if a.Type != nil && b.Type != nil && a.Type != b.Type {
		if !a.Type.IsAssignableFrom(b.Type) && !b.Type.IsAssignableFrom(a.Type) {
			return true
		}
	}
	if a.Min != nil && b.Min != nil && *a.Min != *b.Min {
		return true
	}
	if a.Max != nil && b.Max != nil && *a.Max != *b.Max {
		return true
	}
	return false
}
