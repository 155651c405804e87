package qschema

import "fmt"

// UnknownReferenceError is returned when a declaration names a value type,
// element-def, or add-on that cannot be resolved against the local
// toolkit or its dependencies.
type UnknownReferenceError struct {
	Kind string // "value type", "element", "add-on"
	Name string
	Pos  Position
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("%s: unknown %s %q", e.Pos, e.Kind, e.Name)
}

// InheritanceConflictError is returned when the merge kernel finds two
// modifiers of the same facet reaching a definition via distinct
// inheritance paths with disagreeing effective values (a diamond
// conflict per §4.6).
type InheritanceConflictError struct {
	DefName string
	Facet   string // "attribute", "value", "child"
	Name    string
	PathA   []*AddOn
	PathB   []*AddOn
	Pos     Position
}

func (e *InheritanceConflictError) Error() string {
	return fmt.Sprintf("%s: %s %q on %q reaches conflicting values via %s and %s",
		e.Pos, e.Facet, e.Name, e.DefName, pathString(e.PathA), pathString(e.PathB))
}

func pathString(path []*AddOn) string {
	if len(path) == 0 {
		return "(direct)"
	}
	s := ""
	for i, a := range path {
		if i > 0 {
			s += "->"
		}
		s += a.DefName()
	}
	return s
}

// CardinalityError is returned when a document element's child count for
// a role falls outside that role's effective min/max (§4.4). An illegal
// min/max change in a modify-child is a ModifierLegalityError instead.
type CardinalityError struct {
	ElementName string
	RoleName    string
	Min, Max    int
	Count       int
	Pos         Position
}

func (e *CardinalityError) Error() string {
	if e.Count < e.Min {
		return fmt.Sprintf("%s: %s.%s requires at least %d, found %d", e.Pos, e.ElementName, e.RoleName, e.Min, e.Count)
	}
	return fmt.Sprintf("%s: %s.%s allows at most %d, found %d", e.Pos, e.ElementName, e.RoleName, e.Max, e.Count)
}

// TypeCoercionError is returned when a value type rejects the text given
// for an attribute or element value.
type TypeCoercionError struct {
	TypeName string
	Text     string
	Cause    error
	Pos      Position
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("%s: cannot parse %q as %s: %v", e.Pos, e.Text, e.TypeName, e.Cause)
}

func (e *TypeCoercionError) Unwrap() error { return e.Cause }

// ModifierLegalityError is returned when a modify-attribute, modify-value,
// or modify-child declaration attempts a change the spec forbids for that
// facet (for example, narrowing a declared type, or an add-on attempting
// to declare a new value).
type ModifierLegalityError struct {
	DefName string
	Facet   string
	Name    string
	Reason  string
	Pos     Position
}

func (e *ModifierLegalityError) Error() string {
	return fmt.Sprintf("%s: illegal %s modifier for %q on %q: %s", e.Pos, e.Facet, e.Name, e.DefName, e.Reason)
}

// DuplicateDeclarationError is returned when a toolkit declares two
// elements, add-ons, or value types under the same name, or a definition
// declares the same attribute/child/value twice.
type DuplicateDeclarationError struct {
	Kind     string
	Name     string
	Pos      Position
	FirstPos Position
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("%s: %s %q already declared at %s", e.Pos, e.Kind, e.Name, e.FirstPos)
}

// CyclicInheritanceError is returned when an element-def's super-element
// chain, or an add-on's declared inheritance, forms a cycle.
type CyclicInheritanceError struct {
	DefName string
	Cycle   []string
	Pos     Position
}

func (e *CyclicInheritanceError) Error() string {
	cycle := ""
	for i, n := range e.Cycle {
		if i > 0 {
			cycle += " -> "
		}
		cycle += n
	}
	return fmt.Sprintf("%s: cyclic inheritance involving %q: %s", e.Pos, e.DefName, cycle)
}
