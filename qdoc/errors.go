package qdoc

import (
	"fmt"

	"github.com/updownquark/qonfig/qschema"
)

// UnknownElementError is returned when a document names an element that
// resolves against neither the active toolkit nor its dependencies.
type UnknownElementError struct {
	Name string
	Pos  qschema.Position
}

func (e *UnknownElementError) Error() string {
	return fmt.Sprintf("%s: unknown element %q", e.Pos, e.Name)
}

// UnknownAttributeError is returned for an attribute absent from the
// resolved element-def's effective attribute map.
type UnknownAttributeError struct {
	ElementName string
	Name        string
	Pos         qschema.Position
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("%s: %s has no attribute %q", e.Pos, e.ElementName, e.Name)
}

// ForbiddenAttributeError is returned when a Forbidden attribute is
// present in the document anyway.
type ForbiddenAttributeError struct {
	ElementName string
	Name        string
	Pos         qschema.Position
}

func (e *ForbiddenAttributeError) Error() string {
	return fmt.Sprintf("%s: attribute %q is forbidden on %s", e.Pos, e.Name, e.ElementName)
}

// RequiredMissingError is returned when a Required attribute or value is
// absent and carries no default.
type RequiredMissingError struct {
	ElementName string
	Name        string // "" for the element's text value
	Pos         qschema.Position
}

func (e *RequiredMissingError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %s requires a text value", e.Pos, e.ElementName)
	}
	return fmt.Sprintf("%s: %s requires attribute %q", e.Pos, e.ElementName, e.Name)
}

// AddOnApplicationError is returned when a with-extension add-on cannot
// legally apply: it is abstract, or its requirement is not satisfied by
// the element's type.
type AddOnApplicationError struct {
	AddOnName   string
	ElementName string
	Reason      string
	Pos         qschema.Position
}

func (e *AddOnApplicationError) Error() string {
	return fmt.Sprintf("%s: cannot apply add-on %q to %s: %s", e.Pos, e.AddOnName, e.ElementName, e.Reason)
}

// RequirementNotInheritedError is returned when a role's Requirement set
// names an add-on that the actual fulfilling child does not inherit.
type RequirementNotInheritedError struct {
	RoleName string
	AddOnName string
	Pos      qschema.Position
}

func (e *RequirementNotInheritedError) Error() string {
	return fmt.Sprintf("%s: child fulfilling role %q must inherit add-on %q", e.Pos, e.RoleName, e.AddOnName)
}

// AmbiguousRoleError is returned when a child element could fulfill more
// than one candidate role and no MagicRole attribute disambiguates it.
type AmbiguousRoleError struct {
	ElementName string
	Candidates  []string
	Pos         qschema.Position
}

func (e *AmbiguousRoleError) Error() string {
	return fmt.Sprintf("%s: %s could fulfill roles %v; add role=\"...\" to disambiguate", e.Pos, e.ElementName, e.Candidates)
}
