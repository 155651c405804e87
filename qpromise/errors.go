// Package qpromise implements §4.5's promise / external-content stitcher:
// late-binding resolution of external-reference and child-placeholder
// elements produced by qdoc.Parser.
package qpromise

import (
	"fmt"

	"github.com/updownquark/qonfig/qschema"
)

// LoadError wraps a Loader failure for a given ref.
type LoadError struct {
	Ref   string
	Cause error
	Pos   qschema.Position
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: failed to load external reference %q: %v", e.Pos, e.Ref, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// NotExternalContentError is returned when a loaded document's root is
// not the conventional external-content element.
type NotExternalContentError struct {
	Ref      string
	GotName  string
	Pos      qschema.Position
}

func (e *NotExternalContentError) Error() string {
	return fmt.Sprintf("%s: %q's root is %q, not %q", e.Pos, e.Ref, e.GotName, ExternalContentTypeName)
}

// FulfillsTypeMismatchError is returned when an external-content root's
// fulfills attribute does not name a type assignable from the
// placeholder's own type.
type FulfillsTypeMismatchError struct {
	Ref          string
	FulfillsName string
	PlaceholderType string
	Pos          qschema.Position
	ExternalPos  qschema.Position
}

func (e *FulfillsTypeMismatchError) Error() string {
	return fmt.Sprintf("%s: external content %q fulfills %q, not assignable from placeholder type %q (external root at %s)",
		e.Pos, e.Ref, e.FulfillsName, e.PlaceholderType, e.ExternalPos)
}

// UnknownFulfillsTypeError is returned when the fulfills attribute names
// an element-def the root toolkit does not declare.
type UnknownFulfillsTypeError struct {
	Ref          string
	FulfillsName string
	Pos          qschema.Position
}

func (e *UnknownFulfillsTypeError) Error() string {
	return fmt.Sprintf("%s: external content %q fulfills unknown element %q", e.Pos, e.Ref, e.FulfillsName)
}

// CycleError is returned when loading ref would re-enter a ref already
// in progress on the stitch stack.
type CycleError struct {
	Ref string
	Pos qschema.Position
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: cyclic external reference to %q", e.Pos, e.Ref)
}

// OrphanPlaceholderError is returned when a child-placeholder has no
// enclosing external-reference to draw fulfilling children from.
type OrphanPlaceholderError struct {
	RoleKey string
	Pos     qschema.Position
}

func (e *OrphanPlaceholderError) Error() string {
	return fmt.Sprintf("%s: child-placeholder %q has no enclosing external-reference", e.Pos, e.RoleKey)
}

// RoleNotFoundError is returned when a child-placeholder's ref-role does
// not resolve to a declared child on the named owner type.
type RoleNotFoundError struct {
	RoleKey string
	Pos     qschema.Position
}

func (e *RoleNotFoundError) Error() string {
	return fmt.Sprintf("%s: role %q not found", e.Pos, e.RoleKey)
}

// PlaceholderCardinalityError is returned when the referring site's
// fulfilling children for a role fall outside that role's [min,max],
// reported at both the placeholder and the referring position.
type PlaceholderCardinalityError struct {
	RoleKey       string
	Min, Max      int
	Count         int
	Pos           qschema.Position
	ReferringPos  qschema.Position
}

func (e *PlaceholderCardinalityError) Error() string {
	return fmt.Sprintf("%s: role %q needs [%d,%d] children, referring site at %s supplies %d",
		e.Pos, e.RoleKey, e.Min, e.Max, e.ReferringPos, e.Count)
}
