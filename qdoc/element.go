package qdoc

import (
	"github.com/google/uuid"

	"github.com/updownquark/qonfig/qschema"
)

// PromiseState is recorded on a ResolvedElement flagged as a promise
// placeholder (§4.5). qpromise fills Resolved/ExternalPos in once the
// external content has been stitched in; the parser only ever sets Kind,
// Ref, and RoleKey from the document itself.
type PromiseState struct {
	Kind        string // "external-reference" or "child-placeholder"
	Ref         string // the "ref" attribute, for external-reference
	RoleKey     string // the "ref-role" attribute, for child-placeholder
	Resolved    bool
	ExternalPos qschema.Position
}

// ResolvedElement is the §3 "Document element (resolved)": a fully
// validated, fully-inherited node in the parsed tree. Attribute-defs,
// child-defs, and element-defs are shared by identity across every
// resolved element that uses them; a ResolvedElement owns its Children,
// and Parent is a non-owning back-link for error reporting and ancestry
// walks.
type ResolvedElement struct {
	ID uuid.UUID

	Type          *qschema.ElementDef
	ParentRoles   *qschema.RoleSet // every inherited role this element could fulfill
	DeclaredRoles *qschema.RoleSet // the subset actually claimed (via MagicRole or uniqueness)
	Inheritance   *qschema.AddOnSet

	Attributes map[string]any
	HasText    bool
	Text       any

	Children       []*ResolvedElement
	ChildrenByRole map[*qschema.ChildDecl][]*ResolvedElement

	Pos    qschema.Position
	Parent *ResolvedElement

	Promise *PromiseState
}

func newResolvedElement(t *qschema.ElementDef, pos qschema.Position) *ResolvedElement {
	return &ResolvedElement{
		ID:             uuid.New(),
		Type:           t,
		ParentRoles:    &qschema.RoleSet{},
		DeclaredRoles:  &qschema.RoleSet{},
		Inheritance:    &qschema.AddOnSet{},
		Attributes:     map[string]any{},
		ChildrenByRole: map[*qschema.ChildDecl][]*ResolvedElement{},
		Pos:            pos,
	}
}

// IsPromise reports whether this element is a promise placeholder, which
// the parser decides from its type's declared promise add-on
// (qschema.ElementDef.Promise).
func (e *ResolvedElement) IsPromise() bool {
	return e.Promise != nil
}
