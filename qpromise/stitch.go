package qpromise

import (
	"strings"

	"github.com/updownquark/qonfig/qdoc"
	"github.com/updownquark/qonfig/qschema"
)

// ExternalContentTypeName is the conventional element-def name an
// external-reference's target document's root must resolve to.
const ExternalContentTypeName = "external-content"

// FulfillsAttribute names the attribute on an external-content root that
// carries the element-def name it fulfills.
const FulfillsAttribute = "fulfills"

// Loader loads the document a promise's ref attribute names, as a raw
// DOM root ready for re-parsing against the same toolkit.
type Loader interface {
	Load(ref string) (qdoc.Node, error)
}

// Stitcher walks a resolved element tree produced by qdoc.Parser and
// fulfills every promise placeholder it finds, per §4.5.
type Stitcher struct {
	root   *qschema.Toolkit
	loader Loader
	diags  qschema.Diagnostics

	stack []frame
	// referring holds, for each external-reference element currently
	// spliced in, the children-by-role it carried at the referring site
	// before its content was replaced by the external document's root —
	// the material a nested child-placeholder draws from.
	referring map[*qdoc.ResolvedElement]map[*qschema.ChildDecl][]*qdoc.ResolvedElement
}

type frame struct {
	ref      string
	fulfills *qschema.ElementDef
}

// NewStitcher begins a stitch pass scoped to root (the same toolkit the
// document was parsed against) and loader (the caller's ref resolver).
func NewStitcher(root *qschema.Toolkit, loader Loader) *Stitcher {
	return &Stitcher{root: root, loader: loader, referring: map[*qdoc.ResolvedElement]map[*qschema.ChildDecl][]*qdoc.ResolvedElement{}}
}

// Diagnostics returns every diagnostic recorded so far.
func (s *Stitcher) Diagnostics() []*qschema.Diagnostic { return s.diags.All() }

// Stitch fulfills every promise placeholder reachable from elem, in
// place, and returns a *qschema.BuildError if any failure was recorded.
func (s *Stitcher) Stitch(elem *qdoc.ResolvedElement) error {
	s.walk(elem, nil, nil)
	if s.diags.HasErrors() {
		return &qschema.BuildError{Diagnostics: s.diags.Errors()}
	}
	return nil
}

func (s *Stitcher) walk(elem, parent, referringSite *qdoc.ResolvedElement) {
	if elem == nil {
		return
	}
	switch {
	case elem.IsPromise() && elem.Promise.Kind == "external-reference":
		depth := len(s.stack)
		s.fulfillExternalReference(elem)
		// The frame a successful fulfillment pushed stays on the stack
		// while the spliced content is walked, so a nested reference back
		// to the same ref is reported as a cycle.
		defer func() { s.stack = s.stack[:depth] }()
		referringSite = elem
	case elem.IsPromise() && elem.Promise.Kind == "child-placeholder":
		s.fulfillChildPlaceholder(elem, parent, referringSite)
		return // the placeholder's own (now-empty) subtree is not walked further
	}
	children := append([]*qdoc.ResolvedElement{}, elem.Children...)
	for _, c := range children {
		s.walk(c, elem, referringSite)
	}
}

// fulfillExternalReference implements §4.5 steps 1-2: load the
// referenced document, validate its root, and splice its content into
// elem's position, preserving elem's original children (the referring
// site's content) for any nested child-placeholder to draw from.
func (s *Stitcher) fulfillExternalReference(elem *qdoc.ResolvedElement) {
	ref := elem.Promise.Ref
	for _, f := range s.stack {
		if f.ref == ref {
			s.diags.ErrorCause(elem.Pos, &CycleError{Ref: ref, Pos: elem.Pos}, "fulfill external reference")
			return
		}
	}

	node, err := s.loader.Load(ref)
	if err != nil {
		s.diags.ErrorCause(elem.Pos, &LoadError{Ref: ref, Cause: err, Pos: elem.Pos}, "fulfill external reference")
		return
	}

	extRoot, err := qdoc.NewParser(s.root).ParseDocument(node)
	if err != nil {
		s.diags.ErrorCause(elem.Pos, &LoadError{Ref: ref, Cause: err, Pos: elem.Pos}, "fulfill external reference")
		return
	}

	if extRoot.Type.DefName() != ExternalContentTypeName {
		s.diags.ErrorCause(elem.Pos, &NotExternalContentError{Ref: ref, GotName: extRoot.Type.DefName(), Pos: elem.Pos}, "fulfill external reference")
		return
	}

	fulfillsName, _ := extRoot.Attributes[FulfillsAttribute].(string)
	fulfillsType, ok := s.root.Element(fulfillsName)
	if !ok {
		s.diags.ErrorCause(elem.Pos, &UnknownFulfillsTypeError{Ref: ref, FulfillsName: fulfillsName, Pos: elem.Pos}, "fulfill external reference")
		return
	}
	if !fulfillsType.IsAssignableFrom(elem.Type) {
		s.diags.ErrorCause(elem.Pos, &FulfillsTypeMismatchError{Ref: ref, FulfillsName: fulfillsName, PlaceholderType: elem.Type.DefName(), Pos: elem.Pos, ExternalPos: extRoot.Pos}, "fulfill external reference")
		return
	}

	s.stack = append(s.stack, frame{ref: ref, fulfills: fulfillsType})

	s.referring[elem] = elem.ChildrenByRole

	elem.Attributes = mergeAttrs(extRoot.Attributes, elem.Attributes)
	elem.Inheritance.Union(extRoot.Inheritance)
	elem.Children = reparented(extRoot.Children, elem)
	elem.ChildrenByRole = extRoot.ChildrenByRole
	if extRoot.HasText && !elem.HasText {
		elem.HasText, elem.Text = true, extRoot.Text
	}
	elem.Promise.Resolved = true
	elem.Promise.ExternalPos = extRoot.Pos
}

// fulfillChildPlaceholder implements §4.5 step 3: splice the referring
// site's children matching ref-role's role into parent's child list in
// elem's place, overlaying elem's own declared attributes onto each.
func (s *Stitcher) fulfillChildPlaceholder(elem, parent, referringSite *qdoc.ResolvedElement) {
	if referringSite == nil {
		s.diags.ErrorCause(elem.Pos, &OrphanPlaceholderError{RoleKey: elem.Promise.RoleKey, Pos: elem.Pos}, "fulfill child-placeholder")
		return
	}

	ownerName, roleName := splitRoleKey(elem.Promise.RoleKey)
	ownerType, ok := s.root.Element(ownerName)
	if !ok {
		s.diags.ErrorCause(elem.Pos, &RoleNotFoundError{RoleKey: elem.Promise.RoleKey, Pos: elem.Pos}, "fulfill child-placeholder")
		return
	}
	roleEff, ok := ownerType.ChildByName(roleName)
	if !ok {
		s.diags.ErrorCause(elem.Pos, &RoleNotFoundError{RoleKey: elem.Promise.RoleKey, Pos: elem.Pos}, "fulfill child-placeholder")
		return
	}

	fulfillers := s.referring[referringSite][roleEff.Declared]
	if len(fulfillers) < roleEff.Min || (roleEff.Max > 0 && len(fulfillers) > roleEff.Max) {
		s.diags.ErrorCause(elem.Pos, &PlaceholderCardinalityError{RoleKey: elem.Promise.RoleKey, Min: roleEff.Min, Max: roleEff.Max, Count: len(fulfillers), Pos: elem.Pos, ReferringPos: referringSite.Pos}, "fulfill child-placeholder")
	}

	replacement := make([]*qdoc.ResolvedElement, len(fulfillers))
	for i, f := range fulfillers {
		cp := *f
		cp.Attributes = mergeAttrs(f.Attributes, elem.Attributes)
		cp.Parent = parent
		replacement[i] = &cp
	}
	elem.Promise.Resolved = true

	if parent == nil {
		return
	}
	spliceChild(parent, elem, replacement)

	// A fulfiller copied in from the referring site may itself carry an
	// unresolved promise (e.g. a further external-reference); walk each
	// replacement so the stitch pass still reaches it.
	for _, r := range replacement {
		s.walk(r, parent, referringSite)
	}
}

// spliceChild replaces old in parent.Children (and every role slot of
// parent.ChildrenByRole it occupied) with replacement, preserving order.
func spliceChild(parent, old *qdoc.ResolvedElement, replacement []*qdoc.ResolvedElement) {
	children := make([]*qdoc.ResolvedElement, 0, len(parent.Children)-1+len(replacement))
	for _, c := range parent.Children {
		if c == old {
			children = append(children, replacement...)
			continue
		}
		children = append(children, c)
	}
	parent.Children = children

	for _, role := range old.DeclaredRoles.Items() {
		list := parent.ChildrenByRole[role]
		out := make([]*qdoc.ResolvedElement, 0, len(list)-1+len(replacement))
		for _, c := range list {
			if c == old {
				out = append(out, replacement...)
				continue
			}
			out = append(out, c)
		}
		parent.ChildrenByRole[role] = out
	}
}

func reparented(children []*qdoc.ResolvedElement, parent *qdoc.ResolvedElement) []*qdoc.ResolvedElement {
	out := make([]*qdoc.ResolvedElement, len(children))
	for i, c := range children {
		c.Parent = parent
		out[i] = c
	}
	return out
}

func mergeAttrs(base, overrides map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func splitRoleKey(key string) (owner, role string) {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}
