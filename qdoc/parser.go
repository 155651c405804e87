package qdoc

import (
	"strings"

	"github.com/updownquark/qonfig/qschema"
)

// Parser builds a resolved element tree against a root toolkit (and,
// transitively, its dependencies), per §4.4.
type Parser struct {
	Root  *qschema.Toolkit
	diags qschema.Diagnostics
	ctx   *stack
}

// NewParser begins a parse scoped to root, which must already be closed.
func NewParser(root *qschema.Toolkit) *Parser {
	return &Parser{Root: root, ctx: newStack()}
}

// Diagnostics returns every diagnostic recorded so far.
func (p *Parser) Diagnostics() []*qschema.Diagnostic { return p.diags.All() }

// ParseDocument parses root into a resolved element tree. A non-nil error
// is always a *qschema.BuildError.
func (p *Parser) ParseDocument(root Node) (*ResolvedElement, error) {
	elem := p.parseElement(root, nil, nil)
	if p.diags.HasErrors() {
		return nil, &qschema.BuildError{Diagnostics: p.diags.Errors()}
	}
	return elem, nil
}

// parseElement implements the eight-step per-element algorithm of §4.4.
// candidateRoles are the parent-provided child-defs this node might
// fulfill (nil at the document root); parent is the already-built parent
// ResolvedElement, for the non-owning back-link.
func (p *Parser) parseElement(n Node, candidateRoles []*qschema.ChildDecl, parent *ResolvedElement) *ResolvedElement {
	// Step 1: resolve the element name to a def.
	t := p.resolveElement(n.Name(), n.Pos())
	if t == nil {
		return nil
	}

	// Step 2: narrow the candidate parent-role set by name/role match,
	// and pick the declared subset.
	declaredRoles := p.selectRoles(n, t, candidateRoles)

	elem := newResolvedElement(t, n.Pos())
	elem.Parent = parent
	elem.ParentRoles = qschema.NewRoleSet(candidateRoles...)
	elem.DeclaredRoles = qschema.NewRoleSet(declaredRoles...)

	// Step 3: apply with-extension.
	inheritance := qschema.NewAddOnSet()
	for _, name := range p.withExtension(n) {
		addon := p.resolveAddOn(name, n.Pos())
		if addon == nil {
			continue
		}
		if addon.IsAbstract() {
			p.diags.ErrorCause(n.Pos(), &AddOnApplicationError{AddOnName: name, ElementName: t.DefName(), Reason: "add-on is abstract", Pos: n.Pos()}, "with-extension")
			continue
		}
		if req := addon.Requirement(); req != nil && !req.IsAssignableFrom(t) {
			p.diags.ErrorCause(n.Pos(), &AddOnApplicationError{AddOnName: name, ElementName: t.DefName(), Reason: "requirement " + req.DefName() + " not satisfied", Pos: n.Pos()}, "with-extension")
			continue
		}
		inheritance.Add(addon)
	}

	// Step 4: auto-inheritance, scoped to the accumulated ancestry.
	f := p.ctx.current().descend(t, declaredRoles)
	p.ctx.push(f)
	defer p.ctx.pop()
	auto := f.autoInherit(p.toolkitScope()...)
	inheritance.Union(auto.Inheritance())
	elem.Inheritance = inheritance

	// Step 5: attributes.
	p.parseAttributes(n, t, elem)

	// Step 6: text value.
	p.parseValue(n, t, elem)

	// Step 7: children & role fulfillment.
	p.parseChildren(n, t, elem)

	// Step 8: promise detection.
	p.detectPromise(n, t, elem)

	return elem
}

func (p *Parser) toolkitScope() []*qschema.Toolkit {
	out := []*qschema.Toolkit{p.Root}
	for _, dep := range p.Root.Dependencies() {
		if tk, ok := p.Root.Dependency(dep.Alias); ok {
			out = append(out, tk)
		}
	}
	return out
}

func splitQualified(name string) (alias, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func (p *Parser) resolveElement(name string, pos qschema.Position) *qschema.ElementDef {
	alias, local := splitQualified(name)
	t, ok := p.Root.ElementQualified(alias, local)
	if !ok {
		p.diags.ErrorCause(pos, &UnknownElementError{Name: name, Pos: pos}, "resolve element")
		return nil
	}
	return t
}

func (p *Parser) resolveAddOn(name string, pos qschema.Position) *qschema.AddOn {
	alias, local := splitQualified(name)
	a, ok := p.Root.AddOnQualified(alias, local)
	if !ok {
		p.diags.ErrorCause(pos, &UnknownElementError{Name: name, Pos: pos}, "resolve add-on")
		return nil
	}
	return a
}

func (p *Parser) withExtension(n Node) []string {
	for _, a := range n.Attrs() {
		if a.Name == MagicWithExtension {
			var names []string
			for _, part := range strings.Split(a.Value, ",") {
				part = strings.TrimSpace(part)
				if part != "" {
					names = append(names, part)
				}
			}
			return names
		}
	}
	return nil
}

func (p *Parser) explicitRole(n Node) (string, bool) {
	for _, a := range n.Attrs() {
		if a.Name == MagicRole {
			return a.Value, true
		}
	}
	return "", false
}

// selectRoles narrows candidateRoles to the ones this node actually
// fulfills, per step 2: either the role named explicitly via MagicRole,
// or every candidate whose type accepts t (a typeless role accepts any
// type); more than one such candidate is an ambiguity error. Role names
// are matched only through MagicRole, never against n.Name().
func (p *Parser) selectRoles(n Node, t *qschema.ElementDef, candidateRoles []*qschema.ChildDecl) []*qschema.ChildDecl {
	if len(candidateRoles) == 0 {
		return nil
	}
	if roleName, ok := p.explicitRole(n); ok {
		for _, r := range candidateRoles {
			if r.Name == roleName {
				return []*qschema.ChildDecl{r}
			}
		}
		p.diags.Errorf(n.Pos(), "role %q not found among candidate roles", roleName)
		return nil
	}
	var matches []*qschema.ChildDecl
	for _, r := range candidateRoles {
		if r.Type == nil || r.Type.IsAssignableFrom(t) {
			matches = append(matches, r)
		}
	}
	if len(matches) > 1 {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		p.diags.ErrorCause(n.Pos(), &AmbiguousRoleError{ElementName: t.DefName(), Candidates: names, Pos: n.Pos()}, "select role")
		return matches
	}
	return matches
}

func (p *Parser) parseAttributes(n Node, t *qschema.ElementDef, elem *ResolvedElement) {
	seen := map[string]bool{}
	for _, a := range n.Attrs() {
		if a.Name == MagicWithExtension || a.Name == MagicRole {
			continue
		}
		seen[a.Name] = true
		eff, ok := t.AttributeByName(a.Name)
		if !ok {
			p.diags.ErrorCause(a.Pos, &UnknownAttributeError{ElementName: t.DefName(), Name: a.Name, Pos: a.Pos}, "parse attribute")
			continue
		}
		if eff.Specification == qschema.Forbidden {
			p.diags.ErrorCause(a.Pos, &ForbiddenAttributeError{ElementName: t.DefName(), Name: a.Name, Pos: a.Pos}, "parse attribute")
			continue
		}
		res, err := eff.ValueType.Parse(a.Value)
		if err != nil {
			p.diags.ErrorCause(a.Pos, &qschema.TypeCoercionError{TypeName: eff.ValueType.TypeName(), Text: a.Value, Cause: err, Pos: a.Pos}, "parse attribute")
			continue
		}
		elem.Attributes[a.Name] = res.Value
	}
	for name, eff := range t.AllAttributes() {
		_ = name
		if seen[eff.Name] {
			continue
		}
		switch eff.Specification {
		case qschema.Required:
			p.diags.ErrorCause(n.Pos(), &RequiredMissingError{ElementName: t.DefName(), Name: eff.Name, Pos: n.Pos()}, "check required")
		case qschema.Optional:
			if eff.HasDefault {
				elem.Attributes[eff.Name] = eff.Default
			}
		}
	}
}

func (p *Parser) parseValue(n Node, t *qschema.ElementDef, elem *ResolvedElement) {
	eff, ok := t.Value()
	text := n.Text()
	if !ok {
		if strings.TrimSpace(text) != "" {
			p.diags.Errorf(n.Pos(), "%s declares no text value but text content is present", t.DefName())
		}
		return
	}
	if strings.TrimSpace(text) == "" {
		switch eff.Specification {
		case qschema.Required:
			p.diags.ErrorCause(n.Pos(), &RequiredMissingError{ElementName: t.DefName(), Pos: n.Pos()}, "check required value")
		case qschema.Optional:
			if eff.HasDefault {
				elem.HasText, elem.Text = true, eff.Default
			}
		}
		return
	}
	if eff.Specification == qschema.Forbidden {
		p.diags.Errorf(n.Pos(), "%s forbids a text value", t.DefName())
		return
	}
	res, err := eff.ValueType.Parse(text)
	if err != nil {
		p.diags.ErrorCause(n.Pos(), &qschema.TypeCoercionError{TypeName: eff.ValueType.TypeName(), Text: text, Cause: err, Pos: n.Pos()}, "parse value")
		return
	}
	elem.HasText, elem.Text = true, res.Value
}

func (p *Parser) parseChildren(n Node, t *qschema.ElementDef, elem *ResolvedElement) {
	candidates := make([]*qschema.ChildDecl, 0, len(t.AllChildren()))
	for _, eff := range t.AllChildren() {
		candidates = append(candidates, eff.Declared)
	}

	for _, cn := range n.Children() {
		child := p.parseElement(cn, candidates, elem)
		if child == nil {
			continue
		}
		elem.Children = append(elem.Children, child)
		for _, r := range child.DeclaredRoles.Items() {
			elem.ChildrenByRole[r] = append(elem.ChildrenByRole[r], child)
		}
	}

	for _, eff := range t.AllChildren() {
		count := len(elem.ChildrenByRole[eff.Declared])
		if count < eff.Min || (eff.Max > 0 && count > eff.Max) {
			p.diags.ErrorCause(n.Pos(), &qschema.CardinalityError{ElementName: t.DefName(), RoleName: eff.Name, Min: eff.Min, Max: eff.Max, Count: count, Pos: n.Pos()}, "check child cardinality")
		}
		if eff.Overridden && count > 0 && eff.Max == 0 {
			p.diags.Errorf(n.Pos(), "%s.%s is overridden and closed (min=max=0); %d children present", t.DefName(), eff.Name, count)
		}
		for _, addon := range eff.Requirement.Items() {
			for _, c := range elem.ChildrenByRole[eff.Declared] {
				if !c.Inheritance.Contains(addon) {
					p.diags.ErrorCause(c.Pos, &RequirementNotInheritedError{RoleName: eff.Name, AddOnName: addon.DefName(), Pos: c.Pos}, "check role requirement")
				}
			}
		}
	}
}

// detectPromise implements step 8: mark elem as a promise placeholder if
// its type declares a non-nil Promise add-on. An add-on in elem's
// inheritance does not by itself make elem a promise. The actual
// stitching happens in qpromise.Stitch.
func (p *Parser) detectPromise(n Node, t *qschema.ElementDef, elem *ResolvedElement) {
	if t.Promise() == nil {
		return
	}
	kind := "external-reference"
	var ref, roleKey string
	for _, a := range n.Attrs() {
		switch a.Name {
		case "ref":
			ref = a.Value
		case "ref-role":
			kind, roleKey = "child-placeholder", a.Value
		}
	}
	elem.Promise = &PromiseState{Kind: kind, Ref: ref, RoleKey: roleKey}
}
