package qschema

import (
	"sort"

	"github.com/updownquark/qonfig/qvalue"
)

// ToolkitBuilder ingests a sequence of declarations (with positions) plus
// already-closed dependency toolkits and produces a closed Toolkit. It is
// the §4.1 "Toolkit Builder": not safe for concurrent use. The Declare*
// methods panic once a successful Build has closed the toolkit, and Build
// panics if called twice.
type ToolkitBuilder struct {
	tk    *Toolkit
	diags Diagnostics

	defBuilders []*DefBuilder
	autoRules   []pendingAutoRule

	built bool
}

type pendingAutoRule struct {
	inherited []string // add-on names, resolved at Build time
	targets   []AutoTargetSpec
	pos       Position
}

// AutoTargetSpec names one auto-inheritance target before resolution: a
// bare element-def name, an "owner.role" child-def key, or both. An empty
// field means unconstrained on that axis.
type AutoTargetSpec struct {
	TypeName string
	RoleKey  string
}

// NewToolkitBuilder starts building name@version. Dependency aliases are
// bound to already-closed toolkits afterwards, one DeclareDependency call
// per extends="alias name vM.m" reference in the declaration source.
func NewToolkitBuilder(name string, version Version) *ToolkitBuilder {
	return &ToolkitBuilder{tk: NewToolkit(name, version)}
}

// DeclareDependency records an extends reference and binds it to an
// already-closed toolkit. resolved must itself be closed, and should
// satisfy resolved.Version.Compatible(want).
func (b *ToolkitBuilder) DeclareDependency(alias, name string, want Version, resolved *Toolkit) {
	b.tk.checkOpen()
	if !resolved.IsClosed() {
		b.diags.Errorf(Position{}, "dependency %q (%s) must be a closed toolkit", alias, name)
	} else if !resolved.Version.Compatible(want) {
		b.diags.Errorf(Position{}, "dependency %q requires %s@%s, found %s@%s", alias, name, want, resolved.Name, resolved.Version)
	}
	b.tk.dependencies = append(b.tk.dependencies, DependencyRef{Alias: alias, Name: name, Version: want})
	b.tk.deps[alias] = resolved
}

// DeclareValueType adds a named value type, failing on duplicate name
// within this toolkit.
func (b *ToolkitBuilder) DeclareValueType(name string, vt qvalue.Type, pos Position) {
	b.tk.checkOpen()
	if _, exists := b.tk.valueTypes[name]; exists {
		b.diags.record(&DuplicateDeclarationError{Kind: "value type", Name: name, Pos: pos})
		return
	}
	b.tk.valueTypes[name] = vt
}

// DeclareElement begins an element-def declaration and returns its
// per-type builder. super may be nil (a root element).
func (b *ToolkitBuilder) DeclareElement(name string, super *ElementDef, abstract bool, promise *AddOn, pos Position) *DefBuilder {
	b.tk.checkOpen()
	if _, exists := b.tk.elements[name]; exists {
		b.diags.record(&DuplicateDeclarationError{Kind: "element", Name: name, Pos: pos})
	}
	def := &ElementDef{base: newCommonDef(b.tk, name, abstract, pos), promise: promise}
	def.base.superElement = super
	b.tk.elements[name] = def
	db := newDefBuilder(b, def, nil)
	b.defBuilders = append(b.defBuilders, db)
	return db
}

// DeclareAddOn begins an add-on declaration and returns its per-type
// builder. requirement may be nil (unconstrained target).
func (b *ToolkitBuilder) DeclareAddOn(name string, requirement *ElementDef, abstract bool, pos Position) *DefBuilder {
	b.tk.checkOpen()
	if _, exists := b.tk.addOns[name]; exists {
		b.diags.record(&DuplicateDeclarationError{Kind: "add-on", Name: name, Pos: pos})
	}
	def := &AddOn{base: newCommonDef(b.tk, name, abstract, pos), requirement: requirement}
	b.tk.addOns[name] = def
	db := newDefBuilder(b, nil, def)
	b.defBuilders = append(b.defBuilders, db)
	return db
}

// DeclareAutoInheritance records an auto-inheritance rule. Add-on and
// type/role names are resolved at Build time, once every definition in
// this toolkit exists; they are looked up in this toolkit only, not in
// its dependencies.
func (b *ToolkitBuilder) DeclareAutoInheritance(addOnNames []string, targets []AutoTargetSpec, pos Position) {
	b.tk.checkOpen()
	b.autoRules = append(b.autoRules, pendingAutoRule{inherited: addOnNames, targets: targets, pos: pos})
}

// Build runs the §4.1 algorithm (topological ordering, inheritance
// closure, attribute/value/child flattening, auto-inheritance target
// resolution, freeze) and closes the toolkit. It returns the closed
// Toolkit; a non-nil error is always a *BuildError. Warnings are not
// returned and stay available from Diagnostics.
func (b *ToolkitBuilder) Build() (*Toolkit, error) {
	if b.built {
		panic("qschema: Build called twice on the same ToolkitBuilder")
	}
	b.built = true

	order, ok := b.topoSort()
	if !ok {
		return nil, &BuildError{Diagnostics: b.diags.Errors()}
	}

	for _, db := range order {
		db.closeInheritance(&b.diags)
	}
	for _, db := range order {
		db.flattenAttributes(&b.diags)
		db.flattenValue(&b.diags)
		db.flattenChildren(&b.diags)
	}
	for _, rule := range b.autoRules {
		b.resolveAutoRule(rule)
	}
	ValidateToolkit(&b.diags, b.tk)

	if b.diags.HasErrors() {
		return nil, &BuildError{Diagnostics: b.diags.Errors()}
	}
	b.tk.closed = true
	return b.tk, nil
}

// Diagnostics exposes every diagnostic recorded so far, errors and
// warnings alike, even before Build is called (useful for incremental
// tooling that wants to surface warnings as declarations stream in).
func (b *ToolkitBuilder) Diagnostics() []*Diagnostic { return b.diags.All() }

// Element looks up an element-def already declared on this builder, by
// name, before Build has closed the toolkit. A compiler translating a
// declaration source with forward/self extends="..." references (a
// local supertype declared later in the same file) uses this to obtain
// the *ElementDef pointer DeclareElement requires, after first resolving
// the source's own extends/inherits name graph into declaration order.
func (b *ToolkitBuilder) Element(name string) (*ElementDef, bool) { return b.tk.Element(name) }

// AddOn looks up an add-on already declared on this builder, by name,
// before Build has closed the toolkit. See Element.
func (b *ToolkitBuilder) AddOn(name string) (*AddOn, bool) { return b.tk.AddOn(name) }

// ValueType looks up a value type already declared on this builder, by
// name, before Build has closed the toolkit — used by a compiler
// resolving a forward <explicit> reference to a sibling value-type
// declared earlier in the same source.
func (b *ToolkitBuilder) ValueType(name string) (qvalue.Type, bool) { return b.tk.ValueType(name) }

// topoSort orders definitions by super-element / declared-inheritance
// edges (parents before children), reporting a CyclicInheritanceError and
// returning ok=false if a cycle is found.
func (b *ToolkitBuilder) topoSort() ([]*DefBuilder, bool) {
	byDef := map[Definition]*DefBuilder{}
	for _, db := range b.defBuilders {
		byDef[db.definition()] = db
	}

	const (
		white = iota
		gray
		black
	)
	color := map[Definition]int{}
	var order []*DefBuilder
	var stack []string
	ok := true

	var visit func(d Definition)
	visit = func(d Definition) {
		if color[d] == black || !ok {
			return
		}
		if color[d] == gray {
			ok = false
			b.diags.record(&CyclicInheritanceError{DefName: d.DefName(), Cycle: append(append([]string{}, stack...), d.DefName()), Pos: d.common().pos})
			return
		}
		color[d] = gray
		stack = append(stack, d.DefName())

		if e, isElem := d.(*ElementDef); isElem && e.base.superElement != nil {
			visit(e.base.superElement)
		}
		for _, addon := range d.common().declaredInheritance.Items() {
			visit(addon)
		}

		stack = stack[:len(stack)-1]
		color[d] = black
		if db, found := byDef[d]; found {
			order = append(order, db)
		}
	}

	names := make([]Definition, 0, len(b.defBuilders))
	for _, db := range b.defBuilders {
		names = append(names, db.definition())
	}
	sort.Slice(names, func(i, j int) bool { return names[i].DefName() < names[j].DefName() })
	for _, d := range names {
		visit(d)
	}
	return order, ok
}

func (b *ToolkitBuilder) resolveAutoRule(rule pendingAutoRule) {
	inherited := &AddOnSet{}
	for _, n := range rule.inherited {
		a, ok := b.tk.AddOn(n)
		if !ok {
			b.diags.record(&UnknownReferenceError{Kind: "add-on", Name: n, Pos: rule.pos})
			continue
		}
		inherited.Add(a)
	}

	var targets []AutoInheritTarget
	for _, t := range rule.targets {
		var tgt AutoInheritTarget
		if t.TypeName != "" {
			e, ok := b.tk.Element(t.TypeName)
			if !ok {
				b.diags.record(&UnknownReferenceError{Kind: "element", Name: t.TypeName, Pos: rule.pos})
				continue
			}
			tgt.Type = e
		}
		if t.RoleKey != "" {
			role := b.lookupRole(t.RoleKey, rule.pos)
			if role == nil {
				continue
			}
			tgt.Role = role
		}
		targets = append(targets, tgt)
	}

	b.tk.autoInheritRules = append(b.tk.autoInheritRules, AutoInheritRule{
		Declarer: b.tk, Inherited: inherited, Targets: targets, Pos: rule.pos,
	})
}

// lookupRole resolves an "owner.role" key against this toolkit's elements
// and add-ons.
func (b *ToolkitBuilder) lookupRole(key string, pos Position) *ChildDecl {
	owner, role := splitRoleKey(key)
	if owner == "" || role == "" {
		b.diags.record(&UnknownReferenceError{Kind: "role", Name: key, Pos: pos})
		return nil
	}
	var def Definition
	if e, ok := b.tk.Element(owner); ok {
		def = e
	} else if a, ok := b.tk.AddOn(owner); ok {
		def = a
	} else {
		b.diags.record(&UnknownReferenceError{Kind: "element or add-on", Name: owner, Pos: pos})
		return nil
	}
	decl, ok := def.common().declaredChildren[role]
	if !ok {
		b.diags.record(&UnknownReferenceError{Kind: "child", Name: key, Pos: pos})
		return nil
	}
	return decl
}

func splitRoleKey(key string) (owner, role string) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '.' {
			return key[:i], key[i+1:]
		}
	}
	return "", ""
}
