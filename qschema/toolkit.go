package qschema

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/updownquark/qonfig/qvalue"
)

// Version is a toolkit's two-part version number. Minor versions must stay
// backward compatible with their major; a dependent names the major and
// the minimum minor it needs (see DependencyRef and Compatible).
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// Compatible reports whether v can satisfy a dependent asking for
// major.minor at least as old as want.
func (v Version) Compatible(want Version) bool {
	if v.Major != want.Major {
		return false
	}
	return v.Minor >= want.Minor
}

// DependencyRef names another toolkit this one depends on, as declared in
// an extends/with-extension reference: an alias local to the declaring
// toolkit plus the name and minimum version of the target.
type DependencyRef struct {
	Alias   string
	Name    string
	Version Version
}

// Toolkit is a named, versioned schema container: the top-level unit of
// declaration and the unit of closure. A Toolkit is mutable while its
// builder is assembling it and immutable (closed) afterward; every
// exported lookup is safe for concurrent reads once closed.
type Toolkit struct {
	mu sync.RWMutex

	Name    string
	Version Version

	dependencies []DependencyRef
	deps         map[string]*Toolkit // alias -> resolved toolkit, populated at build time

	valueTypes map[string]qvalue.Type
	elements   map[string]*ElementDef
	addOns     map[string]*AddOn

	autoInheritRules []AutoInheritRule

	closed bool
}

// NewToolkit begins a new toolkit declaration. Use a ToolkitBuilder (see
// builder.go) to populate and close it; NewToolkitBuilder calls this
// constructor.
func NewToolkit(name string, version Version) *Toolkit {
	return &Toolkit{
		Name:       name,
		Version:    version,
		deps:       map[string]*Toolkit{},
		valueTypes: map[string]qvalue.Type{},
		elements:   map[string]*ElementDef{},
		addOns:     map[string]*AddOn{},
	}
}

// String renders name@major.minor, the canonical toolkit reference form
// used in diagnostics and qcatalog keys.
func (t *Toolkit) String() string { return fmt.Sprintf("%s@%s", t.Name, t.Version) }

// IsClosed reports whether a successful ToolkitBuilder.Build has closed
// the toolkit; the builder's Declare* methods panic if called after that.
func (t *Toolkit) IsClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

func (t *Toolkit) checkOpen() {
	if t.closed {
		panic(fmt.Sprintf("qschema: toolkit %s is closed", t))
	}
}

// Dependency resolves a dependency alias to the toolkit it was bound to at
// build time.
func (t *Toolkit) Dependency(alias string) (*Toolkit, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.deps[alias]
	return d, ok
}

// Dependencies returns the declared dependency refs in declaration order.
func (t *Toolkit) Dependencies() []DependencyRef {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]DependencyRef, len(t.dependencies))
	copy(out, t.dependencies)
	return out
}

// ValueType looks up a named value type, searching this toolkit then every
// dependency (depth-first, declaration order), matching the name
// resolution rule of §3: "unqualified names resolve against the local
// toolkit first, then each dependency in the order declared."
func (t *Toolkit) ValueType(name string) (qvalue.Type, bool) {
	return t.ValueTypeQualified("", name)
}

// ValueTypeQualified resolves name, optionally qualified by a dependency
// alias (alias == "" means unqualified, local-then-dependency lookup).
func (t *Toolkit) ValueTypeQualified(alias, name string) (qvalue.Type, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.resolveValueType(alias, name, map[*Toolkit]bool{})
}

func (t *Toolkit) resolveValueType(alias, name string, visited map[*Toolkit]bool) (qvalue.Type, bool) {
	if visited[t] {
		return nil, false
	}
	visited[t] = true
	if alias != "" {
		dep, ok := t.deps[alias]
		if !ok {
			return nil, false
		}
		dep.mu.RLock()
		defer dep.mu.RUnlock()
		return dep.resolveValueType("", name, visited)
	}
	if vt, ok := t.valueTypes[name]; ok {
		return vt, true
	}
	for _, ref := range t.dependencies {
		dep, ok := t.deps[ref.Alias]
		if !ok {
			continue
		}
		dep.mu.RLock()
		vt, ok := dep.resolveValueType("", name, visited)
		dep.mu.RUnlock()
		if ok {
			return vt, true
		}
	}
	return nil, false
}

// Element looks up a locally declared element-def by name (no dependency
// search: elements and add-ons, unlike value types, are referenced by the
// fully-qualified alias:name form across a toolkit boundary).
func (t *Toolkit) Element(name string) (*ElementDef, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.elements[name]
	return e, ok
}

// AddOn looks up a locally declared add-on by name.
func (t *Toolkit) AddOn(name string) (*AddOn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.addOns[name]
	return a, ok
}

// ElementQualified resolves an alias:name reference, where alias == ""
// means "this toolkit".
func (t *Toolkit) ElementQualified(alias, name string) (*ElementDef, bool) {
	tk := t
	if alias != "" {
		dep, ok := t.Dependency(alias)
		if !ok {
			return nil, false
		}
		tk = dep
	}
	return tk.Element(name)
}

// AddOnQualified resolves an alias:name add-on reference.
func (t *Toolkit) AddOnQualified(alias, name string) (*AddOn, bool) {
	tk := t
	if alias != "" {
		dep, ok := t.Dependency(alias)
		if !ok {
			return nil, false
		}
		tk = dep
	}
	return tk.AddOn(name)
}

// Elements returns every locally declared element-def, sorted by name.
func (t *Toolkit) Elements() []*ElementDef {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*ElementDef, 0, len(t.elements))
	for _, e := range t.elements {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *ElementDef) int { return strings.Compare(a.DefName(), b.DefName()) })
	return out
}

// AddOns returns every locally declared add-on, sorted by name.
func (t *Toolkit) AddOns() []*AddOn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*AddOn, 0, len(t.addOns))
	for _, a := range t.addOns {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *AddOn) int { return strings.Compare(a.DefName(), b.DefName()) })
	return out
}

// AutoInheritRules returns the declared auto-inheritance rules in
// declaration order (see autoinherit.go).
func (t *Toolkit) AutoInheritRules() []AutoInheritRule {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]AutoInheritRule, len(t.autoInheritRules))
	copy(out, t.autoInheritRules)
	return out
}
