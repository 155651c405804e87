package qxml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/updownquark/qonfig/qdoc"
	"github.com/updownquark/qonfig/qschema"
	"github.com/updownquark/qonfig/qvalue"
)

// declNode is one <element-def> or <add-on> source node, tagged by kind
// so the shared declaration-order pass can treat both uniformly.
type declNode struct {
	node    qdoc.Node
	isAddOn bool
	def     *qschema.DefBuilder // set once declareHead runs
}

// declarationOrder computes a topological order over the combined
// element-def/add-on name graph using only the two edges that need a
// pointer at DeclareElement/DeclareAddOn call time: an element-def's
// "extends" super (must already exist) and an add-on's "requires"
// element (must already exist). "inherits" is resolved in the later
// body pass, once every head exists, and is not an ordering edge here.
func (c *compiler) declarationOrder(addOnNodes, elementNodes []qdoc.Node) ([]*declNode, error) {
	byName := map[string]*declNode{}
	for _, n := range elementNodes {
		name := attrValue(n, "name")
		if name == "" {
			return nil, &CompileError{Pos: n.Pos(), Msg: "<element-def> needs a name attribute"}
		}
		byName[name] = &declNode{node: n}
	}
	for _, n := range addOnNodes {
		name := attrValue(n, "name")
		if name == "" {
			return nil, &CompileError{Pos: n.Pos(), Msg: "<add-on> needs a name attribute"}
		}
		byName[name] = &declNode{node: n, isAddOn: true}
	}

	const (
		white = iota
		gray
		black
	)
	color := map[string]int{}
	var order []*declNode
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		dn, ok := byName[name]
		if !ok {
			return nil // external (dependency-qualified or unresolved; caught later)
		}
		switch color[name] {
		case black:
			return nil
		case gray:
			return &CompileError{Pos: dn.node.Pos(), Msg: fmt.Sprintf("cyclic extends/requires chain: %s -> %s", strings.Join(path, " -> "), name)}
		}
		color[name] = gray
		path = append(path, name)

		var dep string
		if dn.isAddOn {
			if alias, local := splitQualified(attrValue(dn.node, "requires")); alias == "" && local != "" {
				dep = local
			}
		} else if alias, local := splitQualified(attrValue(dn.node, "extends")); alias == "" && local != "" {
			dep = local
		}
		if dep != "" {
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		color[name] = black
		order = append(order, dn)
		return nil
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sortStrings(names)
	for _, n := range names {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// declareHead calls DeclareElement/DeclareAddOn for dn, resolving
// extends/requires/promise to already-existing pointers (guaranteed by
// declarationOrder).
func (c *compiler) declareHead(dn *declNode) error {
	n := dn.node
	name := attrValue(n, "name")
	abstract := attrBool(n, "abstract", false)
	pos := n.Pos()

	if dn.isAddOn {
		var requirement *qschema.ElementDef
		if req := attrValue(n, "requires"); req != "" {
			r, ok := c.resolveElement(req)
			if !ok {
				return &CompileError{Pos: pos, Msg: fmt.Sprintf("add-on %q requires unknown element %q", name, req)}
			}
			requirement = r
		}
		dn.def = c.b.DeclareAddOn(name, requirement, abstract, pos)
		return nil
	}

	var super *qschema.ElementDef
	if ext := attrValue(n, "extends"); ext != "" {
		s, ok := c.resolveElement(ext)
		if !ok {
			return &CompileError{Pos: pos, Msg: fmt.Sprintf("element %q extends unknown element %q", name, ext)}
		}
		super = s
	}
	var promise *qschema.AddOn
	if attrBool(n, "promise", false) {
		if c.opts.PromiseAddOn == nil {
			return &CompileError{Pos: pos, Msg: fmt.Sprintf("element %q is promise=\"true\" but no PromiseAddOn was supplied", name)}
		}
		promise = c.opts.PromiseAddOn
	}
	dn.def = c.b.DeclareElement(name, super, abstract, promise, pos)
	return nil
}

// resolveElement resolves a (possibly "alias:") element name against
// this toolkit's own in-progress builder first, then its dependencies.
func (c *compiler) resolveElement(ref string) (*qschema.ElementDef, bool) {
	alias, local := splitQualified(ref)
	if alias != "" {
		dep, ok := c.opts.Dependencies[alias]
		if !ok {
			return nil, false
		}
		return dep.Element(local)
	}
	return c.b.Element(local)
}

func (c *compiler) resolveAddOn(ref string) (*qschema.AddOn, bool) {
	alias, local := splitQualified(ref)
	if alias != "" {
		dep, ok := c.opts.Dependencies[alias]
		if !ok {
			return nil, false
		}
		return dep.AddOn(local)
	}
	return c.b.AddOn(local)
}

// compileBody walks dn's nested <attribute>/<attr-mod>/<value>/
// <value-mod>/<child-def>/<child-mod>/<inherits> declarations, now that
// every head in the toolkit exists.
func (c *compiler) compileBody(dn *declNode) error {
	name := attrValue(dn.node, "name")
	for _, n := range dn.node.Children() {
		var err error
		switch localName(n.Name()) {
		case "attribute":
			err = c.compileAttribute(dn, name, n)
		case "attr-mod":
			err = c.compileAttrMod(dn, n)
		case "value":
			err = c.compileValue(dn, n)
		case "value-mod":
			err = c.compileValueMod(dn, n)
		case "child-def":
			err = c.compileChildDef(dn, name, n)
		case "child-mod":
			err = c.compileChildMod(dn, n)
		case "inherits":
			err = c.compileInherits(dn, n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) compileInherits(dn *declNode, n qdoc.Node) error {
	for _, part := range strings.Split(n.Text(), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		a, ok := c.resolveAddOn(part)
		if !ok {
			return &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("unknown add-on %q in <inherits>", part)}
		}
		dn.def.Inherits(a)
	}
	return nil
}

func (c *compiler) compileAttribute(dn *declNode, ownerName string, n qdoc.Node) error {
	vt, ok := c.lookupValueType(attrValue(n, "type"))
	if !ok {
		return &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("attribute %q: unknown value-type %q", attrValue(n, "name"), attrValue(n, "type"))}
	}
	spec, err := parseSpecification(attrValue(n, "specify"))
	if err != nil {
		return &CompileError{Pos: n.Pos(), Msg: err.Error()}
	}
	def, hasDefault := "", false
	if d, present := findAttr(n, "default"); present {
		def, hasDefault = d, true
	}
	attrName := attrValue(n, "name")
	decl := dn.def.AddAttribute(attrName, vt, spec, valueOrNil(def, hasDefault), hasDefault, n.Pos())
	if decl == nil {
		return nil // duplicate; already recorded as a diagnostic inside AddAttribute
	}
	if c.localAttr[ownerName] == nil {
		c.localAttr[ownerName] = map[string]*qschema.AttributeDecl{}
	}
	c.localAttr[ownerName][attrName] = decl
	return nil
}

func (c *compiler) compileValue(dn *declNode, n qdoc.Node) error {
	vt, ok := c.lookupValueType(attrValue(n, "type"))
	if !ok {
		return &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("value: unknown value-type %q", attrValue(n, "type"))}
	}
	spec, err := parseSpecification(attrValue(n, "specify"))
	if err != nil {
		return &CompileError{Pos: n.Pos(), Msg: err.Error()}
	}
	def, hasDefault := findAttr(n, "default")
	decl := dn.def.DeclareValue(vt, spec, valueOrNil(def, hasDefault), hasDefault, n.Pos())
	if decl != nil {
		c.localValue[attrValue(dn.node, "name")] = decl
	}
	return nil
}

func (c *compiler) compileChildDef(dn *declNode, ownerName string, n qdoc.Node) error {
	var typ *qschema.ElementDef
	if t := attrValue(n, "type"); t != "" {
		et, ok := c.resolveElement(t)
		if !ok {
			return &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("child-def %q: unknown element type %q", attrValue(n, "name"), t)}
		}
		typ = et
	}
	min, max := parseCardinality(n)
	childName := attrValue(n, "name")
	decl := dn.def.AddChild(childName, typ, min, max, n.Pos())
	if decl == nil {
		return nil
	}
	if c.localChild[ownerName] == nil {
		c.localChild[ownerName] = map[string]*qschema.ChildDecl{}
	}
	c.localChild[ownerName][childName] = decl
	return nil
}

func (c *compiler) compileAttrMod(dn *declNode, n qdoc.Node) error {
	owner, attrName := splitOwnerKey(attrValue(n, "name"))
	declared, err := c.resolveAttrDecl(owner, attrName, n.Pos())
	if err != nil {
		return err
	}
	var spec *qschema.Specification
	if s := attrValue(n, "specify"); s != "" {
		parsed, err := parseSpecification(s)
		if err != nil {
			return &CompileError{Pos: n.Pos(), Msg: err.Error()}
		}
		spec = &parsed
	}
	var vt qvalue.Type
	if t := attrValue(n, "type"); t != "" {
		v, ok := c.lookupValueType(t)
		if !ok {
			return &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("attr-mod: unknown value-type %q", t)}
		}
		vt = v
	}
	def, hasDefault := findAttr(n, "default")
	dn.def.ModifyAttribute(declared, vt, spec, valueOrNil(def, hasDefault), hasDefault, n.Pos())
	return nil
}

func (c *compiler) compileValueMod(dn *declNode, n qdoc.Node) error {
	owner := attrValue(n, "name")
	declared, ok := c.localValue[owner]
	if !ok {
		return &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("value-mod: no declared value on %q", owner)}
	}
	var spec *qschema.Specification
	if s := attrValue(n, "specify"); s != "" {
		parsed, err := parseSpecification(s)
		if err != nil {
			return &CompileError{Pos: n.Pos(), Msg: err.Error()}
		}
		spec = &parsed
	}
	var vt qvalue.Type
	if t := attrValue(n, "type"); t != "" {
		v, ok := c.lookupValueType(t)
		if !ok {
			return &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("value-mod: unknown value-type %q", t)}
		}
		vt = v
	}
	def, hasDefault := findAttr(n, "default")
	dn.def.ModifyValue(declared, vt, spec, valueOrNil(def, hasDefault), hasDefault, n.Pos())
	return nil
}

func (c *compiler) compileChildMod(dn *declNode, n qdoc.Node) error {
	owner, childName := splitOwnerKey(attrValue(n, "name"))
	declared, err := c.resolveChildDecl(owner, childName, n.Pos())
	if err != nil {
		return err
	}
	var typ *qschema.ElementDef
	if t := attrValue(n, "type"); t != "" {
		et, ok := c.resolveElement(t)
		if !ok {
			return &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("child-mod: unknown element type %q", t)}
		}
		typ = et
	}
	var addedInheritance, addedRequirement *qschema.AddOnSet
	if inh := attrValue(n, "inherits"); inh != "" {
		addedInheritance = qschema.NewAddOnSet()
		for _, part := range strings.Split(inh, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			a, ok := c.resolveAddOn(part)
			if !ok {
				return &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("child-mod: unknown add-on %q", part)}
			}
			addedInheritance.Add(a)
		}
	}
	if req := attrValue(n, "requires"); req != "" {
		addedRequirement = qschema.NewAddOnSet()
		for _, part := range strings.Split(req, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			a, ok := c.resolveAddOn(part)
			if !ok {
				return &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("child-mod: unknown add-on %q", part)}
			}
			addedRequirement.Add(a)
		}
	}
	var min, max *int
	if v, present := findAttr(n, "min"); present {
		i, err := strconv.Atoi(v)
		if err != nil {
			return &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("child-mod: bad min %q", v)}
		}
		min = &i
	}
	if v, present := findAttr(n, "max"); present {
		i, err := strconv.Atoi(v)
		if err != nil {
			return &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("child-mod: bad max %q", v)}
		}
		max = &i
	}
	overridden := attrBool(n, "overridden", false)
	dn.def.ModifyChild(declared, typ, addedInheritance, addedRequirement, min, max, overridden, nil, n.Pos())
	return nil
}

func (c *compiler) resolveAttrDecl(owner, attrName string, pos qschema.Position) (*qschema.AttributeDecl, error) {
	if alias, local := splitQualified(owner); alias != "" {
		dep, ok := c.opts.Dependencies[alias]
		if !ok {
			return nil, &CompileError{Pos: pos, Msg: fmt.Sprintf("unknown dependency alias %q", alias)}
		}
		et, ok := dep.Element(local)
		if !ok {
			return nil, &CompileError{Pos: pos, Msg: fmt.Sprintf("unknown element %q in %q", local, alias)}
		}
		eff, ok := et.AttributeByName(attrName)
		if !ok {
			return nil, &CompileError{Pos: pos, Msg: fmt.Sprintf("unknown attribute %q on %s:%s", attrName, alias, local)}
		}
		return eff.Declared, nil
	}
	if m, ok := c.localAttr[owner]; ok {
		if d, ok := m[attrName]; ok {
			return d, nil
		}
	}
	return nil, &CompileError{Pos: pos, Msg: fmt.Sprintf("attr-mod target %q.%q not found", owner, attrName)}
}

func (c *compiler) resolveChildDecl(owner, childName string, pos qschema.Position) (*qschema.ChildDecl, error) {
	if alias, local := splitQualified(owner); alias != "" {
		dep, ok := c.opts.Dependencies[alias]
		if !ok {
			return nil, &CompileError{Pos: pos, Msg: fmt.Sprintf("unknown dependency alias %q", alias)}
		}
		et, ok := dep.Element(local)
		if !ok {
			return nil, &CompileError{Pos: pos, Msg: fmt.Sprintf("unknown element %q in %q", local, alias)}
		}
		eff, ok := et.ChildByName(childName)
		if !ok {
			return nil, &CompileError{Pos: pos, Msg: fmt.Sprintf("unknown child %q on %s:%s", childName, alias, local)}
		}
		return eff.Declared, nil
	}
	if m, ok := c.localChild[owner]; ok {
		if d, ok := m[childName]; ok {
			return d, nil
		}
	}
	return nil, &CompileError{Pos: pos, Msg: fmt.Sprintf("child-mod target %q.%q not found", owner, childName)}
}

func (c *compiler) compileAutoInheritance(el qdoc.Node) error {
	for _, n := range el.Children() {
		if localName(n.Name()) != "inherits" {
			continue
		}
		var names []string
		for _, part := range strings.Split(n.Text(), ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				names = append(names, part)
			}
		}
		var targets []qschema.AutoTargetSpec
		for _, tn := range n.Children() {
			if localName(tn.Name()) != "target" {
				continue
			}
			targets = append(targets, qschema.AutoTargetSpec{
				TypeName: attrValue(tn, "type"),
				RoleKey:  attrValue(tn, "role"),
			})
		}
		c.b.DeclareAutoInheritance(names, targets, n.Pos())
	}
	return nil
}

// parseSpecification wraps qschema.ParseSpecification, defaulting an
// absent specify="..." attribute to Optional per its most common use.
func parseSpecification(s string) (qschema.Specification, error) {
	if strings.TrimSpace(s) == "" {
		return qschema.Optional, nil
	}
	return qschema.ParseSpecification(s)
}

func parseCardinality(n qdoc.Node) (min, max int) {
	min = parseIntAttr(n, "min", 0)
	max = parseIntAttr(n, "max", 0)
	return
}

func parseIntAttr(n qdoc.Node, name string, def int) int {
	v := attrValue(n, name)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func findAttr(n qdoc.Node, name string) (string, bool) {
	for _, a := range n.Attrs() {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func valueOrNil(v string, present bool) any {
	if !present {
		return nil
	}
	return v
}
