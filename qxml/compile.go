package qxml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/updownquark/qonfig/qdoc"
	"github.com/updownquark/qonfig/qschema"
	"github.com/updownquark/qonfig/qvalue"
)

// CompileOptions supplies everything a toolkit-declaration source cannot
// name by itself: already-built dependency toolkits (for extends="..."),
// concrete value types backing <external> declarations, and the
// canonical promise add-on an element-def's promise="true" attribute
// refers to (qref's bundled vocabulary supplies this in production; a
// test toolkit may supply its own stand-in).
type CompileOptions struct {
	Dependencies  map[string]*qschema.Toolkit
	ExternalTypes map[string]qvalue.Type
	PromiseAddOn  *qschema.AddOn
}

// CompileError reports a structural problem in a declaration source that
// prevented even starting the qschema.ToolkitBuilder pass (unlike
// qschema.BuildError, which reports accumulated semantic diagnostics
// recorded once the builder is running).
type CompileError struct {
	Pos qschema.Position
	Msg string
}

func (e *CompileError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// CompileToolkit translates a parsed qonfig-def root into a closed
// Toolkit, implementing §6's declaration-source grammar end to end:
// value-types, add-ons, elements (with attribute/value/child declare and
// modify forms), and auto-inheritance rules.
func CompileToolkit(root qdoc.Node, opts CompileOptions) (*qschema.Toolkit, error) {
	c := &compiler{
		opts:       opts,
		localAttr:  map[string]map[string]*qschema.AttributeDecl{},
		localChild: map[string]map[string]*qschema.ChildDecl{},
		localValue: map[string]*qschema.ValueDecl{},
	}
	return c.compile(root)
}

type compiler struct {
	opts CompileOptions
	b    *qschema.ToolkitBuilder

	// localAttr/localChild/localValue index this toolkit's own freshly
	// declared decls by owner-name, for <attr-mod>/<child-mod>/<value-mod>
	// targets that reference a sibling declared earlier in the same
	// source — the flattened, modifier-aware view isn't ready until
	// Build, so same-toolkit targets must be resolved against the raw
	// decls as they are created, not against AttributeByName/ChildByName.
	localAttr  map[string]map[string]*qschema.AttributeDecl
	localChild map[string]map[string]*qschema.ChildDecl
	localValue map[string]*qschema.ValueDecl
}

func (c *compiler) compile(root qdoc.Node) (*qschema.Toolkit, error) {
	if localName(root.Name()) != "qonfig-def" {
		return nil, &CompileError{Pos: root.Pos(), Msg: fmt.Sprintf("expected root element <qonfig-def>, got <%s>", root.Name())}
	}

	name := attrValue(root, "name")
	version, err := parseVersion(attrValue(root, "version"))
	if err != nil {
		return nil, &CompileError{Pos: root.Pos(), Msg: err.Error()}
	}

	c.b = qschema.NewToolkitBuilder(name, version)

	if err := c.declareDependencies(root); err != nil {
		return nil, err
	}

	var valueTypesEl, addOnsEl, elementsEl, autoEl qdoc.Node
	for _, ch := range root.Children() {
		switch localName(ch.Name()) {
		case "value-types":
			valueTypesEl = ch
		case "add-ons":
			addOnsEl = ch
		case "elements":
			elementsEl = ch
		case "auto-inheritance":
			autoEl = ch
		}
	}

	if valueTypesEl != nil {
		if err := c.compileValueTypes(valueTypesEl); err != nil {
			return nil, err
		}
	}

	var addOnNodes, elementNodes []qdoc.Node
	if addOnsEl != nil {
		addOnNodes = addOnsEl.Children()
	}
	if elementsEl != nil {
		elementNodes = elementsEl.Children()
	}

	order, err := c.declarationOrder(addOnNodes, elementNodes)
	if err != nil {
		return nil, err
	}
	for _, dn := range order {
		if err := c.declareHead(dn); err != nil {
			return nil, err
		}
	}
	for _, dn := range order {
		if err := c.compileBody(dn); err != nil {
			return nil, err
		}
	}

	if autoEl != nil {
		c.compileAutoInheritance(autoEl)
	}

	return c.b.Build()
}

func (c *compiler) declareDependencies(root qdoc.Node) error {
	ext := attrValue(root, "extends")
	if strings.TrimSpace(ext) == "" {
		return nil
	}
	for _, part := range strings.Split(ext, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		if len(fields) != 3 {
			return &CompileError{Pos: root.Pos(), Msg: fmt.Sprintf("malformed extends clause %q (want \"alias name vM.m\")", part)}
		}
		alias, depName, verText := fields[0], fields[1], fields[2]
		want, err := parseVersion(strings.TrimPrefix(verText, "v"))
		if err != nil {
			return &CompileError{Pos: root.Pos(), Msg: err.Error()}
		}
		resolved, ok := c.opts.Dependencies[alias]
		if !ok {
			return &CompileError{Pos: root.Pos(), Msg: fmt.Sprintf("no dependency toolkit supplied for alias %q", alias)}
		}
		c.b.DeclareDependency(alias, depName, want, resolved)
	}
	return nil
}

func parseVersion(s string) (qschema.Version, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return qschema.Version{}, fmt.Errorf("malformed version %q (want M.m)", s)
	}
	major, err1 := strconv.Atoi(parts[0])
	minor, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return qschema.Version{}, fmt.Errorf("malformed version %q (want M.m)", s)
	}
	return qschema.Version{Major: major, Minor: minor}, nil
}

// localName strips an "alias:" qualifier a tag name might carry (the
// document format allows it; a declaration source never needs it for
// its own section/element tags, but stripping is harmless and uniform).
func localName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func attrValue(n qdoc.Node, name string) string {
	for _, a := range n.Attrs() {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

func attrBool(n qdoc.Node, name string, def bool) bool {
	v := attrValue(n, name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// splitQualified splits an "alias:local" dependency-qualified reference;
// alias is "" for an unqualified (local-toolkit) reference.
func splitQualified(name string) (alias, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// splitOwnerKey splits an "owner.member" key (an attr-mod/child-mod/
// value-mod target, or an auto-inheritance target role) on the last dot,
// since owner itself may be "alias:name".
func splitOwnerKey(key string) (owner, member string) {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}
