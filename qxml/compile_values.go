package qxml

import (
	"fmt"

	"github.com/updownquark/qonfig/qdoc"
	"github.com/updownquark/qonfig/qvalue"
)

// compileValueTypes implements the <value-types> section of §6: each
// child names one qvalue.Type variant. Top-level declarations are
// registered on the toolkit by their "name" attribute (falling back to
// the tag's own vocabulary name for the primitive string/boolean forms,
// which carry no name attribute of their own).
func (c *compiler) compileValueTypes(el qdoc.Node) error {
	for _, ch := range el.Children() {
		vt, name, err := c.compileValueType(ch)
		if err != nil {
			return err
		}
		if name == "" {
			switch localName(ch.Name()) {
			case "string", "boolean":
				name = localName(ch.Name())
			}
		}
		if name == "" {
			return &CompileError{Pos: ch.Pos(), Msg: fmt.Sprintf("<%s> value-type needs a name attribute", ch.Name())}
		}
		c.b.DeclareValueType(name, vt, ch.Pos())
	}
	return nil
}

// compileValueType compiles one value-type node (top-level or nested,
// e.g. inside <one-of>), returning the built qvalue.Type and the name it
// should be registered under at top level (empty if the node has no name
// attribute; compileValueTypes then falls back to the tag name for a bare
// <string>/<boolean>).
func (c *compiler) compileValueType(n qdoc.Node) (qvalue.Type, string, error) {
	switch localName(n.Name()) {
	case "string":
		return qvalue.StringType{}, attrValue(n, "name"), nil
	case "boolean":
		return qvalue.BooleanType{}, attrValue(n, "name"), nil
	case "literal":
		return qvalue.Literal{Text: attrValue(n, "value")}, attrValue(n, "name"), nil
	case "pattern":
		name := attrValue(n, "name")
		pat, err := qvalue.NewPattern(name, n.Text())
		if err != nil {
			return nil, "", &CompileError{Pos: n.Pos(), Msg: err.Error()}
		}
		return pat, name, nil
	case "one-of":
		var components []qvalue.Type
		for _, cn := range n.Children() {
			comp, _, err := c.compileValueType(cn)
			if err != nil {
				return nil, "", err
			}
			components = append(components, comp)
		}
		return qvalue.OneOf{Components: components}, attrValue(n, "name"), nil
	case "explicit":
		name := attrValue(n, "name")
		innerName := n.Text()
		innerType, ok := c.lookupValueType(innerName)
		if !ok {
			return nil, "", &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("<explicit> inner type %q not declared (declare it earlier in <value-types>)", innerName)}
		}
		return &qvalue.Explicit{Name: name, Prefix: attrValue(n, "prefix"), Inner: innerType, Suffix: attrValue(n, "suffix")}, name, nil
	case "external":
		name := attrValue(n, "name")
		id := n.Text()
		inner, ok := c.opts.ExternalTypes[id]
		if !ok {
			return nil, "", &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("external value-type %q: no implementation supplied for id %q", name, id)}
		}
		return &qvalue.Custom{Name: name, Inner: inner}, name, nil
	default:
		return nil, "", &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf("unknown value-type tag <%s>", n.Name())}
	}
}

func (c *compiler) lookupValueType(name string) (qvalue.Type, bool) {
	return c.b.ValueType(name)
}
