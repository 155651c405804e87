package qxml

import (
	"strings"

	"github.com/updownquark/qonfig/qdoc"
	"github.com/updownquark/qonfig/qschema"
)

// Node adapts a parsed *Element onto qdoc.Node, lazily materializing its
// attribute/children/text views (a parsed toolkit-declaration source can
// have thousands of elements; no sense building views no caller reads).
type Node struct {
	elem     *Element
	location string

	attrs    []qdoc.Attr
	children []qdoc.Node
	text     string
	built    bool
}

var _ qdoc.Node = (*Node)(nil)

func (n *Node) Name() string { return n.elem.Name }

func (n *Node) Pos() qschema.Position { return posOf(n.elem.Pos, n.location) }

func (n *Node) Attrs() []qdoc.Attr {
	n.build()
	return n.attrs
}

func (n *Node) Text() string {
	n.build()
	return n.text
}

func (n *Node) Children() []qdoc.Node {
	n.build()
	return n.children
}

func (n *Node) build() {
	if n.built {
		return
	}
	n.built = true

	for _, a := range n.elem.Attrs {
		n.attrs = append(n.attrs, qdoc.Attr{
			Name:  a.Name,
			Value: unquote(a.Value),
			Pos:   posOf(a.Pos, n.location),
		})
	}

	var text strings.Builder
	for _, c := range n.elem.Content {
		switch {
		case c.Element != nil:
			n.children = append(n.children, &Node{elem: c.Element, location: n.location})
		default:
			text.WriteString(c.Text)
		}
	}
	n.text = unquoteEntities(text.String())
}

// unquote strips the surrounding quote characters captured by the
// grammar's String token and resolves the five predefined XML entities;
// it does not attempt full XML entity/numeric-reference decoding.
func unquote(s string) string {
	if len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	return unquoteEntities(s)
}

var entityReplacer = strings.NewReplacer(
	"&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&",
)

func unquoteEntities(s string) string { return entityReplacer.Replace(s) }
