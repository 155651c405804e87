// Package qdoc parses a positioned XML-like DOM against one or more
// closed toolkits and produces a resolved element tree (§4.4 of the
// schema). It has no opinion on how the DOM was produced — qxml supplies
// one adapter, but any type satisfying [Node] works.
package qdoc

import "github.com/updownquark/qonfig/qschema"

// Node is a positioned element as fed to the parser. A DOM adapter (qxml
// or a caller's own) implements this over whatever tree it parsed.
type Node interface {
	// Name is the element's tag, optionally "alias:local".
	Name() string
	// Attrs lists this element's attributes in source order.
	Attrs() []Attr
	// Text is the element's direct text content, if any.
	Text() string
	// Children lists child elements in source order.
	Children() []Node
	// Pos locates this element's opening tag.
	Pos() qschema.Position
}

// Attr is one positioned attribute on a Node.
type Attr struct {
	Name  string
	Value string
	Pos   qschema.Position
}

// MagicWithExtension and MagicRole are the two attribute names §6
// reserves on document elements: the former lists comma-separated
// non-abstract add-ons to apply, the latter disambiguates which of
// several candidate roles a child fulfills.
const (
	MagicWithExtension = "with-extension"
	MagicRole          = "role"
)
