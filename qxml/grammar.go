package qxml

import "github.com/alecthomas/participle/v2/lexer"

// Document is the top-level participle grammar: exactly one root
// element, matching §6's "Toolkit declaration source" and document
// format grammars (both are ordinary nested-tag XML; the difference is
// purely which toolkit/element-defs the names resolve against, which is
// qdoc's/qschema's concern, not the lexer's).
type Document struct {
	Root *Element `parser:"@@"`
}

// Element is one start tag, its attributes, and — unless self-closing —
// its mixed text/child-element content up to a matching end tag.
type Element struct {
	Pos lexer.Position

	Name  string      `parser:"TagStart @Ident"`
	Attrs []Attribute `parser:"@@*"`

	SelfClosed bool      `parser:"(  @SelfClose"`
	Content    []Content `parser:" | TagEnd @@*"`
	EndName    string    `parser:"   CloseTagStart @Ident TagEnd )"`
}

// Attribute is one name="value" pair inside a start tag.
type Attribute struct {
	Pos lexer.Position

	Name  string `parser:"@Ident Eq"`
	Value string `parser:"@String"`
}

// Content is either a run of text or a nested element, in source order.
type Content struct {
	Text    string   `parser:"(  @Text"`
	Element *Element `parser:" | @@ )"`
}
