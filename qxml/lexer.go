// Package qxml is the participle-based lexer/grammar for Qonfig's
// XML-ish source format — both the toolkit declaration source (§6) and
// the document format it parses against a built toolkit. It supplies a
// [qdoc.Node] adapter over the parsed tree so qdoc.Parser never has to
// know how the DOM was produced.
package qxml

import "github.com/alecthomas/participle/v2/lexer"

// xmlLexer is a two-state stateful lexer: Root emits raw text runs and
// watches for '<'; Tag emits the token vocabulary inside a start/end tag
// and pops back to Root at '>' or '/>'. This mirrors the teacher's
// lexer.MustSimple idiom (tqlgen/parser.go) generalized to a stateful
// lexer, since a single regex pass cannot tell attribute text from
// element text apart.
var xmlLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `<!--(?:[^-]|-[^-])*-->`, Action: nil},
		{Name: "ProcInstr", Pattern: `<\?[^?]*\?>`, Action: nil},
		{Name: "CData", Pattern: `<!\[CDATA\[(?:[^\]]|\](?!\]>))*\]\]>`, Action: nil},
		{Name: "CloseTagStart", Pattern: `</`, Action: lexer.Push("Tag")},
		{Name: "TagStart", Pattern: `<`, Action: lexer.Push("Tag")},
		{Name: "Text", Pattern: `[^<]+`, Action: nil},
	},
	"Tag": {
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
		{Name: "SelfClose", Pattern: `/>`, Action: lexer.Pop()},
		{Name: "TagEnd", Pattern: `>`, Action: lexer.Pop()},
		{Name: "Eq", Pattern: `=`, Action: nil},
		{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`, Action: nil},
		{Name: "Ident", Pattern: `[A-Za-z_][\w:.\-]*`, Action: nil},
	},
})
