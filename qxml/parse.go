package qxml

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/updownquark/qonfig/qschema"
)

var (
	parserOnce sync.Once
	docParser  *participle.Parser[Document]
	parserErr  error
)

func buildParser() (*participle.Parser[Document], error) {
	parserOnce.Do(func() {
		docParser, parserErr = participle.Build[Document](
			participle.Lexer(xmlLexer),
			participle.Elide("Whitespace", "Comment", "ProcInstr", "CData"),
			participle.UseLookahead(2),
		)
	})
	return docParser, parserErr
}

// MismatchedTagError is returned when an end tag's name does not match
// its element's start tag.
type MismatchedTagError struct {
	Start, End string
	Pos        qschema.Position
}

func (e *MismatchedTagError) Error() string {
	return fmt.Sprintf("%s: mismatched tag: <%s> closed by </%s>", e.Pos, e.Start, e.End)
}

// Parse reads an XML-ish document or toolkit-declaration source from r
// (identified by location, used only for diagnostics) and returns its
// root as a qdoc.Node.
func Parse(r io.Reader, location string) (*Node, error) {
	p, err := buildParser()
	if err != nil {
		return nil, fmt.Errorf("build xml parser: %w", err)
	}

	doc, err := p.Parse(location, r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", location, err)
	}

	return checkAndWrap(doc.Root, location)
}

// ParseString is Parse over an in-memory string, convenient for tests
// and for qref's bundled source.
func ParseString(src, location string) (*Node, error) {
	return Parse(strings.NewReader(src), location)
}

func checkAndWrap(e *Element, location string) (*Node, error) {
	if !e.SelfClosed && e.EndName != e.Name {
		return nil, &MismatchedTagError{Start: e.Name, End: e.EndName, Pos: posOf(e.Pos, location)}
	}
	n := &Node{elem: e, location: location}
	for _, c := range e.Content {
		if c.Element == nil {
			continue
		}
		if _, err := checkAndWrap(c.Element, location); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func posOf(p lexer.Position, location string) qschema.Position {
	return qschema.Position{LocationURI: location, Line: p.Line, Column: p.Column}
}
