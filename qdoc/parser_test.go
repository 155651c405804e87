package qdoc

import (
	"testing"

	"github.com/updownquark/qonfig/qschema"
	"github.com/updownquark/qonfig/qvalue"
)

// fakeNode is a minimal in-memory Node for exercising the parser without
// a real DOM adapter.
type fakeNode struct {
	name     string
	attrs    []Attr
	text     string
	children []Node
	pos      qschema.Position
}

func (n *fakeNode) Name() string          { return n.name }
func (n *fakeNode) Attrs() []Attr         { return n.attrs }
func (n *fakeNode) Text() string          { return n.text }
func (n *fakeNode) Children() []Node      { return n.children }
func (n *fakeNode) Pos() qschema.Position { return n.pos }

func TestParseSimpleElement(t *testing.T) {
	tkb := qschema.NewToolkitBuilder("doc", qschema.Version{Major: 1, Minor: 0})
	eb := tkb.DeclareElement("e", nil, false, nil, qschema.Position{})
	eb.AddAttribute("n", qvalue.StringType{}, qschema.Optional, "x", true, qschema.Position{})
	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	doc := &fakeNode{name: "e", attrs: []Attr{{Name: "n", Value: "y"}}}
	p := NewParser(tk)
	elem, err := p.ParseDocument(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if elem.Attributes["n"] != "y" {
		t.Errorf("expected n=y, got %v", elem.Attributes["n"])
	}
}

func TestParseDefaultAttributeFillsIn(t *testing.T) {
	tkb := qschema.NewToolkitBuilder("doc", qschema.Version{Major: 1, Minor: 0})
	eb := tkb.DeclareElement("e", nil, false, nil, qschema.Position{})
	eb.AddAttribute("n", qvalue.StringType{}, qschema.Optional, "x", true, qschema.Position{})
	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	doc := &fakeNode{name: "e"}
	p := NewParser(tk)
	elem, err := p.ParseDocument(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if elem.Attributes["n"] != "x" {
		t.Errorf("expected default n=x, got %v", elem.Attributes["n"])
	}
}

func TestParseMissingRequiredAttributeErrors(t *testing.T) {
	tkb := qschema.NewToolkitBuilder("doc", qschema.Version{Major: 1, Minor: 0})
	eb := tkb.DeclareElement("e", nil, false, nil, qschema.Position{})
	eb.AddAttribute("n", qvalue.StringType{}, qschema.Required, nil, false, qschema.Position{})
	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	doc := &fakeNode{name: "e"}
	p := NewParser(tk)
	if _, err := p.ParseDocument(doc); err == nil {
		t.Fatal("expected error for missing required attribute")
	}
}

func TestParseUnknownElementErrors(t *testing.T) {
	tkb := qschema.NewToolkitBuilder("doc", qschema.Version{Major: 1, Minor: 0})
	tkb.DeclareElement("e", nil, false, nil, qschema.Position{})
	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	doc := &fakeNode{name: "nope"}
	p := NewParser(tk)
	if _, err := p.ParseDocument(doc); err == nil {
		t.Fatal("expected error for unknown element")
	}
}

// buildParentChildToolkit declares "child" in its own base toolkit (built
// first, so its *ElementDef exists) and "parent" in a dependent toolkit
// with a kids role of [1,2], exercising cross-toolkit child-type
// references the same way a real with-extension document would.
func buildParentChildToolkit(t *testing.T) *qschema.Toolkit {
	t.Helper()
	baseB := qschema.NewToolkitBuilder("base", qschema.Version{Major: 1, Minor: 0})
	baseB.DeclareElement("child", nil, false, nil, qschema.Position{})
	base, err := baseB.Build()
	if err != nil {
		t.Fatalf("build base: %v", err)
	}
	childType, _ := base.Element("child")

	docB := qschema.NewToolkitBuilder("doc", qschema.Version{Major: 1, Minor: 0})
	docB.DeclareDependency("b", "base", qschema.Version{Major: 1, Minor: 0}, base)
	parentDB := docB.DeclareElement("parent", nil, false, nil, qschema.Position{})
	parentDB.AddChild("kids", childType, 1, 2, qschema.Position{})
	tk, err := docB.Build()
	if err != nil {
		t.Fatalf("build doc: %v", err)
	}
	return tk
}

func TestParseChildCardinality(t *testing.T) {
	tk := buildParentChildToolkit(t)

	doc := &fakeNode{name: "parent", children: []Node{&fakeNode{name: "b:child"}}}
	p := NewParser(tk)
	elem, err := p.ParseDocument(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(elem.Children) != 1 {
		t.Errorf("expected 1 child, got %d", len(elem.Children))
	}
}

func TestParseChildCardinalityViolation(t *testing.T) {
	tk := buildParentChildToolkit(t)

	doc := &fakeNode{name: "parent"} // zero children, min=1
	p := NewParser(tk)
	if _, err := p.ParseDocument(doc); err == nil {
		t.Fatal("expected cardinality error")
	}
}

func TestParseTooManyChildrenViolatesMax(t *testing.T) {
	tk := buildParentChildToolkit(t)

	doc := &fakeNode{name: "parent", children: []Node{
		&fakeNode{name: "b:child"}, &fakeNode{name: "b:child"}, &fakeNode{name: "b:child"},
	}}
	p := NewParser(tk)
	if _, err := p.ParseDocument(doc); err == nil {
		t.Fatal("expected cardinality error for exceeding max")
	}
}
