package qxml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/updownquark/qonfig/qdoc"
	"github.com/updownquark/qonfig/qschema"
	"github.com/updownquark/qonfig/qvalue"
	"github.com/updownquark/qonfig/qxml"
)

func TestParseStringBuildsTree(t *testing.T) {
	root, err := qxml.ParseString(`<root a="1"><child>text</child></root>`, "test.xml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if root.Name() != "root" {
		t.Fatalf("expected root name %q, got %q", "root", root.Name())
	}
	if len(root.Attrs()) != 1 || root.Attrs()[0].Name != "a" || root.Attrs()[0].Value != "1" {
		t.Fatalf("unexpected attrs: %+v", root.Attrs())
	}
	children := root.Children()
	if len(children) != 1 || children[0].Name() != "child" {
		t.Fatalf("unexpected children: %+v", children)
	}
	if got := children[0].Text(); got != "text" {
		t.Fatalf("expected child text %q, got %q", "text", got)
	}
}

func TestParseStringSelfClosingAndEntities(t *testing.T) {
	root, err := qxml.ParseString(`<e a="&lt;tag&gt; &amp; &quot;quote&quot;"/>`, "test.xml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(root.Children()) != 0 {
		t.Fatalf("expected no children for self-closing element, got %+v", root.Children())
	}
	want := `<tag> & "quote"`
	if got := root.Attrs()[0].Value; got != want {
		t.Fatalf("expected unescaped %q, got %q", want, got)
	}
}

func TestParseStringMismatchedTagErrors(t *testing.T) {
	_, err := qxml.ParseString(`<a><b></c></a>`, "test.xml")
	if err == nil {
		t.Fatal("expected mismatched tag error")
	}
	if _, ok := err.(*qxml.MismatchedTagError); !ok {
		t.Fatalf("expected *qxml.MismatchedTagError, got %v (%T)", err, err)
	}
}

// declSource is a minimal but representative §6 declaration source: one
// value type, an add-on, and two elements related by extends/child-def.
const declSource = `<qonfig-def name="demo" version="1.0">
	<value-types>
		<string name="name-type"/>
	</value-types>
	<add-ons>
		<add-on name="named">
			<attribute name="label" type="name-type" specify="optional" default="unnamed"/>
		</add-on>
	</add-ons>
	<elements>
		<element-def name="item">
			<attribute name="n" type="name-type" specify="required"/>
			<inherits>named</inherits>
		</element-def>
		<element-def name="root">
			<child-def name="items" type="item" min="0" max="10"/>
		</element-def>
	</elements>
</qonfig-def>`

func TestCompileToolkitAndParseDocument(t *testing.T) {
	declRoot, err := qxml.ParseString(declSource, "demo.qonfig.xml")
	if err != nil {
		t.Fatalf("parse declaration source: %v", err)
	}

	tk, err := qxml.CompileToolkit(declRoot, qxml.CompileOptions{})
	if err != nil {
		t.Fatalf("compile toolkit: %v", err)
	}

	item, ok := tk.Element("item")
	if !ok {
		t.Fatal("expected element \"item\" to exist")
	}
	if _, ok := item.AttributeByName("label"); !ok {
		t.Fatal("expected \"item\" to inherit attribute \"label\" via add-on \"named\"")
	}

	docRoot, err := qxml.ParseString(`<root><item n="a"/><item n="b" label="bee"/></root>`, "doc.xml")
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}

	p := qdoc.NewParser(tk)
	resolved, err := p.ParseDocument(docRoot)
	if err != nil {
		t.Fatalf("parse document tree: %v", err)
	}
	if len(resolved.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(resolved.Children))
	}
	if resolved.Children[0].Attributes["label"] != "unnamed" {
		t.Errorf("expected default label %q, got %v", "unnamed", resolved.Children[0].Attributes["label"])
	}
	if resolved.Children[1].Attributes["label"] != "bee" {
		t.Errorf("expected explicit label %q, got %v", "bee", resolved.Children[1].Attributes["label"])
	}
}

func TestCompileToolkitRejectsUnknownValueType(t *testing.T) {
	const src = `<qonfig-def name="bad" version="1.0">
		<elements>
			<element-def name="e">
				<attribute name="x" type="missing-type" specify="required"/>
			</element-def>
		</elements>
	</qonfig-def>`
	declRoot, err := qxml.ParseString(src, "bad.xml")
	if err != nil {
		t.Fatalf("parse declaration source: %v", err)
	}
	if _, err := qxml.CompileToolkit(declRoot, qxml.CompileOptions{}); err == nil {
		t.Fatal("expected compile error for unknown value-type")
	}
}

func TestCompileToolkitDependencyAttrMod(t *testing.T) {
	baseB := qschema.NewToolkitBuilder("base", qschema.Version{Major: 1, Minor: 0})
	baseDB := baseB.DeclareElement("e", nil, false, nil, qschema.Position{})
	baseDB.AddAttribute("n", qvalue.StringType{}, qschema.Optional, "", true, qschema.Position{})
	baseTk, err := baseB.Build()
	if err != nil {
		t.Fatalf("build base toolkit: %v", err)
	}

	const src = `<qonfig-def name="ext" version="1.0" extends="b base v1.0">
		<add-ons>
			<add-on name="m" requires="b:e">
				<attr-mod name="b:e.n" specify="required"/>
			</add-on>
		</add-ons>
	</qonfig-def>`
	declRoot, err := qxml.ParseString(src, "ext.xml")
	if err != nil {
		t.Fatalf("parse declaration source: %v", err)
	}

	tk, err := qxml.CompileToolkit(declRoot, qxml.CompileOptions{
		Dependencies: map[string]*qschema.Toolkit{"b": baseTk},
	})
	if err != nil {
		t.Fatalf("compile toolkit: %v", err)
	}
	if _, ok := tk.AddOn("m"); !ok {
		t.Fatal("expected add-on \"m\" to exist")
	}
}

func TestFileLoaderLoadsRelativePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "d2.xml")
	if err := os.WriteFile(path, []byte(`<external-content fulfills="ext"/>`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	loader := qxml.FileLoader{BaseDir: dir}
	root, err := loader.Load("d2.xml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if root.Name() != "external-content" {
		t.Fatalf("expected root name %q, got %q", "external-content", root.Name())
	}
}

func TestFileLoaderMissingFileErrors(t *testing.T) {
	loader := qxml.FileLoader{BaseDir: t.TempDir()}
	if _, err := loader.Load("missing.xml"); err == nil {
		t.Fatal("expected error loading a missing file")
	}
}
