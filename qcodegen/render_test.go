package qcodegen_test

import (
	"strings"
	"testing"

	"github.com/updownquark/qonfig/qcodegen"
	"github.com/updownquark/qonfig/qschema"
	"github.com/updownquark/qonfig/qvalue"
)

func buildDemoToolkit(t *testing.T) *qschema.Toolkit {
	t.Helper()
	b := qschema.NewToolkitBuilder("demo", qschema.Version{Major: 1, Minor: 0})

	itemDB := b.DeclareElement("item", nil, false, nil, qschema.Position{})
	itemDB.AddAttribute("n", qvalue.StringType{}, qschema.Required, nil, false, qschema.Position{})
	itemDB.AddAttribute("active", qvalue.BooleanType{}, qschema.Optional, "false", true, qschema.Position{})

	rootDB := b.DeclareElement("root", nil, false, nil, qschema.Position{})
	rootDB.AddChild("items", nil, 0, 10, qschema.Position{})

	tk, err := b.Build()
	if err != nil {
		t.Fatalf("build demo toolkit: %v", err)
	}
	return tk
}

func TestRenderProducesOneStructPerElement(t *testing.T) {
	tk := buildDemoToolkit(t)
	var buf strings.Builder
	if err := qcodegen.Render(&buf, tk, qcodegen.DefaultConfig()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"type Item struct", "type Root struct", "N string", "Active *bool"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderSkipsAbstractByDefault(t *testing.T) {
	b := qschema.NewToolkitBuilder("demo2", qschema.Version{Major: 1, Minor: 0})
	b.DeclareElement("base", nil, true, nil, qschema.Position{})
	tk, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var buf strings.Builder
	if err := qcodegen.Render(&buf, tk, qcodegen.DefaultConfig()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "type Base struct") {
		t.Errorf("expected abstract element to be skipped, got:\n%s", buf.String())
	}
}

func TestRenderChildFieldBecomesSlice(t *testing.T) {
	tk := buildDemoToolkit(t)
	var buf strings.Builder
	if err := qcodegen.Render(&buf, tk, qcodegen.DefaultConfig()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Items []*qdoc.ResolvedElement") {
		t.Errorf("expected a slice field for a [0,10] child role, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), `import "github.com/updownquark/qonfig/qdoc"`) {
		t.Errorf("expected a qdoc import when a typeless child role is rendered, got:\n%s", buf.String())
	}
}

func TestToPascalCaseHandlesAcronymsAndSeparators(t *testing.T) {
	cases := map[string]string{
		"external-content": "ExternalContent",
		"ref_role":         "RefRole",
		"item-id":          "ItemID",
	}
	for in, want := range cases {
		if got := qcodegen.ToPascalCase(in); got != want {
			t.Errorf("ToPascalCase(%q) = %q, want %q", in, got, want)
		}
	}
}
