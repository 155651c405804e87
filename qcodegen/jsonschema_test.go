package qcodegen_test

import (
	"testing"

	"github.com/updownquark/qonfig/qcodegen"
)

func TestRenderJSONSchemaDefsOnePerElement(t *testing.T) {
	tk := buildDemoToolkit(t)
	schema := qcodegen.RenderJSONSchema(tk, qcodegen.JSONSchemaConfig{})

	if schema.Title != tk.String() {
		t.Errorf("expected default title %q, got %q", tk.String(), schema.Title)
	}
	if _, ok := schema.Defs["Item"]; !ok {
		t.Fatalf("expected a $defs entry for Item, got %+v", schema.Defs)
	}
	item := schema.Defs["Item"]
	if item.Type != "object" {
		t.Errorf("expected Item to be an object schema, got %q", item.Type)
	}
	nProp, ok := item.Properties["n"]
	if !ok || nProp.Type != "string" {
		t.Errorf("expected a string property %q, got %+v", "n", item.Properties["n"])
	}
	found := false
	for _, r := range item.Required {
		if r == "n" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %q to be required, got %v", "n", item.Required)
	}
}

func TestRenderJSONSchemaChildBecomesArray(t *testing.T) {
	tk := buildDemoToolkit(t)
	schema := qcodegen.RenderJSONSchema(tk, qcodegen.JSONSchemaConfig{})
	root, ok := schema.Defs["Root"]
	if !ok {
		t.Fatalf("expected a $defs entry for Root")
	}
	items, ok := root.Properties["items"]
	if !ok {
		t.Fatalf("expected a property for the items child role")
	}
	if items.Type != "array" {
		t.Errorf("expected items to be an array schema, got %q", items.Type)
	}
	if items.Items == nil {
		t.Fatalf("expected items to carry an Items sub-schema")
	}
}
