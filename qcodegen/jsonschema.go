package qcodegen

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/updownquark/qonfig/qschema"
)

// JSONSchemaConfig controls RenderJSONSchema's output.
type JSONSchemaConfig struct {
	// Title is the root schema's title, usually the toolkit's name.
	Title string
	// SkipAbstract excludes abstract element-defs from $defs, mirroring
	// RenderConfig.SkipAbstract.
	SkipAbstract bool
}

// RenderJSONSchema builds a JSON Schema document describing tk's
// element-defs as an editor-completion aid alongside the generated Go
// code: one $defs entry per element-def, named by its Go identifier, with
// one property per attribute and per child role. This is new surface
// beyond the generated structs, not a substitute for them — qdoc's
// resolved element tree remains the only thing the core parser produces.
func RenderJSONSchema(tk *qschema.Toolkit, cfg JSONSchemaConfig) *jsonschema.Schema {
	if cfg.Title == "" {
		cfg.Title = tk.String()
	}

	root := &jsonschema.Schema{
		Schema: "https://json-schema.org/draft/2020-12/schema",
		Title:  cfg.Title,
		Defs:   make(map[string]*jsonschema.Schema),
	}

	for _, e := range tk.Elements() {
		if cfg.SkipAbstract && e.IsAbstract() {
			continue
		}
		root.Defs[ToPascalCase(e.DefName())] = elementSchema(e)
	}

	return root
}

func elementSchema(e *qschema.ElementDef) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema),
	}

	for _, a := range sortedAttributes(e.AllAttributes()) {
		s.Properties[a.Name] = attributeSchema(a)
		if a.Specification == qschema.Required {
			s.Required = append(s.Required, a.Name)
		}
	}

	for _, c := range sortedChildren(e.AllChildren()) {
		s.Properties[c.Name] = childSchema(c)
		if c.Min > 0 {
			s.Required = append(s.Required, c.Name)
		}
	}

	return s
}

func attributeSchema(a *qschema.EffectiveAttribute) *jsonschema.Schema {
	switch baseGoType(a.ValueType) {
	case "bool":
		return &jsonschema.Schema{Type: "boolean"}
	case "string":
		return &jsonschema.Schema{Type: "string"}
	default:
		return &jsonschema.Schema{}
	}
}

func childSchema(c *qschema.EffectiveChild) *jsonschema.Schema {
	var item *jsonschema.Schema
	if c.Type != nil {
		item = &jsonschema.Schema{Ref: "#/$defs/" + ToPascalCase(c.Type.DefName())}
	} else {
		item = &jsonschema.Schema{Type: "object"}
	}
	if c.Max == 1 {
		return item
	}
	return &jsonschema.Schema{Type: "array", Items: item}
}
