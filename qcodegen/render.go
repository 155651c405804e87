package qcodegen

import (
	"fmt"
	"io"
	"sort"
	"text/template"

	"github.com/updownquark/qonfig/qschema"
	"github.com/updownquark/qonfig/qvalue"
)

// RenderConfig controls how Render turns a closed toolkit into Go
// source.
type RenderConfig struct {
	// PackageName is the package clause of the generated file.
	PackageName string
	// SkipAbstract excludes abstract element-defs from the generated
	// code, mirroring tqlgen's RenderConfig.SkipAbstract.
	SkipAbstract bool
}

// DefaultConfig returns a RenderConfig with sensible defaults.
func DefaultConfig() RenderConfig {
	return RenderConfig{PackageName: "qonfigmodel", SkipAbstract: true}
}

// Render writes generated Go struct declarations for every element-def
// of tk to w: one struct per element-def, one field per attribute and
// per child role, named and typed per the rules in goType and
// ToPascalCase.
func Render(w io.Writer, tk *qschema.Toolkit, cfg RenderConfig) error {
	if cfg.PackageName == "" {
		cfg.PackageName = "qonfigmodel"
	}

	data := &renderData{PackageName: cfg.PackageName, ToolkitName: tk.String()}

	for _, e := range tk.Elements() {
		if cfg.SkipAbstract && e.IsAbstract() {
			continue
		}
		ctx := buildEntityCtx(e)
		data.Entities = append(data.Entities, ctx)
		for _, f := range ctx.Fields {
			if !data.NeedsQdoc && (f.GoType == "*qdoc.ResolvedElement" || f.GoType == "[]*qdoc.ResolvedElement") {
				data.NeedsQdoc = true
			}
		}
	}

	return renderTemplate.Execute(w, data)
}

type renderData struct {
	PackageName string
	ToolkitName string
	NeedsQdoc   bool
	Entities    []entityCtx
}

type entityCtx struct {
	GoName   string
	TypeName string
	Abstract bool
	Comment  string
	Fields   []fieldCtx
}

type fieldCtx struct {
	GoName string
	GoType string
	Tag    string
}

func buildEntityCtx(e *qschema.ElementDef) entityCtx {
	ctx := entityCtx{
		GoName:   ToPascalCase(e.DefName()),
		TypeName: e.DefName(),
		Abstract: e.IsAbstract(),
	}
	if sup := e.SuperElement(); sup != nil {
		ctx.Comment = fmt.Sprintf("extends %s", sup.DefName())
	}

	attrs := sortedAttributes(e.AllAttributes())
	for _, a := range attrs {
		ctx.Fields = append(ctx.Fields, fieldCtx{
			GoName: ToPascalCase(a.Name),
			GoType: goType(a.ValueType, a.Specification == qschema.Optional || a.HasDefault),
			Tag:    fmt.Sprintf("`qonfig:%q`", attrTag(a)),
		})
	}

	children := sortedChildren(e.AllChildren())
	for _, c := range children {
		ctx.Fields = append(ctx.Fields, fieldCtx{
			GoName: ToPascalCase(c.Name),
			GoType: childGoType(c),
			Tag:    fmt.Sprintf("`qonfig:\"child:%s\"`", c.Name),
		})
	}

	return ctx
}

func attrTag(a *qschema.EffectiveAttribute) string {
	if a.Specification == qschema.Required {
		return a.Name + ",required"
	}
	return a.Name
}

func sortedAttributes(m map[*qschema.AttributeDecl]*qschema.EffectiveAttribute) []*qschema.EffectiveAttribute {
	out := make([]*qschema.EffectiveAttribute, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedChildren(m map[*qschema.ChildDecl]*qschema.EffectiveChild) []*qschema.EffectiveChild {
	out := make([]*qschema.EffectiveChild, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// childGoType renders a child role's Go field type: a single pointer for
// a role whose Max is 1, a slice of pointers otherwise (Max <= 0 means
// unbounded, per qschema's Min/Max convention).
func childGoType(c *qschema.EffectiveChild) string {
	elem := "*qdoc.ResolvedElement"
	if c.Type != nil {
		elem = "*" + ToPascalCase(c.Type.DefName())
	}
	if c.Max == 1 {
		return elem
	}
	return "[]" + elem
}

// goType maps a value-type to the Go type its parsed values hold,
// unwrapping the recursive variants (Explicit, Custom, the first
// component of OneOf) to their underlying primitive. optional wraps the
// result in a pointer so a caller can distinguish "not set" from the
// zero value, matching the distinction an Optional/Forbidden
// Specification already draws in the schema model.
func goType(vt qvalue.Type, optional bool) string {
	base := baseGoType(vt)
	if optional && base != "any" {
		return "*" + base
	}
	return base
}

func baseGoType(vt qvalue.Type) string {
	switch t := vt.(type) {
	case qvalue.StringType:
		return "string"
	case qvalue.BooleanType:
		return "bool"
	case qvalue.Literal:
		return "string"
	case *qvalue.Pattern:
		return "string"
	case *qvalue.Explicit:
		return baseGoType(t.Inner)
	case *qvalue.Custom:
		return baseGoType(t.Inner)
	case qvalue.OneOf:
		if len(t.Components) == 0 {
			return "any"
		}
		return baseGoType(t.Components[0])
	default:
		return "any"
	}
}

var renderTemplate = template.Must(template.New("qonfigmodel").Parse(`// Code generated by qcodegen from toolkit {{.ToolkitName}}. DO NOT EDIT.

package {{.PackageName}}
{{- if .NeedsQdoc}}

import "github.com/updownquark/qonfig/qdoc"
{{- end}}
{{range .Entities}}
{{- if .Comment}}
// {{.GoName}} {{.Comment}}.
{{- end}}
type {{.GoName}} struct {
{{- range .Fields}}
	{{.GoName}} {{.GoType}} {{.Tag}}
{{- end}}
}
{{end}}`))
