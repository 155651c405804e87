package qvalue

import (
	"fmt"
	"regexp"
)

// Pattern accepts text matching a regular expression in full.
type Pattern struct {
	Name string
	Expr *regexp.Regexp
}

// NewPattern compiles expr and names the resulting Type name (used in
// diagnostics and declared via <pattern name="..">).
func NewPattern(name, expr string) (*Pattern, error) {
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, fmt.Errorf("pattern %s: %w", name, err)
	}
	return &Pattern{Name: name, Expr: re}, nil
}

func (p *Pattern) TypeName() string { return p.Name }

func (p *Pattern) Parse(text string) (Result, error) {
	loc := p.Expr.FindStringIndex(text)
	if loc == nil || loc[0] != 0 || loc[1] != len(text) {
		return Result{}, &ParseError{TypeName: p.Name, Text: text, Cause: fmt.Errorf("does not match %s", p.Expr.String())}
	}
	return Result{Value: text}, nil
}

func (p *Pattern) Test(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	loc := p.Expr.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

// Explicit parses text of the form prefix + inner + suffix, delegating
// the middle portion to Inner and returning Inner's parsed value.
type Explicit struct {
	Name   string
	Prefix string
	Inner  Type
	Suffix string
}

func (e *Explicit) TypeName() string { return e.Name }

func (e *Explicit) Parse(text string) (Result, error) {
	if len(text) < len(e.Prefix)+len(e.Suffix) ||
		text[:len(e.Prefix)] != e.Prefix ||
		text[len(text)-len(e.Suffix):] != e.Suffix {
		return Result{}, &ParseError{
			TypeName: e.Name, Text: text,
			Cause: fmt.Errorf("expected prefix %q and suffix %q", e.Prefix, e.Suffix),
		}
	}
	inner := text[len(e.Prefix) : len(text)-len(e.Suffix)]
	res, err := e.Inner.Parse(inner)
	if err != nil {
		return Result{}, &ParseError{TypeName: e.Name, Text: text, Cause: err}
	}
	return res, nil
}

func (e *Explicit) Test(v any) bool {
	return e.Inner.Test(v)
}
