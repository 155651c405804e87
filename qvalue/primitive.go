package qvalue

import (
	"fmt"
	"strconv"
)

// StringType accepts any text verbatim.
type StringType struct{}

func (StringType) TypeName() string { return "string" }

func (StringType) Parse(text string) (Result, error) {
	return Result{Value: text}, nil
}

func (StringType) Test(v any) bool {
	_, ok := v.(string)
	return ok
}

// BooleanType parses the forms strconv.ParseBool accepts: 1, t, T, TRUE,
// true, True, 0, f, F, FALSE, false, False.
type BooleanType struct{}

func (BooleanType) TypeName() string { return "boolean" }

func (b BooleanType) Parse(text string) (Result, error) {
	val, err := strconv.ParseBool(text)
	if err != nil {
		return Result{}, &ParseError{TypeName: b.TypeName(), Text: text, Cause: err}
	}
	return Result{Value: val}, nil
}

func (BooleanType) Test(v any) bool {
	_, ok := v.(bool)
	return ok
}

// Literal accepts exactly one fixed string.
type Literal struct {
	Text string
}

func (l Literal) TypeName() string { return fmt.Sprintf("literal(%s)", l.Text) }

func (l Literal) Parse(text string) (Result, error) {
	if text != l.Text {
		return Result{}, &ParseError{TypeName: l.TypeName(), Text: text, Cause: fmt.Errorf("expected literal %q", l.Text)}
	}
	return Result{Value: text}, nil
}

func (l Literal) Test(v any) bool {
	s, ok := v.(string)
	return ok && s == l.Text
}
