package qvalue

import (
	"errors"
	"fmt"
	"strings"
)

// OneOf selects the first component Type that parses text without error.
// Among the components that parse cleanly, the first one wins outright;
// if none parse cleanly, the first component that parses with only
// warnings wins; otherwise the whole parse fails and every component
// error is reported.
type OneOf struct {
	Components []Type
}

func (o OneOf) TypeName() string {
	names := make([]string, len(o.Components))
	for i, c := range o.Components {
		names[i] = c.TypeName()
	}
	return fmt.Sprintf("one-of(%s)", strings.Join(names, ", "))
}

// Parse tries each component in order. See the type-level doc comment
// for the selection rule.
func (o OneOf) Parse(text string) (Result, error) {
	var warned *Result
	var warnedIndex int
	var errs []error
	for i, c := range o.Components {
		res, err := c.Parse(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.TypeName(), err))
			continue
		}
		if res.Clean() {
			return res, nil
		}
		if warned == nil {
			r := res
			warned = &r
			warnedIndex = i
		}
	}
	if warned != nil {
		_ = warnedIndex
		return *warned, nil
	}
	if len(errs) == 0 {
		return Result{}, &ParseError{TypeName: o.TypeName(), Text: text, Cause: errors.New("no components")}
	}
	return Result{}, &ParseError{TypeName: o.TypeName(), Text: text, Cause: errors.Join(errs...)}
}

func (o OneOf) Test(v any) bool {
	for _, c := range o.Components {
		if c.Test(v) {
			return true
		}
	}
	return false
}
