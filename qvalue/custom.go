package qvalue

// Custom wraps a user-supplied Type under a declared name, as produced by
// an <external name=".."> value-type declaration. The core never
// constructs a Custom's Inner itself — only the abstract [Type]
// interface matters here; resolving "fully-qualified-class-or-id" text
// to a concrete implementation is the caller's responsibility (e.g. the
// interpretation layer or a registry it owns).
type Custom struct {
	Name  string
	Inner Type
}

func (c *Custom) TypeName() string { return c.Name }

func (c *Custom) Parse(text string) (Result, error) {
	res, err := c.Inner.Parse(text)
	if err != nil {
		return Result{}, &ParseError{TypeName: c.Name, Text: text, Cause: err}
	}
	return res, nil
}

func (c *Custom) Test(v any) bool { return c.Inner.Test(v) }
