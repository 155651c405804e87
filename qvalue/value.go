// Package qvalue defines the value-type vocabulary used by qschema to
// parse attribute, value, and default-value text.
//
// A [Type] parses a text fragment into an abstract Go value and tests
// membership of an already-parsed value. Parsing never has side effects
// and never blocks; a Type is safe for concurrent use once constructed.
package qvalue

import "fmt"

// Result is the outcome of parsing a text fragment against a Type.
// Warnings do not fail the parse but influence one-of selection (see
// [OneOf]): a clean parse (no warnings) always outranks a warned one.
type Result struct {
	Value    any
	Warnings []string
}

// Clean reports whether the result carries no warnings.
func (r Result) Clean() bool {
	return len(r.Warnings) == 0
}

// Type parses text into a value and tests membership of a value already
// produced by Parse (or by another compatible Type).
type Type interface {
	// TypeName identifies the value type for diagnostics (e.g. "string",
	// "one-of(...)").
	TypeName() string
	// Parse converts text into a value. An error means the text does not
	// belong to this type at all; Warnings on a successful Result are
	// advisory only.
	Parse(text string) (Result, error)
	// Test reports whether v (typically produced by Parse) belongs to
	// this type.
	Test(v any) bool
}

// ParseError wraps a failure to parse text against a named value type.
type ParseError struct {
	TypeName string
	Text     string
	Cause    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("value %q does not match type %s: %v", e.Text, e.TypeName, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }
