package qschema

import "fmt"

// Specification controls how a value must be supplied: Required demands
// it, Optional allows a default to stand in for it, Forbidden disallows
// it outright. Forbidden is the strongest; it can never be loosened by a
// later modifier (see [mergeSpec]).
type Specification int

const (
	Required Specification = iota
	Optional
	Forbidden
)

func (s Specification) String() string {
	switch s {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// ParseSpecification parses the case-insensitive enum values accepted by
// the specify="..." attribute.
func ParseSpecification(s string) (Specification, error) {
	switch lower(s) {
	case "required":
		return Required, nil
	case "optional":
		return Optional, nil
	case "forbidden":
		return Forbidden, nil
	default:
		return 0, fmt.Errorf("unknown specification %q", s)
	}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// specDefault is the (specification, default) pair tracked through a
// merge chain.
type specDefault struct {
	Spec       Specification
	Default    any
	HasDefault bool
}

// mergeSpec implements the §4.2 validate-specification lattice: given an
// old (inherited) spec/default pair and an override, produce the
// resulting pair or an error. The override's own default is only
// consulted where the table calls for it; a useless override default
// (e.g. on a Required→Required step) produces a warning, not an error.
func mergeSpec(diags *Diagnostics, pos Position, old, override specDefault) (specDefault, bool) {
	switch old.Spec {
	case Forbidden:
		if override.Spec != Forbidden {
			diags.Errorf(pos, "cannot relax forbidden specification to %s", override.Spec)
			return old, false
		}
		// Forbidden -> Forbidden: defaults must agree or one be absent.
		if old.HasDefault && override.HasDefault && !equalDefault(old.Default, override.Default) {
			diags.Errorf(pos, "forbidden specification carries conflicting defaults %v and %v", old.Default, override.Default)
			return old, false
		}
		if old.HasDefault {
			return old, true
		}
		return specDefault{Spec: Forbidden, Default: override.Default, HasDefault: override.HasDefault}, true

	case Required:
		switch override.Spec {
		case Required:
			if override.HasDefault {
				diags.Warnf(pos, "default on a required specification is unused")
			}
			return specDefault{Spec: Required}, true
		case Optional, Forbidden:
			result := override
			if !result.HasDefault {
				if old.HasDefault {
					result.Default, result.HasDefault = old.Default, true
				} else {
					diags.Errorf(pos, "relaxing required specification to %s needs a default", override.Spec)
					return old, false
				}
			}
			return result, true
		}
	case Optional:
		result := override
		if !result.HasDefault {
			result.Default, result.HasDefault = old.Default, old.HasDefault
		}
		return result, true
	}
	return old, true
}

func equalDefault(a, b any) bool {
	return fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
}
