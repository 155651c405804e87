package qschema

import "github.com/updownquark/qonfig/qvalue"

// ValueDecl is an element-def's declared "text" value spec: same shape
// as AttributeDecl but keyed positionally rather than by name.
type ValueDecl struct {
	Owner         Definition
	ValueType     qvalue.Type
	Specification Specification
	Default       any
	HasDefault    bool
	Pos           Position
}

// ValueModifier partially overrides an inherited value-def.
type ValueModifier struct {
	Declared      *ValueDecl
	ValueType     qvalue.Type
	Specification *Specification
	Default       any
	HasDefault    bool
	Pos           Position
}

// EffectiveValue is the compiled, flattened value-def for a definition.
type EffectiveValue struct {
	Declared      *ValueDecl
	Owner         Definition
	ValueType     qvalue.Type
	Specification Specification
	Default       any
	HasDefault    bool
	Trace         []ModifierTrace
}
