package qschema

import "github.com/updownquark/qonfig/qvalue"

// AttributeDecl is an originally-declared attribute on an element-def or
// add-on.
type AttributeDecl struct {
	Owner         Definition
	Name          string
	ValueType     qvalue.Type
	Specification Specification
	Default       any
	HasDefault    bool
	Pos           Position
}

// AttributeModifier is a partial override of an inherited attribute,
// declared via modify-attribute. It carries a back-pointer to the
// AttributeDecl it modifies, per §3. A nil ValueType, nil Specification,
// or HasDefault=false/Default=nil field means "inherit the prior value"
// for that facet; see mergeAttribute in merge.go.
type AttributeModifier struct {
	Declared      *AttributeDecl
	ValueType     qvalue.Type // nil = inherit
	Specification *Specification
	Default       any
	HasDefault    bool
	Pos           Position
}

// EffectiveAttribute is the compiled, flattened view of an attribute as
// seen on a particular definition: the result of merging the declared
// root through every contributing modifier.
type EffectiveAttribute struct {
	Declared      *AttributeDecl
	Owner         Definition
	Name          string
	ValueType     qvalue.Type
	Specification Specification
	Default       any
	HasDefault    bool
	Trace         []ModifierTrace
}

// ModifierTrace records the add-on chain through which a modifier
// contributed to an effective attribute/value/child, used to report both
// paths of a diamond conflict (§4.6).
type ModifierTrace struct {
	Path     []*AddOn // chain from owner to the contributing add-on; empty = the owner's own modifier
	Modifier any      // *AttributeModifier, *ValueModifier, or *ChildModifier
}
