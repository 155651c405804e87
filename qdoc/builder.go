package qdoc

import "github.com/updownquark/qonfig/qschema"

// frame is one level of the scoped-acquisition builder context stack:
// on entry to a nested element build, a new frame is pushed carrying the
// ancestor chain's accumulated parent-types and declared-roles (§4.3);
// on exit (success or error) the parent frame is restored.
type frame struct {
	types []*qschema.ElementDef
	roles []*qschema.ChildDecl
}

func (f frame) descend(t *qschema.ElementDef, roles []*qschema.ChildDecl) frame {
	next := frame{
		types: append(append([]*qschema.ElementDef{}, f.types...), t),
		roles: append(append([]*qschema.ChildDecl{}, f.roles...), roles...),
	}
	return next
}

// autoInherit replays this frame's accumulated types and roles through a
// fresh AutoInheritState, per §4.3's incremental monotone algorithm.
// Recomputing from scratch on each call (rather than mutating one
// state shared down the tree) is safe because of testable property 5
// (auto-inheritance idempotence): the same (types, roles) always yields
// the same add-on set regardless of how many times it is derived.
func (f frame) autoInherit(toolkits ...*qschema.Toolkit) *qschema.AutoInheritState {
	st := qschema.NewAutoInheritState(toolkits...)
	for _, t := range f.types {
		st.AddTargetType(t)
	}
	for _, r := range f.roles {
		st.AddRole(r)
	}
	return st
}

// stack is the scoped-acquisition builder context: push on descent,
// pop on return, current() always reflects the active element's
// ancestry.
type stack struct {
	frames []frame
}

func newStack() *stack {
	return &stack{frames: []frame{{}}}
}

func (s *stack) current() frame {
	return s.frames[len(s.frames)-1]
}

func (s *stack) push(f frame) {
	s.frames = append(s.frames, f)
}

func (s *stack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}
