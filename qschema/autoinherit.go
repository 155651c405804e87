package qschema

// AutoInheritTarget is one member of an AutoInheritRule's target set: a
// type filter, a role filter, or both. A nil Type or Role means
// "unconstrained" on that axis.
type AutoInheritTarget struct {
	Type *ElementDef
	Role *ChildDecl
}

// matches implements the target-matching predicate of §3:
// (target.type is null or target.type.is-assignable-from(E.type)) and
// (target.role is null or there exists r in R with
// role.owner.is-assignable-from(r.owner) and role.is-fulfilled-by(r)).
func (tgt AutoInheritTarget) matches(elemType *ElementDef, roles []*ChildDecl) bool {
	if tgt.Type != nil {
		if elemType == nil || !tgt.Type.IsAssignableFrom(elemType) {
			return false
		}
	}
	if tgt.Role != nil {
		owner, ok := tgt.Role.Owner.(*ElementDef)
		found := false
		for _, r := range roles {
			if ok {
				if rOwner, rok := r.Owner.(*ElementDef); !rok || !owner.IsAssignableFrom(rOwner) {
					continue
				}
			}
			if tgt.Role.IsFulfilledBy(r) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// AutoInheritRule is a declared auto-inheritance rule: when an element's
// accumulated parent-types and full roles match any target, the listed
// add-ons are implicitly inherited.
type AutoInheritRule struct {
	Declarer  *Toolkit
	Inherited *AddOnSet
	Targets   []AutoInheritTarget
	Pos       Position
}

// AutoInheritState is the incremental, monotone accumulator described in
// §4.3: it is fed parent types and declared roles as an element builder
// descends, and converges to the full set of implicitly inherited add-ons.
// State only ever grows; re-running add-target-type/add-role on an
// already-seen value is a no-op, which is what guarantees the fixed point
// terminates (types and add-ons are finite).
type AutoInheritState struct {
	toolkits []*Toolkit

	parentTypes   map[*ElementDef]bool
	declaredRoles map[*ChildDecl]bool
	fullRoles     map[*ChildDecl]bool
	targetTypes   map[*ElementDef]bool
	inheritance   *AddOnSet
}

// NewAutoInheritState begins a fresh accumulator scoped to the given
// toolkits (the active toolkit and every toolkit reachable from its
// dependency chain, searched on every target-type addition).
func NewAutoInheritState(toolkits ...*Toolkit) *AutoInheritState {
	return &AutoInheritState{
		toolkits:      toolkits,
		parentTypes:   map[*ElementDef]bool{},
		declaredRoles: map[*ChildDecl]bool{},
		fullRoles:     map[*ChildDecl]bool{},
		targetTypes:   map[*ElementDef]bool{},
		inheritance:   &AddOnSet{},
	}
}

// Inheritance returns the add-ons implicitly inherited so far. Safe to
// call at any point; the set only grows as more types/roles are added.
func (s *AutoInheritState) Inheritance() *AddOnSet { return s.inheritance }

// FullRoles returns the accumulated full-role set: every role passed to
// AddRole so far.
func (s *AutoInheritState) FullRoles() []*ChildDecl {
	out := make([]*ChildDecl, 0, len(s.fullRoles))
	for r := range s.fullRoles {
		out = append(out, r)
	}
	return out
}

// AddTargetType is add-target-type(T) from §4.3: for every current full
// role and every in-scope toolkit, query its auto-inheritance rules
// against (T, {r}), union the matches into inheritance, then recurse into
// each newly inherited add-on's own super-element as a new parent type.
func (s *AutoInheritState) AddTargetType(t *ElementDef) {
	if t == nil || s.targetTypes[t] {
		return
	}
	s.targetTypes[t] = true
	s.parentTypes[t] = true

	roles := s.FullRoles()
	for _, tk := range s.toolkits {
		for _, rule := range tk.AutoInheritRules() {
			if !s.ruleMatches(rule, t, roles) {
				continue
			}
			for _, addon := range rule.Inherited.Items() {
				if s.inheritance.Contains(addon) {
					continue
				}
				s.inheritance.Add(addon)
				if req := addon.Requirement(); req != nil {
					s.AddTargetType(req)
				}
			}
		}
	}
}

func (s *AutoInheritState) ruleMatches(rule AutoInheritRule, t *ElementDef, roles []*ChildDecl) bool {
	if len(rule.Targets) == 0 {
		return false
	}
	for _, tgt := range rule.Targets {
		if tgt.matches(t, roles) {
			return true
		}
	}
	return false
}

// AddRole is add-role(R) from §4.3: add R's type, requirement, and
// inheritance as new target types, then re-derive the full-role set by
// joining R against the current parent types.
func (s *AutoInheritState) AddRole(r *ChildDecl) {
	if r == nil || s.declaredRoles[r] {
		return
	}
	s.declaredRoles[r] = true
	s.fullRoles[r] = true

	if r.Type != nil {
		s.AddTargetType(r.Type)
	}
	for _, addon := range r.Requirement.Items() {
		if req := addon.Requirement(); req != nil {
			s.AddTargetType(req)
		}
	}
	for _, addon := range r.DeclaredInheritance.Items() {
		if req := addon.Requirement(); req != nil {
			s.AddTargetType(req)
		}
	}

	// A type added before r was matched without r in the full-role set;
	// run it again so rules scoped to r can match it.
	earlier := make([]*ElementDef, 0, len(s.targetTypes))
	for t := range s.targetTypes {
		earlier = append(earlier, t)
	}
	for _, t := range earlier {
		delete(s.targetTypes, t)
		s.AddTargetType(t)
	}
}
