package qschema

import "testing"

// An element whose type matches an auto-inheritance rule's target picks
// up the rule's add-on without declaring `inherits` itself.
func TestAutoInheritanceAppliesByTargetType(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	ab := tkb.DeclareAddOn("tagged", nil, false, Position{})
	ab.AddAttribute("tag", nil, Optional, "x", true, Position{})
	tkb.DeclareElement("widget", nil, false, nil, Position{})

	tkb.DeclareAutoInheritance([]string{"tagged"}, []AutoTargetSpec{{TypeName: "widget"}}, Position{})

	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	widget, _ := tk.Element("widget")
	tagged, _ := tk.AddOn("tagged")
	state := NewAutoInheritState(tk)
	state.AddTargetType(widget)
	if !state.Inheritance().Contains(tagged) {
		t.Error("expected widget to auto-inherit tagged")
	}
}

// An element whose type does not match any rule target is unaffected.
func TestAutoInheritanceSkipsNonMatchingType(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	ab := tkb.DeclareAddOn("tagged", nil, false, Position{})
	ab.AddAttribute("tag", nil, Optional, "x", true, Position{})
	tkb.DeclareElement("widget", nil, false, nil, Position{})
	tkb.DeclareElement("gadget", nil, false, nil, Position{})

	tkb.DeclareAutoInheritance([]string{"tagged"}, []AutoTargetSpec{{TypeName: "widget"}}, Position{})

	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	gadget, _ := tk.Element("gadget")
	if _, ok := gadget.AttributeByName("tag"); ok {
		t.Error("expected gadget not to auto-inherit widget's rule")
	}
}

// A subtype of the rule's target type matches too, since AutoInheritTarget
// uses IsAssignableFrom rather than exact equality.
func TestAutoInheritanceAppliesToSubtype(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	ab := tkb.DeclareAddOn("tagged", nil, false, Position{})
	ab.AddAttribute("tag", nil, Optional, "x", true, Position{})
	tkb.DeclareElement("widget", nil, false, nil, Position{})
	widget, _ := tkb.tk.Element("widget")
	tkb.DeclareElement("special-widget", widget, false, nil, Position{})

	tkb.DeclareAutoInheritance([]string{"tagged"}, []AutoTargetSpec{{TypeName: "widget"}}, Position{})

	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	special, _ := tk.Element("special-widget")
	tagged, _ := tk.AddOn("tagged")
	state := NewAutoInheritState(tk)
	state.AddTargetType(special)
	if !state.Inheritance().Contains(tagged) {
		t.Error("expected special-widget to inherit tagged via its supertype match")
	}
}

// An auto-inheritance rule naming an unknown add-on is a build error.
func TestAutoInheritanceUnknownAddOnFails(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	tkb.DeclareElement("widget", nil, false, nil, Position{})
	tkb.DeclareAutoInheritance([]string{"no-such-addon"}, []AutoTargetSpec{{TypeName: "widget"}}, Position{})

	_, err := tkb.Build()
	if err == nil {
		t.Fatal("expected error for unknown add-on in auto-inheritance rule")
	}
}

// AddRole on a fresh state registers the role in the full-role set.
func TestAutoInheritStateAddRoleDerivesFullRoles(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	tkb.DeclareElement("child", nil, false, nil, Position{})
	childType, _ := tkb.tk.Element("child")
	peb := tkb.DeclareElement("parent", nil, false, nil, Position{})
	peb.AddChild("c", childType, 0, 1, Position{})

	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	parent, _ := tk.Element("parent")
	role, _ := parent.ChildByName("c")

	state := NewAutoInheritState(tk)
	state.AddRole(role.Declared)
	found := false
	for _, r := range state.FullRoles() {
		if r == role.Declared {
			found = true
		}
	}
	if !found {
		t.Error("expected AddRole to register the role in FullRoles")
	}
}
