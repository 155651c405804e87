package qschema

import "testing"

// A self-referential child type (an element whose child role's type is
// itself) must not loop: ValidateToolkit's no-recurse guard stops at the
// second visit, and a build with no conflicting modifiers on that role
// still succeeds.
func TestValidateToleratesSelfReferentialChildType(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	eb := tkb.DeclareElement("node", nil, false, nil, Position{})
	node, _ := tkb.tk.Element("node")
	eb.AddChild("children", node, 0, -1, Position{})

	_, err := tkb.Build()
	if err != nil {
		t.Fatalf("expected self-referential child type to build cleanly: %v", err)
	}
}

// A diamond conflict on a child role reached only through a
// self-referential type is still caught: two add-ons narrow the role's
// type to two unrelated element types, both inherited by the same element, with
// the owner declaring no final word.
func TestValidateCatchesConflictThroughSelfReferentialType(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	eb := tkb.DeclareElement("node", nil, false, nil, Position{})
	node, _ := tkb.tk.Element("node")
	tkb.DeclareElement("leaf-a", nil, false, nil, Position{})
	leafA, _ := tkb.tk.Element("leaf-a")
	tkb.DeclareElement("leaf-b", nil, false, nil, Position{})
	leafB, _ := tkb.tk.Element("leaf-b")
	childDecl := eb.AddChild("children", node, 0, 5, Position{})

	pb := tkb.DeclareAddOn("p", nil, false, Position{})
	pb.ModifyChild(childDecl, leafA, nil, nil, nil, nil, false, nil, Position{})

	qb := tkb.DeclareAddOn("q", nil, false, Position{})
	qb.ModifyChild(childDecl, leafB, nil, nil, nil, nil, false, nil, Position{})

	eb.Inherits(mustAddOn(tkb, "p"))
	eb.Inherits(mustAddOn(tkb, "q"))

	_, err := tkb.Build()
	if err == nil {
		t.Fatal("expected a conflict between p and q's child type modifiers to fail the build")
	}
}
