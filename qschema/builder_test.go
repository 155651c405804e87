package qschema

import (
	"testing"

	"github.com/updownquark/qonfig/qvalue"
)

func buildSimpleToolkit(t *testing.T) (*Toolkit, *ElementDef) {
	t.Helper()
	tkb := NewToolkitBuilder("t", Version{1, 0})
	eb := tkb.DeclareElement("e", nil, false, nil, Position{})
	eb.AddAttribute("n", qvalue.StringType{}, Optional, "x", true, Position{})
	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	e, _ := tk.Element("e")
	return tk, e
}

// Scenario 1 of §8: single attribute override. Add-on m makes e.n
// required; without supplying a value this must surface as an error at
// the point a document tries to resolve n, which here we simulate
// directly against the effective attribute.
func TestSingleAttributeOverride(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	eb := tkb.DeclareElement("e", nil, false, nil, Position{})
	attrN := eb.AddAttribute("n", qvalue.StringType{}, Optional, "x", true, Position{})

	ab := tkb.DeclareAddOn("m", nil, false, Position{})
	req := Required
	ab.ModifyAttribute(attrN, nil, &req, nil, false, Position{})
	eb.Inherits(mustAddOn(tkb, "m"))

	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	e, _ := tk.Element("e")
	eff, ok := e.AttributeByName("n")
	if !ok {
		t.Fatal("expected attribute n")
	}
	if eff.Specification != Required {
		t.Errorf("expected Required, got %v", eff.Specification)
	}
	if !eff.HasDefault || eff.Default != "x" {
		t.Errorf("expected default x carried through, got %v/%v", eff.Default, eff.HasDefault)
	}
}

func mustAddOn(tkb *ToolkitBuilder, name string) *AddOn {
	a, ok := tkb.tk.AddOn(name)
	if !ok {
		panic("no such add-on: " + name)
	}
	return a
}

// Scenario 2 of §8: diamond conflict. Add-ons p and q both modify e.n to
// differing defaults, neither subsumes the other; an element inheriting
// both without a final word fails toolkit build.
func TestDiamondConflictFailsBuild(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	eb := tkb.DeclareElement("e", nil, false, nil, Position{})
	attrN := eb.AddAttribute("n", qvalue.StringType{}, Optional, "x", true, Position{})

	pb := tkb.DeclareAddOn("p", nil, false, Position{})
	pb.ModifyAttribute(attrN, nil, nil, "from-p", true, Position{})

	qb := tkb.DeclareAddOn("q", nil, false, Position{})
	qb.ModifyAttribute(attrN, nil, nil, "from-q", true, Position{})

	eb.Inherits(mustAddOn(tkb, "p"))
	eb.Inherits(mustAddOn(tkb, "q"))

	_, err := tkb.Build()
	if err == nil {
		t.Fatal("expected build to fail on diamond conflict")
	}
}

// Diamond inheritance where both branches agree: build succeeds.
func TestDiamondAgreementSucceeds(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	eb := tkb.DeclareElement("e", nil, false, nil, Position{})
	attrN := eb.AddAttribute("n", qvalue.StringType{}, Optional, "x", true, Position{})

	pb := tkb.DeclareAddOn("p", nil, false, Position{})
	pb.ModifyAttribute(attrN, nil, nil, "same", true, Position{})

	qb := tkb.DeclareAddOn("q", nil, false, Position{})
	qb.ModifyAttribute(attrN, nil, nil, "same", true, Position{})

	eb.Inherits(mustAddOn(tkb, "p"))
	eb.Inherits(mustAddOn(tkb, "q"))

	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("expected agreeing diamond to build: %v", err)
	}
	e, _ := tk.Element("e")
	eff, _ := e.AttributeByName("n")
	if eff.Default != "same" {
		t.Errorf("expected same, got %v", eff.Default)
	}
}

// A diamond conflict reconciled by the owner's own modifier (a "final
// word") must succeed.
func TestDiamondConflictReconciledByOwner(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	eb := tkb.DeclareElement("e", nil, false, nil, Position{})
	attrN := eb.AddAttribute("n", qvalue.StringType{}, Optional, "x", true, Position{})

	pb := tkb.DeclareAddOn("p", nil, false, Position{})
	pb.ModifyAttribute(attrN, nil, nil, "from-p", true, Position{})
	qb := tkb.DeclareAddOn("q", nil, false, Position{})
	qb.ModifyAttribute(attrN, nil, nil, "from-q", true, Position{})

	eb.Inherits(mustAddOn(tkb, "p"))
	eb.Inherits(mustAddOn(tkb, "q"))
	eb.ModifyAttribute(attrN, nil, nil, "final", true, Position{})

	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("expected owner's final word to reconcile: %v", err)
	}
	e, _ := tk.Element("e")
	eff, _ := e.AttributeByName("n")
	if eff.Default != "final" {
		t.Errorf("expected final, got %v", eff.Default)
	}
}

// Forbidden is sticky: once an ancestor's spec is Forbidden, every
// descendant effective spec stays Forbidden with the same default.
func TestForbiddenIsSticky(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	eb := tkb.DeclareElement("e", nil, false, nil, Position{})
	attrN := eb.AddAttribute("n", qvalue.StringType{}, Forbidden, nil, false, Position{})

	ab := tkb.DeclareAddOn("m", nil, false, Position{})
	opt := Optional
	ab.ModifyAttribute(attrN, nil, &opt, "y", true, Position{})
	eb.Inherits(mustAddOn(tkb, "m"))

	_, err := tkb.Build()
	if err == nil {
		t.Fatal("expected error: cannot relax forbidden specification")
	}
}

// Cyclic inheritance is fatal.
func TestCyclicInheritanceFails(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	ab := tkb.DeclareAddOn("a", nil, false, Position{})
	bb := tkb.DeclareAddOn("b", nil, false, Position{})
	ab.Inherits(mustAddOn(tkb, "b"))
	bb.Inherits(mustAddOn(tkb, "a"))

	_, err := tkb.Build()
	if err == nil {
		t.Fatal("expected cyclic inheritance error")
	}
}

// Invariant 1/2 of §8: assignability reflexivity and transitivity.
func TestAssignabilityReflexiveAndTransitive(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	tkb.DeclareElement("root", nil, false, nil, Position{})
	root, _ := tkb.tk.Element("root")
	tkb.DeclareElement("mid", root, false, nil, Position{})
	mid, _ := tkb.tk.Element("mid")
	tkb.DeclareElement("leaf", mid, false, nil, Position{})
	leaf, _ := tkb.tk.Element("leaf")

	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	root, _ = tk.Element("root")
	leaf, _ = tk.Element("leaf")

	if !root.IsAssignableFrom(root) {
		t.Error("expected reflexivity")
	}
	if !root.IsAssignableFrom(leaf) {
		t.Error("expected transitivity root<-leaf")
	}
}

// Child cardinality: min=1 max=2 rejects 0 and 3, accepts 1 and 2.
func TestChildCardinalityBounds(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	tkb.DeclareElement("child", nil, false, nil, Position{})
	childType, _ := tkb.tk.Element("child")
	peb := tkb.DeclareElement("parent", nil, false, nil, Position{})
	peb.AddChild("c", childType, 1, 2, Position{})

	tk, err := tkb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	parent, _ := tk.Element("parent")
	eff, ok := parent.ChildByName("c")
	if !ok {
		t.Fatal("expected child role c")
	}
	if eff.Min != 1 || eff.Max != 2 {
		t.Errorf("expected min=1 max=2, got min=%d max=%d", eff.Min, eff.Max)
	}
}

// min/max may only be tightened, never relaxed, by a modify-child.
func TestChildCardinalityMayOnlyTighten(t *testing.T) {
	tkb := NewToolkitBuilder("t", Version{1, 0})
	tkb.DeclareElement("child", nil, false, nil, Position{})
	childType, _ := tkb.tk.Element("child")
	peb := tkb.DeclareElement("parent", nil, false, nil, Position{})
	childDecl := peb.AddChild("c", childType, 1, 2, Position{})

	ab := tkb.DeclareAddOn("loosen", nil, false, Position{})
	newMax := 5
	ab.ModifyChild(childDecl, nil, nil, nil, nil, &newMax, false, nil, Position{})
	peb.Inherits(mustAddOn(tkb, "loosen"))

	_, err := tkb.Build()
	if err == nil {
		t.Fatal("expected error relaxing max")
	}
}
