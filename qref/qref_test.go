package qref_test

import (
	"testing"

	"github.com/updownquark/qonfig/qpromise"
	"github.com/updownquark/qonfig/qref"
)

func TestToolkitIsClosedAndStable(t *testing.T) {
	tk1 := qref.Toolkit()
	tk2 := qref.Toolkit()
	if tk1 != tk2 {
		t.Fatal("expected Toolkit() to return the same instance across calls")
	}
	if !tk1.IsClosed() {
		t.Fatal("expected bundled toolkit to be closed")
	}
}

func TestPromiseAddOnCarriesRefAttributes(t *testing.T) {
	a := qref.PromiseAddOn()
	if a == nil {
		t.Fatal("expected a non-nil promise add-on")
	}
	if a.DefName() != qref.PromiseAddOnName {
		t.Fatalf("expected add-on name %q, got %q", qref.PromiseAddOnName, a.DefName())
	}
}

func TestExternalContentDefMatchesQpromiseConvention(t *testing.T) {
	def := qref.ExternalContentDef()
	if def == nil {
		t.Fatal("expected a non-nil external-content element-def")
	}
	if def.DefName() != qpromise.ExternalContentTypeName {
		t.Fatalf("expected element name %q, got %q", qpromise.ExternalContentTypeName, def.DefName())
	}
	eff, ok := def.AttributeByName(qpromise.FulfillsAttribute)
	if !ok {
		t.Fatalf("expected attribute %q to exist", qpromise.FulfillsAttribute)
	}
	if eff.Specification != 0 {
		// qschema.Required is iota 0; a non-zero value here means the
		// bundled attribute quietly stopped being required.
		t.Fatalf("expected %q to be required, got specification %v", qpromise.FulfillsAttribute, eff.Specification)
	}
}
