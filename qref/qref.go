// Package qref bundles "Qonfig-Reference", the small built-in vocabulary
// every promise-capable toolkit extends: the canonical promise add-on
// (carrying the ref/ref-role attributes every promise placeholder needs)
// and a reusable external-content element-def. It is analogous to
// gotype's globalRegistry: a single lazily-built, process-wide instance
// guarded by sync.Once rather than package-level mutable state built at
// import time, so a build failure here (a programming error, since the
// vocabulary is fixed) panics instead of surfacing as a runtime error a
// caller could plausibly recover from.
package qref

import (
	"sync"

	"github.com/updownquark/qonfig/qpromise"
	"github.com/updownquark/qonfig/qschema"
	"github.com/updownquark/qonfig/qvalue"
)

// Name and Version identify the bundled toolkit in extends="qref name
// vM.m" clauses and in DeclareDependency calls.
const Name = "qonfig-reference"

// Version is the bundled toolkit's version; callers depending on it
// should request Version or older (ToolkitBuilder.DeclareDependency
// checks Version.Compatible).
var Version = qschema.Version{Major: 1, Minor: 0}

// PromiseAddOnName is the add-on name within the bundled toolkit that
// marks an element-def's instances as promise placeholders.
const PromiseAddOnName = "promise"

var (
	once               sync.Once
	tk                 *qschema.Toolkit
	promiseAddOn       *qschema.AddOn
	externalContentDef *qschema.ElementDef
)

func build() {
	b := qschema.NewToolkitBuilder(Name, Version)

	promiseDB := b.DeclareAddOn(PromiseAddOnName, nil, false, qschema.Position{})
	promiseDB.AddAttribute("ref", qvalue.StringType{}, qschema.Optional, "", true, qschema.Position{})
	promiseDB.AddAttribute("ref-role", qvalue.StringType{}, qschema.Optional, "", true, qschema.Position{})

	ecDB := b.DeclareElement(qpromise.ExternalContentTypeName, nil, false, nil, qschema.Position{})
	ecDB.AddAttribute(qpromise.FulfillsAttribute, qvalue.StringType{}, qschema.Required, nil, false, qschema.Position{})

	built, err := b.Build()
	if err != nil {
		panic("qref: bundled toolkit failed to build: " + err.Error())
	}

	tk = built
	promiseAddOn, _ = tk.AddOn(PromiseAddOnName)
	externalContentDef, _ = tk.Element(qpromise.ExternalContentTypeName)
}

// Toolkit returns the bundled, closed Qonfig-Reference toolkit, building
// it on first use.
func Toolkit() *qschema.Toolkit {
	once.Do(build)
	return tk
}

// PromiseAddOn returns the canonical add-on that marks an element-def's
// instances as promise placeholders (qxml.CompileOptions.PromiseAddOn
// wants this pointer for any element-def declared promise="true").
func PromiseAddOn() *qschema.AddOn {
	once.Do(build)
	return promiseAddOn
}

// ExternalContentDef returns the bundled "external-content" element-def,
// for toolkit authors who extend it (extends="qref external-content")
// instead of redeclaring the fulfills attribute themselves.
func ExternalContentDef() *qschema.ElementDef {
	once.Do(build)
	return externalContentDef
}
