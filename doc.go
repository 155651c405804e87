// Package qonfig is a schema and extension system for XML-style
// configuration documents.
//
// Authors declare a toolkit — a named, versioned vocabulary of element
// types, add-ons (mixins), attributes, children, and value types — with
// multi-inheritance, role-based child placement, and cross-toolkit
// references. A second phase parses documents against one or more
// toolkits and produces a validated, fully-inherited element tree
// suitable for interpretation by domain-specific back-ends.
//
// The module is organized into several packages:
//
//   - [github.com/updownquark/qonfig/qvalue] — value type variants
//     (string, boolean, literal, one-of, explicit, pattern, custom)
//   - [github.com/updownquark/qonfig/qschema] — the schema model and its
//     compiler: toolkit builder, multi-inheritance resolver,
//     auto-inheritance engine, and whole-toolkit validation
//   - [github.com/updownquark/qonfig/qdoc] — the document parser and
//     resolved element builder, validated against one or more toolkits
//   - [github.com/updownquark/qonfig/qpromise] — the promise /
//     external-content stitcher for late-bound child placeholders
//   - [github.com/updownquark/qonfig/qxml] — a participle-based XML DOM
//     adapter feeding positioned tokens to the document parser
//   - [github.com/updownquark/qonfig/qref] — the bundled Qonfig-Reference
//     mini-toolkit used for promise/external-content declarations
//   - [github.com/updownquark/qonfig/qcatalog] — an optional persistent
//     cache of compiled toolkits
//   - [github.com/updownquark/qonfig/qcodegen] — Go struct generation
//     from a closed toolkit, for interpretation-layer consumers
//
// qvalue, qschema, qdoc, and qpromise have no I/O dependency beyond
// what a caller supplies (a declaration source, a DOM, a dependency
// toolkit) and do not require a running service of any kind. Outside the
// two commands, only qxml's FileLoader (which reads referenced
// documents) and qcatalog (a sqlite file) touch disk.
package qonfig
