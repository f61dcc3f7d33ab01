// Package schemagen generates strongly-typed Go data-model code from the
// JSON Schema documents that describe the Sketch file format.
//
// The generator consumes the document, fileFormat, meta, and user schema
// documents, translates every definition into a typed declaration (structs,
// enums, type aliases, discriminated unions), resolves cross-schema $refs,
// names nested anonymous objects, and emits a single self-contained source
// file. Heterogeneous containers such as layer lists are decoded at runtime
// through a discriminator table keyed by the _class property.
//
// Translation is deterministic: declarations are emitted in definition
// order, minted names depend only on their inputs, and the discriminator
// table is rendered sorted, so two runs over the same schemas produce
// byte-identical output.
package schemagen
