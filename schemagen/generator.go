package schemagen

import (
	"bytes"
	"fmt"
	"log/slog"
)

// Bundle carries the four schema documents generation runs over.
type Bundle struct {
	Document   *Schema
	FileFormat *Schema
	Meta       *Schema
	User       *Schema
}

// Generator produces a single Go source file from a schema bundle.
//
// Create instances with [NewGenerator].
type Generator struct {
	pkg string
}

// Option configures a [Generator].
type Option func(*Generator)

// WithPackage sets the package clause of the emitted file.
func WithPackage(name string) Option {
	return func(g *Generator) {
		g.pkg = name
	}
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{pkg: "fileformat"}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate runs the pipeline: merge the definitions of the four documents,
// synthesize the umbrella schemas, translate every definition, wire the
// polymorphic decoders, and render the file. The whole output is built in
// memory; nothing is produced on error.
func (g *Generator) Generate(bundle Bundle) ([]byte, error) {
	definitions := NewSchemaMap()

	for _, doc := range []*Schema{bundle.Document, bundle.FileFormat, bundle.Meta, bundle.User} {
		if doc != nil {
			definitions.Merge(doc.Definitions)
		}
	}

	slog.Debug("collected definitions", slog.Int("count", definitions.Len()))

	table := BuildClassTable(definitions)

	allDefs := NewSchemaMap()
	allDefs.Merge(definitions)

	for _, umbrella := range umbrellaSchemas(bundle, definitions, table) {
		allDefs.Set(ExtractID(umbrella.ID), umbrella)
	}

	builder := NewBuilder()

	for _, key := range allDefs.Keys() {
		err := builder.AddDefinition(allDefs.Get(key))
		if err != nil {
			return nil, err
		}
	}

	InjectDecoders(builder.Graph())
	builder.Imports().Require(jsonImportPath)

	slog.Debug("registered declarations",
		slog.Int("count", len(builder.Graph().Identifiers())),
		slog.Int("classes", table.Len()),
	)

	emitter := &Emitter{
		Package:     g.pkg,
		BeforeDecls: writeCompanionFuncs,
		AfterDecls:  classMapHook(table),
	}

	return emitter.Emit(builder.Graph(), builder.Imports())
}

// umbrellaSchemas synthesizes the six extra top-level schemas: the file
// contents and document roots under fresh identifiers, the layer, group, and
// object unions, and the enum of discriminator values.
func umbrellaSchemas(bundle Bundle, definitions *SchemaMap, table *ClassTable) []*Schema {
	contents := *bundle.FileFormat
	contents.ID = "#Contents"

	document := *bundle.Document
	document.ID = "#Document"

	anyLayer := &Schema{
		Description: "Union of all layers",
		ID:          "#AnyLayer",
		OneOf:       refsOf(definitions, (*Schema).IsLayer),
	}

	anyGroup := &Schema{
		Description: "Union of all group layers",
		ID:          "#AnyGroup",
		OneOf:       refsOf(definitions, (*Schema).IsGroup),
	}

	anyObject := &Schema{
		Description: "Union of all objects, i.e. objects with a _class property",
		ID:          "#AnyObject",
		OneOf:       refsOf(definitions, (*Schema).IsObject),
	}

	classValue := &Schema{
		Description: "Enum of all possible _class property values",
		ID:          "#ClassValue",
	}

	for _, value := range table.Values() {
		classValue.Enum = append(classValue.Enum, StringValue(value))
		classValue.EnumDescriptions = append(classValue.EnumDescriptions, value)
	}

	return []*Schema{&contents, &document, anyLayer, anyGroup, anyObject, classValue}
}

func refsOf(definitions *SchemaMap, match func(*Schema) bool) []*Schema {
	var refs []*Schema

	for _, key := range definitions.Keys() {
		schema := definitions.Get(key)
		if match(schema) && schema.ID != "" {
			refs = append(refs, &Schema{Ref: schema.ID})
		}
	}

	return refs
}

// writeCompanionFuncs emits the runtime half of polymorphic decoding: the
// toObject dispatcher and its list form.
func writeCompanionFuncs(buf *bytes.Buffer) {
	buf.WriteString(`// toObject converts a decoded JSON value into its typed class when it is an
// object whose _class value is present in ClassMap. Values that do not
// resolve are returned unchanged.
func toObject(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	name, _ := m["_class"].(string)
	ctor, ok := ClassMap[name]
	if !ok {
		return v
	}
	obj := ctor()
	raw, err := json.Marshal(m)
	if err != nil {
		return v
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return v
	}
	return obj
}

// toObjectList applies toObject to every element of a decoded JSON array.
func toObjectList(vs []any) []any {
	for i, v := range vs {
		vs[i] = toObject(v)
	}
	return vs
}

`)
}

// classMapHook renders the discriminator table as a constructor literal.
func classMapHook(table *ClassTable) Hook {
	return func(buf *bytes.Buffer) {
		buf.WriteString("// ClassMap binds every _class discriminator to a constructor for its class.\n")
		buf.WriteString("var ClassMap = map[string]func() any{\n")

		for _, key := range table.Keys() {
			fmt.Fprintf(buf, "\t%q: func() any { return new(%s) },\n", key, table.Class(key))
		}

		buf.WriteString("}\n")
	}
}
