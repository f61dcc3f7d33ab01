package schemagen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDefinitions(t *testing.T, docJSON string) *SchemaMap {
	t.Helper()

	schema, err := ParseSchema([]byte(docJSON))
	require.NoError(t, err)
	require.NotNil(t, schema.Definitions)

	return schema.Definitions
}

func TestBuildClassTable(t *testing.T) {
	t.Parallel()

	definitions := parseDefinitions(t, `{
		"definitions": {
			"Rect": {
				"$id": "#Rect",
				"type": "object",
				"properties": {"_class": {"const": "rect"}}
			},
			"Color": {
				"$id": "#Color",
				"type": "object",
				"properties": {"_class": {"const": "color"}}
			},
			"ColorLegacy": {
				"$id": "#ColorLegacy",
				"type": "object",
				"properties": {"_class": {"const": "color"}}
			},
			"Anonymous": {
				"type": "object",
				"properties": {"x": {"type": "number"}}
			}
		}
	}`)

	table := BuildClassTable(definitions)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"color", "rect"}, table.Keys())
	assert.Equal(t, "Rect", table.Class("rect"))

	// First writer wins on duplicate discriminators.
	assert.Equal(t, "Color", table.Class("color"))
}

func TestObjectUnionShape(t *testing.T) {
	t.Parallel()

	object := UnionOf(NamedAnn("A", true), NamedAnn("B", true))
	literals := UnionOf(LiteralOf(StringValue("a")), LiteralOf(StringValue("b")))

	tcs := map[string]struct {
		ann  *Ann
		want UnionShape
	}{
		"direct union":          {ann: object, want: UnionDirect},
		"list of union":         {ann: ListOf(object), want: ListUnion},
		"optional union":        {ann: OptionalOf(object), want: OptionalUnion},
		"literal union":         {ann: literals, want: NotUnion},
		"list of literal union": {ann: ListOf(literals), want: NotUnion},
		"primitive":             {ann: Primitive(PrimString), want: NotUnion},
		"named":                 {ann: NamedAnn("A", false), want: NotUnion},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.ann.ObjectUnionShape())
		})
	}
}

func TestInjectDecoders(t *testing.T) {
	t.Parallel()

	union := UnionOf(NamedAnn("A", true), NamedAnn("B", true))

	class := &ClassDecl{
		Name: "Container",
		Fields: []*Field{
			{Name: "Layers", Key: "layers", Ann: ListOf(union)},
			{Name: "Style", Key: "style", Ann: OptionalOf(union), Optional: true},
			{Name: "Pick", Key: "pick", Ann: union},
			{Name: "Name", Key: "name", Ann: Primitive(PrimString)},
		},
	}

	graph := NewGraph()
	require.NoError(t, graph.Insert("Container", nil, class))

	assert.True(t, InjectDecoders(graph))

	assert.Equal(t, DecodeObjectList, class.Fields[0].Decode)
	assert.Equal(t, DecodeObject, class.Fields[1].Decode)
	assert.Equal(t, DecodeObject, class.Fields[2].Decode)
	assert.Equal(t, DecodeNone, class.Fields[3].Decode)
}
