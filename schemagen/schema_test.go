package schemagen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaMapPreservesOrder(t *testing.T) {
	t.Parallel()

	schema, err := ParseSchema([]byte(`{
		"type": "object",
		"properties": {
			"zebra": {"type": "string"},
			"apple": {"type": "number"},
			"mango": {"type": "boolean"}
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"zebra", "apple", "mango"}, schema.Properties.Keys())
	assert.Equal(t, "number", schema.Properties.Get("apple").Type)
}

func TestSchemaMapRepeatedKeyKeepsPosition(t *testing.T) {
	t.Parallel()

	sm := NewSchemaMap()
	sm.Set("a", &Schema{Type: "string"})
	sm.Set("b", &Schema{Type: "number"})
	sm.Set("a", &Schema{Type: "integer"})

	assert.Equal(t, []string{"a", "b"}, sm.Keys())
	assert.Equal(t, "integer", sm.Get("a").Type)
}

func TestSchemaBooleanForm(t *testing.T) {
	t.Parallel()

	schema, err := ParseSchema([]byte(`{
		"type": "object",
		"properties": {"free": true}
	}`))
	require.NoError(t, err)

	free := schema.Properties.Get("free")
	require.NotNil(t, free)
	assert.Empty(t, free.Type)
}

func TestValueNarrowing(t *testing.T) {
	t.Parallel()

	schema, err := ParseSchema([]byte(`{
		"enum": ["s", 1, 2.5, true, null]
	}`))
	require.NoError(t, err)

	require.Len(t, schema.Enum, 5)
	assert.Equal(t, ValueString, schema.Enum[0].Kind)
	assert.Equal(t, "s", schema.Enum[0].Str)
	assert.Equal(t, ValueInt, schema.Enum[1].Kind)
	assert.Equal(t, int64(1), schema.Enum[1].Int)
	assert.Equal(t, ValueFloat, schema.Enum[2].Kind)
	assert.InDelta(t, 2.5, schema.Enum[2].Float, 0)
	assert.Equal(t, ValueBool, schema.Enum[3].Kind)
	assert.True(t, schema.Enum[3].Bool)
	assert.Equal(t, ValueNull, schema.Enum[4].Kind)
}

func TestAdditionalProperties(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		schema string
		want   bool
	}{
		"true":           {schema: `{"additionalProperties": true}`, want: true},
		"false":          {schema: `{"additionalProperties": false}`, want: false},
		"absent":         {schema: `{}`, want: false},
		"schema ignored": {schema: `{"additionalProperties": {"type": "string"}}`, want: false},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			schema, err := ParseSchema([]byte(tc.schema))
			require.NoError(t, err)
			assert.Equal(t, tc.want, schema.AdditionalProperties.True())
		})
	}
}

func TestClassifier(t *testing.T) {
	t.Parallel()

	layer := `{
		"$id": "#Rectangle",
		"type": "object",
		"properties": {
			"_class": {"const": "rectangle"},
			"do_objectID": {"type": "string"},
			"frame": {"$ref": "#Rect"}
		}
	}`
	group := `{
		"$id": "#Group",
		"type": "object",
		"properties": {
			"_class": {"const": "group"},
			"do_objectID": {"type": "string"},
			"frame": {"$ref": "#Rect"},
			"layers": {"type": "array"}
		}
	}`
	object := `{
		"$id": "#Color",
		"type": "object",
		"properties": {"_class": {"const": "color"}}
	}`
	plain := `{"type": "object", "properties": {"x": {"type": "number"}}}`

	tcs := map[string]struct {
		schema  string
		object  bool
		layer   bool
		group   bool
		class   string
	}{
		"layer":  {schema: layer, object: true, layer: true, class: "rectangle"},
		"group":  {schema: group, object: true, layer: true, group: true, class: "group"},
		"object": {schema: object, object: true, class: "color"},
		"plain":  {schema: plain},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			schema, err := ParseSchema([]byte(tc.schema))
			require.NoError(t, err)

			assert.Equal(t, tc.object, schema.IsObject())
			assert.Equal(t, tc.layer, schema.IsLayer())
			assert.Equal(t, tc.group, schema.IsGroup())
			assert.Equal(t, tc.class, schema.ClassConst())
		})
	}
}

func TestExtractIdentifiers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Artboard", ExtractID("#Artboard"))
	assert.Equal(t, "Artboard", ExtractRef("#Artboard"))
	assert.Equal(t, "Artboard", ExtractRef("#/definitions/Artboard"))
}
