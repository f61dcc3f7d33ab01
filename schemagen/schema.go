package schemagen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Schema is a permissive JSON Schema node. Only the keywords the Sketch
// file-format schemas use are modeled; everything else is ignored on decode.
// Properties, patternProperties, and definitions preserve document order so
// that generation is deterministic.
type Schema struct {
	ID                   string       `json:"$id"`
	Ref                  string       `json:"$ref"`
	Type                 string       `json:"type"`
	Const                *Value       `json:"const"`
	Enum                 []Value      `json:"enum"`
	EnumDescriptions     []string     `json:"enumDescriptions"`
	Properties           *SchemaMap   `json:"properties"`
	Required             []string     `json:"required"`
	AdditionalProperties BoolOrSchema `json:"additionalProperties"`
	PatternProperties    *SchemaMap   `json:"patternProperties"`
	Items                *Schema      `json:"items"`
	OneOf                []*Schema    `json:"oneOf"`
	Definitions          *SchemaMap   `json:"definitions"`
	Description          string       `json:"description"`
}

// UnmarshalJSON decodes a schema node, accepting the boolean schema forms
// (true and false) as empty nodes.
func (s *Schema) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("true")) || bytes.Equal(trimmed, []byte("false")) {
		*s = Schema{}

		return nil
	}

	type plain Schema

	return json.Unmarshal(data, (*plain)(s))
}

// ParseSchema decodes a single schema document.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema

	err := json.Unmarshal(data, &s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedSchema, err)
	}

	return &s, nil
}

// HasProperty reports whether the schema declares the named property with an
// object-valued sub-schema.
func (s *Schema) HasProperty(name string) bool {
	return s != nil && s.Properties != nil && s.Properties.Has(name)
}

// IsObject reports whether the schema represents a model object, i.e. it
// declares a _class property.
func (s *Schema) IsObject() bool {
	return s.HasProperty("_class")
}

// IsLayer reports whether the schema represents a layer. The presence of
// do_objectID and frame properties is used as a heuristic.
func (s *Schema) IsLayer() bool {
	return s.HasProperty("do_objectID") && s.HasProperty("frame")
}

// IsGroup reports whether the schema represents a group layer, i.e. a layer
// that also carries a layers array.
func (s *Schema) IsGroup() bool {
	return s.IsLayer() && s.HasProperty("layers")
}

// ClassConst returns the constant value of the _class property, or "" when
// the schema has none.
func (s *Schema) ClassConst() string {
	if !s.IsObject() {
		return ""
	}

	class := s.Properties.Get("_class")
	if class == nil || class.Const == nil || class.Const.Kind != ValueString {
		return ""
	}

	return class.Const.Str
}

// BoolOrSchema models the additionalProperties keyword, which is either a
// boolean or a sub-schema. Only the boolean form affects generation.
type BoolOrSchema struct {
	Bool  bool
	IsSet bool
}

// UnmarshalJSON decodes a boolean when present and silently ignores the
// schema form.
func (b *BoolOrSchema) UnmarshalJSON(data []byte) error {
	var v bool

	err := json.Unmarshal(data, &v)
	if err != nil {
		// Schema-valued additionalProperties does not change translation.
		return nil
	}

	b.Bool = v
	b.IsSet = true

	return nil
}

// True reports whether additionalProperties was set to the literal true.
func (b BoolOrSchema) True() bool {
	return b.IsSet && b.Bool
}

// SchemaMap is an ordered mapping from property or definition name to
// sub-schema. Insertion order matches document order; re-setting an existing
// key replaces the value but keeps its original position.
type SchemaMap struct {
	keys   []string
	values map[string]*Schema
}

// NewSchemaMap creates an empty [SchemaMap].
func NewSchemaMap() *SchemaMap {
	return &SchemaMap{values: make(map[string]*Schema)}
}

// Len returns the number of entries.
func (sm *SchemaMap) Len() int {
	if sm == nil {
		return 0
	}

	return len(sm.keys)
}

// Keys returns the keys in insertion order. The returned slice must not be
// mutated.
func (sm *SchemaMap) Keys() []string {
	if sm == nil {
		return nil
	}

	return sm.keys
}

// Get returns the schema stored under key, or nil.
func (sm *SchemaMap) Get(key string) *Schema {
	if sm == nil {
		return nil
	}

	return sm.values[key]
}

// Has reports whether key is present.
func (sm *SchemaMap) Has(key string) bool {
	if sm == nil {
		return false
	}

	_, ok := sm.values[key]

	return ok
}

// Set stores value under key. A repeated key keeps its first position.
func (sm *SchemaMap) Set(key string, value *Schema) {
	if sm.values == nil {
		sm.values = make(map[string]*Schema)
	}

	if _, ok := sm.values[key]; !ok {
		sm.keys = append(sm.keys, key)
	}

	sm.values[key] = value
}

// Merge copies every entry of other into sm, last writer wins.
func (sm *SchemaMap) Merge(other *SchemaMap) {
	if other == nil {
		return
	}

	for _, key := range other.Keys() {
		sm.Set(key, other.Get(key))
	}
}

// UnmarshalJSON decodes a JSON object into the map, preserving document key
// order.
func (sm *SchemaMap) UnmarshalJSON(data []byte) error {
	var values map[string]*Schema

	err := json.Unmarshal(data, &values)
	if err != nil {
		return err
	}

	keys, err := objectKeys(data)
	if err != nil {
		return err
	}

	sm.keys = nil
	sm.values = make(map[string]*Schema, len(values))

	for _, key := range keys {
		if value, ok := values[key]; ok {
			sm.Set(key, value)
		}
	}

	return nil
}

// objectKeys scans the top-level keys of a JSON object in document order.
// Values are skipped structurally; their content has already been decoded.
func objectKeys(data []byte) ([]string, error) {
	i := skipSpace(data, 0)
	if i >= len(data) || data[i] != '{' {
		return nil, fmt.Errorf("expected object")
	}

	i = skipSpace(data, i+1)

	var keys []string

	if i < len(data) && data[i] == '}' {
		return keys, nil
	}

	for {
		key, next, err := scanString(data, i)
		if err != nil {
			return nil, err
		}

		keys = append(keys, key)

		i = skipSpace(data, next)
		if i >= len(data) || data[i] != ':' {
			return nil, fmt.Errorf("expected colon after key %q", key)
		}

		i, err = scanValue(data, skipSpace(data, i+1))
		if err != nil {
			return nil, err
		}

		i = skipSpace(data, i)
		if i >= len(data) {
			return nil, fmt.Errorf("unterminated object")
		}

		switch data[i] {
		case ',':
			i = skipSpace(data, i+1)
		case '}':
			return keys, nil
		default:
			return nil, fmt.Errorf("unexpected character %q in object", data[i])
		}
	}
}

func skipSpace(data []byte, i int) int {
	for i < len(data) {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}

	return i
}

// scanString reads a JSON string starting at i and returns its decoded value
// and the index just past the closing quote.
func scanString(data []byte, i int) (string, int, error) {
	if i >= len(data) || data[i] != '"' {
		return "", 0, fmt.Errorf("expected string")
	}

	for j := i + 1; j < len(data); j++ {
		switch data[j] {
		case '\\':
			j++
		case '"':
			var s string

			err := json.Unmarshal(data[i:j+1], &s)
			if err != nil {
				return "", 0, err
			}

			return s, j + 1, nil
		}
	}

	return "", 0, fmt.Errorf("unterminated string")
}

// scanValue returns the index just past the JSON value starting at i.
func scanValue(data []byte, i int) (int, error) {
	if i >= len(data) {
		return 0, fmt.Errorf("expected value")
	}

	switch data[i] {
	case '"':
		_, next, err := scanString(data, i)

		return next, err

	case '{', '[':
		depth := 0

		for j := i; j < len(data); j++ {
			switch data[j] {
			case '"':
				_, next, err := scanString(data, j)
				if err != nil {
					return 0, err
				}

				j = next - 1

			case '{', '[':
				depth++

			case '}', ']':
				depth--
				if depth == 0 {
					return j + 1, nil
				}
			}
		}

		return 0, fmt.Errorf("unterminated value")
	}

	for j := i; j < len(data); j++ {
		switch data[j] {
		case ',', '}', ']', ' ', '\t', '\n', '\r':
			return j, nil
		}
	}

	return len(data), nil
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (sm *SchemaMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, key := range sm.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyData, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}

		buf.Write(keyData)
		buf.WriteByte(':')

		valueData, err := json.Marshal(sm.Get(key))
		if err != nil {
			return nil, err
		}

		buf.Write(valueData)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// ValueKind discriminates the primitive kinds a const or enum value can take.
type ValueKind int

const (
	// ValueNull is the JSON null value.
	ValueNull ValueKind = iota
	// ValueString is a JSON string.
	ValueString
	// ValueInt is a JSON number without a fractional part.
	ValueInt
	// ValueFloat is a JSON number with a fractional part.
	ValueFloat
	// ValueBool is a JSON boolean.
	ValueBool
	// ValueOther is any other JSON value; translation rejects it.
	ValueOther
)

// Value is a scalar const or enum value, narrowed at decode time.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// UnmarshalJSON narrows a JSON scalar into the value sum. Numbers that carry
// no fractional part decode as integers, matching the source documents where
// enum members are written without decimal points.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		v.Kind = ValueNull

		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		v.Kind = ValueString
		v.Str = s

		return nil
	}

	var b bool
	if err := json.Unmarshal(trimmed, &b); err == nil {
		v.Kind = ValueBool
		v.Bool = b

		return nil
	}

	var i int64
	if err := json.Unmarshal(trimmed, &i); err == nil {
		v.Kind = ValueInt
		v.Int = i

		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err == nil {
		v.Kind = ValueFloat
		v.Float = f

		return nil
	}

	v.Kind = ValueOther

	return nil
}

// MarshalJSON encodes the value back to its JSON scalar form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return json.Marshal(v.Str)
	case ValueInt:
		return json.Marshal(v.Int)
	case ValueFloat:
		return json.Marshal(v.Float)
	case ValueBool:
		return json.Marshal(v.Bool)
	case ValueNull:
		return []byte("null"), nil
	case ValueOther:
	}

	return nil, fmt.Errorf("%w: unsupported const value", ErrUnsupportedSchema)
}

// StringValue builds a string [Value].
func StringValue(s string) Value {
	return Value{Kind: ValueString, Str: s}
}

// IntValue builds an integer [Value].
func IntValue(i int64) Value {
	return Value{Kind: ValueInt, Int: i}
}

// FloatValue builds a float [Value].
func FloatValue(f float64) Value {
	return Value{Kind: ValueFloat, Float: f}
}

// GoLiteral renders the value as a Go literal expression.
func (v Value) GoLiteral() (string, error) {
	switch v.Kind {
	case ValueString:
		return fmt.Sprintf("%q", v.Str), nil
	case ValueInt:
		return fmt.Sprintf("%d", v.Int), nil
	case ValueFloat:
		text := fmt.Sprintf("%g", v.Float)
		if !strings.ContainsAny(text, ".eE") {
			text += ".0"
		}

		return text, nil
	case ValueBool:
		return fmt.Sprintf("%t", v.Bool), nil
	case ValueNull:
		return "nil", nil
	case ValueOther:
	}

	return "", fmt.Errorf("%w: unsupported const value", ErrUnsupportedSchema)
}

// ExtractID derives a declaration identifier from a schema $id by stripping
// the leading # and exporting the first character.
func ExtractID(id string) string {
	return exportFirst(strings.ReplaceAll(id, "#", ""))
}

// ExtractRef derives a declaration identifier from a $ref target.
func ExtractRef(ref string) string {
	ref = strings.ReplaceAll(ref, "#", "")
	ref = strings.ReplaceAll(ref, "/definitions/", "")

	return exportFirst(ref)
}

func exportFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
