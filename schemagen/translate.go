package schemagen

import (
	"fmt"
	"slices"

	"github.com/iancoleman/strcase"
)

// Builder translates schema definitions into the declaration graph.
//
// Create instances with [NewBuilder], feed every top-level definition through
// [Builder.AddDefinition], then wire polymorphic decoders and emit.
type Builder struct {
	graph   *Graph
	imports *ImportSet
}

// NewBuilder creates an empty [Builder].
func NewBuilder() *Builder {
	return &Builder{
		graph:   NewGraph(),
		imports: NewImportSet(),
	}
}

// Graph returns the declaration graph.
func (b *Builder) Graph() *Graph {
	return b.graph
}

// Imports returns the import registry for the emitted file.
func (b *Builder) Imports() *ImportSet {
	return b.imports
}

// AddDefinition registers the top-level declaration for a definition schema.
// Schemas carrying both enum and enumDescriptions become enum declarations;
// object schemas become classes; everything else becomes a type alias.
func (b *Builder) AddDefinition(schema *Schema) error {
	identifier := "Unknown"
	if schema.ID != "" {
		identifier = ExtractID(schema.ID)
	}

	if schema.Enum != nil && schema.EnumDescriptions != nil {
		decl, err := b.buildEnum(identifier, schema)
		if err != nil {
			return err
		}

		return b.graph.Insert(identifier, schema, decl)
	}

	ann, class, err := b.translate(identifier, schema, true)
	if err != nil {
		return fmt.Errorf("definition %s: %w", identifier, err)
	}

	if class != nil {
		return b.graph.Insert(identifier, schema, class)
	}

	return b.graph.Insert(identifier, schema, &AliasDecl{Name: identifier, Ann: ann})
}

// buildEnum pairs each enumDescription with its enum value, in order, and
// mints a member name for every pair. All values must share one primitive
// kind.
func (b *Builder) buildEnum(identifier string, schema *Schema) (*EnumDecl, error) {
	count := len(schema.Enum)
	if len(schema.EnumDescriptions) < count {
		count = len(schema.EnumDescriptions)
	}

	decl := &EnumDecl{Name: identifier}

	var memberNames []string

	for i := 0; i < count; i++ {
		value := schema.Enum[i]

		kind, ok := literalKind(value)
		if !ok {
			return nil, fmt.Errorf("%w: enum %s has a non-scalar member", ErrUnsupportedSchema, identifier)
		}

		if i == 0 {
			decl.Base = kind
		} else if kind != decl.Base {
			return nil, fmt.Errorf("%w: enum %s mixes value types", ErrUnsupportedSchema, identifier)
		}

		name := EnumMember(schema.EnumDescriptions[i], memberNames)
		memberNames = append(memberNames, name)
		decl.Members = append(decl.Members, EnumMemberDecl{Name: name, Value: value})
	}

	return decl, nil
}

// translate converts a schema node into an annotation. Top-level object
// schemas come back as a class declaration instead; nested object schemas
// register themselves under a minted name and come back as a quoted forward
// reference.
func (b *Builder) translate(identifier string, s *Schema, topLevel bool) (*Ann, *ClassDecl, error) {
	switch s.Type {
	case "string":
		if s.Enum != nil {
			ann, err := literalUnion(s.Enum)

			return ann, nil, err
		}

		return Primitive(PrimString), nil, nil

	case "number":
		if s.Enum != nil {
			return nil, nil, fmt.Errorf("%w: enum not supported for number", ErrUnsupportedSchema)
		}

		return Primitive(PrimFloat), nil, nil

	case "integer":
		if s.Enum != nil {
			ann, err := literalUnion(s.Enum)

			return ann, nil, err
		}

		return Primitive(PrimInt), nil, nil

	case "boolean":
		if s.Enum != nil {
			ann, err := literalUnion(s.Enum)

			return ann, nil, err
		}

		return Primitive(PrimBool), nil, nil

	case "null":
		return LiteralOf(Value{Kind: ValueNull}), nil, nil

	case "object":
		return b.translateObject(identifier, s, topLevel)

	case "array":
		if s.Items != nil {
			elem, _, err := b.translate(identifier, s.Items, false)
			if err != nil {
				return nil, nil, err
			}

			return ListOf(elem), nil, nil
		}

		return ListOf(AnyAnn()), nil, nil
	}

	switch {
	case s.Const != nil:
		switch s.Const.Kind {
		case ValueString, ValueInt, ValueFloat:
			return LiteralOf(*s.Const), nil, nil
		case ValueNull, ValueBool, ValueOther:
			return nil, nil, fmt.Errorf("%w: unsupported const value", ErrUnsupportedSchema)
		}

	case s.Ref != "":
		return NamedAnn(ExtractRef(s.Ref), !topLevel), nil, nil

	case s.OneOf != nil:
		members := make([]*Ann, 0, len(s.OneOf))

		for _, item := range s.OneOf {
			member, _, err := b.translate("OneOf"+identifier, item, false)
			if err != nil {
				return nil, nil, err
			}

			members = append(members, member)
		}

		return UnionOf(members...), nil, nil
	}

	return AnyAnn(), nil, nil
}

// translateObject handles the object dispatch rows: additionalProperties
// short-circuits to a string map, properties build a class, and
// patternProperties build a value union map.
func (b *Builder) translateObject(identifier string, s *Schema, topLevel bool) (*Ann, *ClassDecl, error) {
	switch {
	case s.Properties != nil:
		if s.AdditionalProperties.True() {
			return DictOf(AnyAnn()), nil, nil
		}

		class, err := b.buildClass(identifier, s)
		if err != nil {
			return nil, nil, err
		}

		if topLevel {
			class.Name = identifier

			return nil, class, nil
		}

		name := ClassName(identifier, b.graph)
		class.Name = name

		err = b.graph.Insert(name, s, class)
		if err != nil {
			return nil, nil, err
		}

		return NamedAnn(name, true), nil, nil

	case s.PatternProperties != nil:
		members := make([]*Ann, 0, s.PatternProperties.Len())

		for _, pattern := range s.PatternProperties.Keys() {
			member, _, err := b.translate(childIdentifier(identifier, pattern), s.PatternProperties.Get(pattern), false)
			if err != nil {
				return nil, nil, err
			}

			members = append(members, member)
		}

		return DictOf(UnionOf(members...)), nil, nil
	}

	return AnyAnn(), nil, nil
}

// buildClass assembles the field list for an object schema: required
// properties first, each field minted against its already-emitted siblings,
// optional fields wrapped in Optional.
func (b *Builder) buildClass(identifier string, s *Schema) (*ClassDecl, error) {
	class := &ClassDecl{}

	var siblings []string

	for _, key := range sortRequiredFirst(s.Properties.Keys(), s.Required) {
		sub := s.Properties.Get(key)

		ann, _, err := b.translate(childIdentifier(identifier, key), sub, false)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", key, err)
		}

		name := FieldName(key, siblings)
		siblings = append(siblings, name)

		required := slices.Contains(s.Required, key)
		if !required {
			ann = OptionalOf(ann)
		}

		class.Fields = append(class.Fields, &Field{
			Name:     name,
			Key:      key,
			Ann:      ann,
			Optional: !required,
		})
	}

	return class, nil
}

// sortRequiredFirst orders property keys so that required ones come first, in
// the order the required list names them; the remainder keeps source order.
func sortRequiredFirst(keys, required []string) []string {
	ordered := make([]string, 0, len(keys))

	for _, key := range required {
		if slices.Contains(keys, key) {
			ordered = append(ordered, key)
		}
	}

	for _, key := range keys {
		if !slices.Contains(required, key) {
			ordered = append(ordered, key)
		}
	}

	return ordered
}

// childIdentifier mints the identifier a nested anonymous schema is
// translated under: the parent identifier followed by the pascal-cased key.
func childIdentifier(parent, key string) string {
	return parent + nonWord.ReplaceAllString(strcase.ToCamel(key), "")
}

func literalUnion(values []Value) (*Ann, error) {
	members := make([]*Ann, 0, len(values))

	for _, v := range values {
		if _, ok := literalKind(v); !ok {
			return nil, fmt.Errorf("%w: unsupported enum value", ErrUnsupportedSchema)
		}

		members = append(members, LiteralOf(v))
	}

	return UnionOf(members...), nil
}
