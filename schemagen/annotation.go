package schemagen

import "strings"

// PrimKind identifies a primitive annotation type.
type PrimKind int

const (
	// PrimString renders as string.
	PrimString PrimKind = iota
	// PrimFloat renders as float64.
	PrimFloat
	// PrimInt renders as int.
	PrimInt
	// PrimBool renders as bool.
	PrimBool
)

// GoType returns the Go spelling of the primitive.
func (p PrimKind) GoType() string {
	switch p {
	case PrimString:
		return "string"
	case PrimFloat:
		return "float64"
	case PrimInt:
		return "int"
	case PrimBool:
		return "bool"
	}

	return "any"
}

// AnnKind discriminates the annotation sum.
type AnnKind int

const (
	// AnnPrimitive is a bare primitive type.
	AnnPrimitive AnnKind = iota
	// AnnLiteral is a single literal value.
	AnnLiteral
	// AnnUnion is a union of annotations.
	AnnUnion
	// AnnOptional marks a value that may be absent.
	AnnOptional
	// AnnList is a homogeneous array.
	AnnList
	// AnnDict is a string-keyed mapping.
	AnnDict
	// AnnAny is the unconstrained type.
	AnnAny
	// AnnNamed references a top-level declaration by identifier.
	AnnNamed
)

// Ann is an annotation node: the typed intermediate form a schema translates
// into before emission.
type Ann struct {
	Kind  AnnKind
	Prim  PrimKind // AnnPrimitive
	Lit   Value    // AnnLiteral
	Elems []*Ann   // AnnUnion members
	Elem  *Ann     // AnnOptional, AnnList, AnnDict value
	Name  string   // AnnNamed identifier
	// Quoted marks a forward reference: the named declaration is used before
	// it is registered. Go needs no textual quoting for this, so the flag
	// only documents reference direction and is exercised by tests.
	Quoted bool
}

// Primitive builds a primitive annotation.
func Primitive(p PrimKind) *Ann {
	return &Ann{Kind: AnnPrimitive, Prim: p}
}

// LiteralOf builds a literal annotation.
func LiteralOf(v Value) *Ann {
	return &Ann{Kind: AnnLiteral, Lit: v}
}

// UnionOf builds a union annotation. A single-member union collapses to the
// member itself.
func UnionOf(elems ...*Ann) *Ann {
	if len(elems) == 1 {
		return elems[0]
	}

	return &Ann{Kind: AnnUnion, Elems: elems}
}

// OptionalOf wraps an annotation as optional. Wrapping is idempotent.
func OptionalOf(elem *Ann) *Ann {
	if elem.Kind == AnnOptional {
		return elem
	}

	return &Ann{Kind: AnnOptional, Elem: elem}
}

// ListOf builds an array annotation.
func ListOf(elem *Ann) *Ann {
	return &Ann{Kind: AnnList, Elem: elem}
}

// DictOf builds a string-keyed mapping annotation.
func DictOf(value *Ann) *Ann {
	return &Ann{Kind: AnnDict, Elem: value}
}

// AnyAnn builds the unconstrained annotation.
func AnyAnn() *Ann {
	return &Ann{Kind: AnnAny}
}

// NamedAnn builds a reference to a top-level declaration. quoted marks a
// forward reference.
func NamedAnn(name string, quoted bool) *Ann {
	return &Ann{Kind: AnnNamed, Name: name, Quoted: quoted}
}

// LiteralPrim reports the common primitive kind when every member of a union
// is a literal of that kind. It also accepts a single literal.
func (a *Ann) LiteralPrim() (PrimKind, bool) {
	switch a.Kind {
	case AnnLiteral:
		return literalKind(a.Lit)
	case AnnUnion:
		var (
			kind  PrimKind
			found bool
		)

		for _, elem := range a.Elems {
			if elem.Kind != AnnLiteral {
				return 0, false
			}

			k, ok := literalKind(elem.Lit)
			if !ok {
				return 0, false
			}

			if found && k != kind {
				return 0, false
			}

			kind = k
			found = true
		}

		return kind, found
	case AnnPrimitive, AnnOptional, AnnList, AnnDict, AnnAny, AnnNamed:
	}

	return 0, false
}

func literalKind(v Value) (PrimKind, bool) {
	switch v.Kind {
	case ValueString:
		return PrimString, true
	case ValueInt:
		return PrimInt, true
	case ValueFloat:
		return PrimFloat, true
	case ValueBool:
		return PrimBool, true
	case ValueNull, ValueOther:
	}

	return 0, false
}

// GoType renders the annotation as a Go type expression. Unions that cannot
// be narrowed to a single primitive render as any and rely on runtime
// dispatch by the generated class map.
func (a *Ann) GoType() string {
	switch a.Kind {
	case AnnPrimitive:
		return a.Prim.GoType()
	case AnnLiteral:
		if kind, ok := a.LiteralPrim(); ok {
			return kind.GoType()
		}

		return "any"
	case AnnUnion:
		if kind, ok := a.LiteralPrim(); ok {
			return kind.GoType()
		}

		return "any"
	case AnnOptional:
		inner := a.Elem.GoType()
		if strings.HasPrefix(inner, "[]") || strings.HasPrefix(inner, "map[") || inner == "any" {
			return inner
		}

		return "*" + inner
	case AnnList:
		return "[]" + a.Elem.GoType()
	case AnnDict:
		return "map[string]" + a.Elem.GoType()
	case AnnAny:
		return "any"
	case AnnNamed:
		return a.Name
	}

	return "any"
}

// UnionShape classifies how a field annotation carries a union of objects.
type UnionShape int

const (
	// NotUnion means no object union is present.
	NotUnion UnionShape = iota
	// UnionDirect is a bare union annotation.
	UnionDirect
	// ListUnion is an array whose items are a union.
	ListUnion
	// OptionalUnion is an optional wrapping a union.
	OptionalUnion
)

// ObjectUnionShape classifies the annotation for decoder injection. Only
// unions that render as any participate: a union of literals collapses to a
// primitive and needs no runtime dispatch.
func (a *Ann) ObjectUnionShape() UnionShape {
	if a.isObjectUnion() {
		return UnionDirect
	}

	if a.Kind == AnnList && a.Elem.isObjectUnion() {
		return ListUnion
	}

	if a.Kind == AnnOptional && a.Elem.isObjectUnion() {
		return OptionalUnion
	}

	return NotUnion
}

func (a *Ann) isObjectUnion() bool {
	if a.Kind != AnnUnion {
		return false
	}

	_, literal := a.LiteralPrim()

	return !literal
}
