package schemagen

import (
	"bytes"
	"fmt"
	"go/format"
)

// Hook appends a block of source text to the emitted file. Hooks let the
// orchestrator place companion declarations around the generated types
// without the emitter knowing about them.
type Hook func(buf *bytes.Buffer)

// Emitter assembles the declaration graph into a single gofmt-formatted
// source file. Given identical inputs the output is byte-identical.
type Emitter struct {
	// Package is the package clause of the emitted file.
	Package string
	// BeforeImports runs before the import block.
	BeforeImports Hook
	// BeforeDecls runs between the import block and the declarations.
	BeforeDecls Hook
	// AfterDecls runs after the declarations.
	AfterDecls Hook
}

// Emit renders the file. The whole document is assembled and formatted in
// memory; nothing is produced on error.
func (e *Emitter) Emit(graph *Graph, imports *ImportSet) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("// Code generated by sketchgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", e.Package)

	if e.BeforeImports != nil {
		e.BeforeImports(&buf)
	}

	if paths := imports.Paths(); len(paths) > 0 {
		buf.WriteString("import (\n")

		for _, path := range paths {
			fmt.Fprintf(&buf, "\t%q\n", path)
		}

		buf.WriteString(")\n\n")
	}

	if e.BeforeDecls != nil {
		e.BeforeDecls(&buf)
	}

	for _, id := range graph.Identifiers() {
		err := writeDecl(&buf, graph.Decl(id))
		if err != nil {
			return nil, fmt.Errorf("declaration %s: %w", id, err)
		}
	}

	if e.AfterDecls != nil {
		e.AfterDecls(&buf)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmitFailed, err)
	}

	return formatted, nil
}

func writeDecl(buf *bytes.Buffer, decl Decl) error {
	switch d := decl.(type) {
	case *AliasDecl:
		return writeAlias(buf, d)
	case *EnumDecl:
		return writeEnum(buf, d)
	case *ClassDecl:
		return writeClass(buf, d)
	}

	return fmt.Errorf("%w: unknown declaration kind", ErrEmitFailed)
}

// writeAlias emits a type alias. A union of string literals surfaces as a
// defined type with one constant per member, the way Go code spells string
// enums; every other annotation aliases its rendered type.
func writeAlias(buf *bytes.Buffer, d *AliasDecl) error {
	if d.Ann.Kind == AnnUnion {
		if kind, ok := d.Ann.LiteralPrim(); ok && kind == PrimString {
			return writeLiteralEnum(buf, d)
		}
	}

	fmt.Fprintf(buf, "type %s = %s\n\n", d.Name, d.Ann.GoType())

	return nil
}

func writeLiteralEnum(buf *bytes.Buffer, d *AliasDecl) error {
	fmt.Fprintf(buf, "type %s string\n\n", d.Name)
	buf.WriteString("const (\n")

	var members []string

	for _, elem := range d.Ann.Elems {
		member := EnumMember(elem.Lit.Str, members)
		members = append(members, member)

		lit, err := elem.Lit.GoLiteral()
		if err != nil {
			return err
		}

		fmt.Fprintf(buf, "\t%s%s %s = %s\n", d.Name, member, d.Name, lit)
	}

	buf.WriteString(")\n\n")

	return nil
}

func writeEnum(buf *bytes.Buffer, d *EnumDecl) error {
	fmt.Fprintf(buf, "type %s %s\n\n", d.Name, d.Base.GoType())

	if len(d.Members) == 0 {
		return nil
	}

	buf.WriteString("const (\n")

	for _, member := range d.Members {
		lit, err := member.Value.GoLiteral()
		if err != nil {
			return err
		}

		fmt.Fprintf(buf, "\t%s%s %s = %s\n", d.Name, member.Name, d.Name, lit)
	}

	buf.WriteString(")\n\n")

	return nil
}

func writeClass(buf *bytes.Buffer, d *ClassDecl) error {
	fmt.Fprintf(buf, "type %s struct {\n", d.Name)

	for _, field := range d.Fields {
		fmt.Fprintf(buf, "\t%s %s %s\n", field.Name, field.Ann.GoType(), field.Tag())
	}

	buf.WriteString("}\n\n")

	return writeClassDecoder(buf, d)
}

// writeClassDecoder emits an UnmarshalJSON method for classes that carry
// decoder-injected fields, re-dispatching those fields through toObject
// after the plain decode.
func writeClassDecoder(buf *bytes.Buffer, d *ClassDecl) error {
	decoded := false

	for _, field := range d.Fields {
		if field.Decode != DecodeNone {
			decoded = true

			break
		}
	}

	if !decoded {
		return nil
	}

	fmt.Fprintf(buf, "func (v *%s) UnmarshalJSON(data []byte) error {\n", d.Name)
	fmt.Fprintf(buf, "\ttype plain %s\n", d.Name)
	buf.WriteString("\tvar p plain\n")
	buf.WriteString("\tif err := json.Unmarshal(data, &p); err != nil {\n\t\treturn err\n\t}\n")
	fmt.Fprintf(buf, "\t*v = %s(p)\n", d.Name)

	for _, field := range d.Fields {
		switch field.Decode {
		case DecodeObject:
			fmt.Fprintf(buf, "\tv.%s = toObject(v.%s)\n", field.Name, field.Name)
		case DecodeObjectList:
			fmt.Fprintf(buf, "\tv.%s = toObjectList(v.%s)\n", field.Name, field.Name)
		case DecodeNone:
		}
	}

	buf.WriteString("\treturn nil\n}\n\n")

	return nil
}
