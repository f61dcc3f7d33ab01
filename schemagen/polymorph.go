package schemagen

import "sort"

// ClassTable is the discriminator table: every non-empty _class constant
// found in the definitions, bound to the identifier of the class that
// declared it. The first definition to claim a constant wins.
type ClassTable struct {
	keys    []string
	classes map[string]string
}

// BuildClassTable scans the definitions in insertion order and collects the
// discriminator bindings.
func BuildClassTable(definitions *SchemaMap) *ClassTable {
	table := &ClassTable{classes: make(map[string]string)}

	for _, key := range definitions.Keys() {
		schema := definitions.Get(key)

		class := schema.ClassConst()
		if class == "" || schema.ID == "" {
			continue
		}

		if _, ok := table.classes[class]; ok {
			continue
		}

		table.keys = append(table.keys, class)
		table.classes[class] = ExtractID(schema.ID)
	}

	return table
}

// Len returns the number of bindings.
func (t *ClassTable) Len() int {
	return len(t.keys)
}

// Keys returns every discriminator constant, sorted, for deterministic
// emission.
func (t *ClassTable) Keys() []string {
	keys := make([]string, len(t.keys))
	copy(keys, t.keys)
	sort.Strings(keys)

	return keys
}

// Class returns the class identifier bound to the discriminator constant.
func (t *ClassTable) Class(key string) string {
	return t.classes[key]
}

// Values returns every distinct discriminator constant, sorted. Used to
// synthesize the ClassValue enum schema.
func (t *ClassTable) Values() []string {
	return t.Keys()
}

// InjectDecoders walks every class declaration in the graph and attaches a
// decode mode to each field whose annotation carries a union of objects,
// directly, inside Optional, or inside List. Fields already decoded are left
// alone.
func InjectDecoders(graph *Graph) bool {
	injected := false

	for _, class := range graph.Classes() {
		for _, field := range class.Fields {
			switch field.Ann.ObjectUnionShape() {
			case UnionDirect, OptionalUnion:
				field.Decode = DecodeObject
				injected = true
			case ListUnion:
				field.Decode = DecodeObjectList
				injected = true
			case NotUnion:
			}
		}
	}

	return injected
}
