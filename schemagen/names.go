package schemagen

import (
	"regexp"
	"slices"
	"strings"

	"github.com/iancoleman/strcase"
)

// goKeywords is the reserved-word set of the emission target. Minted names
// are never allowed to collide with it.
var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true,
	"continue": true, "default": true, "defer": true, "else": true,
	"fallthrough": true, "for": true, "func": true, "go": true,
	"goto": true, "if": true, "import": true, "interface": true,
	"map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true,
	"var": true,
}

var nonWord = regexp.MustCompile(`\W`)

// FieldName mints an exported struct field name from a schema property key.
// Leading underscores are stripped, the remainder is exported in camel case,
// and underscores are appended until the name collides with neither a
// sibling nor a reserved word. Deterministic given the sibling order.
func FieldName(key string, siblings []string) string {
	trimmed := strings.TrimLeft(key, "_")

	name := strcase.ToCamel(trimmed)
	if name == "" {
		name = "Field"
	}

	for goKeywords[name] || slices.Contains(siblings, name) {
		name += "_"
	}

	return name
}

// ClassName mints a top-level type name from a candidate identifier,
// upper-casing the first character and appending underscores until the name
// is absent from the declaration graph.
func ClassName(candidate string, graph *Graph) string {
	name := exportFirst(candidate)

	for graph.Has(name) {
		name += "_"
	}

	return name
}

// EnumMember mints an enum member name from its description: pascal-cased,
// stripped of non-word characters, then de-collided against the members
// already minted and against reserved words.
func EnumMember(description string, existing []string) string {
	name := nonWord.ReplaceAllString(strcase.ToCamel(description), "")
	if name == "" {
		name = "Value"
	}

	for goKeywords[name] || slices.Contains(existing, name) {
		name += "_"
	}

	return name
}
