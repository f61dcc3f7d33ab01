// Package stringtest builds multi-line expected strings for tests.
package stringtest

import "strings"

// Input dedents a raw-string test fixture: a single leading and trailing
// newline is stripped, the common leading indentation of the remaining lines
// is removed, and whitespace-only lines become empty.
//
// Example:
//
//	src := stringtest.Input(`
//	    key: value
//	    nested:
//	      child: data`)
//	// -> "key: value\nnested:\n  child: data"
func Input(s string) string {
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "\n")

	lines := strings.Split(s, "\n")

	indent := -1

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		width := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || width < indent {
			indent = width
		}
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""

			continue
		}

		if indent > 0 && len(line) >= indent {
			lines[i] = line[indent:]
		}
	}

	return strings.Join(lines, "\n")
}

// JoinLF joins multiple strings with LF line endings. Use this to construct
// expected test output, such as generated source snippets, with explicit
// line endings.
//
// Example:
//
//	want := stringtest.JoinLF(
//		"type Foo struct {",
//		"}",
//	) // -> "type Foo struct {\n}"
func JoinLF(ss ...string) string {
	var sb strings.Builder
	for i, s := range ss {
		if i > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString(s)
	}

	return sb.String()
}
