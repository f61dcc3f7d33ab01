package schemagen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldName(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		key      string
		siblings []string
		want     string
	}{
		"plain key": {
			key:  "name",
			want: "Name",
		},
		"leading underscore stripped": {
			key:  "_class",
			want: "Class",
		},
		"multiple leading underscores stripped": {
			key:  "__ref",
			want: "Ref",
		},
		"snake case key": {
			key:  "do_objectID",
			want: "DoObjectID",
		},
		"sibling collision": {
			key:      "class",
			siblings: []string{"Class"},
			want:     "Class_",
		},
		"repeated collision": {
			key:      "class",
			siblings: []string{"Class", "Class_"},
			want:     "Class__",
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, FieldName(tc.key, tc.siblings))
		})
	}
}

// Minting is idempotent: a minted name maps to itself when re-minted against
// the same siblings minus itself.
func TestFieldNameSoundness(t *testing.T) {
	t.Parallel()

	keys := []string{"_class", "class", "Class", "do_objectID", "frame", "__frame"}

	var siblings []string
	for _, key := range keys {
		siblings = append(siblings, FieldName(key, siblings))
	}

	for i, name := range siblings {
		others := make([]string, 0, len(siblings)-1)
		others = append(others, siblings[:i]...)

		assert.Equal(t, name, FieldName(keys[i], others))

		for j, other := range siblings {
			if i != j {
				require.NotEqual(t, name, other)
			}
		}
	}
}

func TestClassName(t *testing.T) {
	t.Parallel()

	graph := NewGraph()
	require.NoError(t, graph.Insert("Foo", nil, &AliasDecl{Name: "Foo"}))

	assert.Equal(t, "Bar", ClassName("bar", graph))
	assert.Equal(t, "Foo_", ClassName("foo", graph))
	assert.Equal(t, "Foo_", ClassName("Foo", graph))
}

func TestEnumMember(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DarkMode", EnumMember("dark mode", nil))
	assert.Equal(t, "SymbolMaster", EnumMember("symbolMaster", nil))
	assert.Equal(t, "None_", EnumMember("none", []string{"None"}))
	assert.Equal(t, "Value", EnumMember("***", nil))
}
