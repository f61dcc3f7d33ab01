package sketchfile_test

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchdoc/sketchdoc/sketchfile"
)

const (
	pageOneID = "628BBFA8-404C-48D5-95B0-3316C1E39FB0"
	pageTwoID = "D1FFDD39-4D43-41F7-9CAB-B68C82C91C4E"
)

func testPage(id, layerName string) map[string]any {
	return map[string]any{
		"_class":      "page",
		"do_objectID": id,
		"name":        "Page " + layerName,
		"layers": []any{
			map[string]any{
				"_class": "rectangle",
				"name":   layerName,
			},
		},
	}
}

func testFile(path string) *sketchfile.File {
	return &sketchfile.File{
		Path: path,
		Contents: sketchfile.Contents{
			Document: map[string]any{
				"_class": "document",
				"pages":  []any{testPage(pageOneID, "one"), testPage(pageTwoID, "two")},
			},
			Meta: map[string]any{"version": float64(136)},
			User: map[string]any{
				"document": map[string]any{"pageListHeight": 87.5},
			},
			Workspace: map[string]any{
				"one":   "string",
				"two":   []any{float64(1), float64(2), float64(3)},
				"three": map[string]any{"a": true, "b": []any{"foo", "bar", "baz"}},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "generated.sketch")

	require.NoError(t, testFile(path).Write(""))

	file, err := sketchfile.FromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "document", file.Contents.Document["_class"])
	assert.Equal(t, float64(136), file.Contents.Meta["version"])

	user, ok := file.Contents.User["document"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 87.5, user["pageListHeight"], 0)

	pages := file.Contents.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, pageOneID, pages[0]["do_objectID"])
	assert.Equal(t, pageTwoID, pages[1]["do_objectID"])
	assert.Equal(t, "page", pages[0]["_class"])

	layers, ok := pages[0]["layers"].([]any)
	require.True(t, ok)

	layer, ok := layers[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "one", layer["name"])

	workspace := file.Contents.Workspace
	require.Len(t, workspace, 3)
	assert.Equal(t, "string", workspace["one"])

	two, ok := workspace["two"].([]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), two[1])

	three, ok := workspace["three"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, three["a"])
}

func TestWriteCollapsesPages(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "generated.sketch")

	require.NoError(t, testFile(path).Write(""))

	reader, err := zip.OpenReader(path)
	require.NoError(t, err)

	defer func() { _ = reader.Close() }()

	names := make(map[string]bool)
	for _, member := range reader.File {
		names[member.Name] = true
	}

	assert.True(t, names["document.json"])
	assert.True(t, names["meta.json"])
	assert.True(t, names["user.json"])
	assert.True(t, names["pages/"+pageOneID+".json"])
	assert.True(t, names["pages/"+pageTwoID+".json"])
	assert.True(t, names["workspace/one.json"])

	document, err := reader.Open("document.json")
	require.NoError(t, err)

	defer func() { _ = document.Close() }()

	data, err := io.ReadAll(document)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"_ref":"pages/`+pageOneID+`"`)
	assert.Contains(t, string(data), `"_ref_class":"MSImmutablePage"`)
}

func TestWriteKeepStaticFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	original := filepath.Join(dir, "original.sketch")

	file := testFile(original)
	require.NoError(t, file.Write(""))

	// Add a static member the model does not know about.
	appendMember(t, original, "previews/preview.png", []byte("png-bytes"))

	loaded, err := sketchfile.FromFile(original)
	require.NoError(t, err)

	kept := filepath.Join(dir, "kept.sketch")
	require.NoError(t, loaded.Write(kept, sketchfile.WithKeepStaticFiles(true)))

	reader, err := zip.OpenReader(kept)
	require.NoError(t, err)

	defer func() { _ = reader.Close() }()

	found := false
	for _, member := range reader.File {
		if member.Name == "previews/preview.png" {
			found = true
		}
	}

	assert.True(t, found)

	dropped := filepath.Join(dir, "dropped.sketch")
	require.NoError(t, loaded.Write(dropped))

	reader2, err := zip.OpenReader(dropped)
	require.NoError(t, err)

	defer func() { _ = reader2.Close() }()

	for _, member := range reader2.File {
		assert.NotEqual(t, "previews/preview.png", member.Name)
	}
}

// appendMember rewrites the archive with one extra member.
func appendMember(t *testing.T, path, name string, data []byte) {
	t.Helper()

	reader, err := zip.OpenReader(path)
	require.NoError(t, err)

	var members []*zip.File

	members = append(members, reader.File...)

	tmp := path + ".tmp"

	out, err := os.Create(tmp)
	require.NoError(t, err)

	writer := zip.NewWriter(out)

	for _, member := range members {
		w, err := writer.Create(member.Name)
		require.NoError(t, err)

		r, err := member.Open()
		require.NoError(t, err)

		buf, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())

		_, err = w.Write(buf)
		require.NoError(t, err)
	}

	w, err := writer.Create(name)
	require.NoError(t, err)

	_, err = w.Write(data)
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	require.NoError(t, out.Close())
	require.NoError(t, reader.Close())
	require.NoError(t, os.Rename(tmp, path))
}

func TestObjectID(t *testing.T) {
	t.Parallel()

	single := &sketchfile.File{
		Contents: sketchfile.Contents{
			Document: map[string]any{
				"pages": []any{testPage(pageOneID, "one")},
			},
		},
	}

	id, err := single.ObjectID()
	require.NoError(t, err)
	assert.Equal(t, "628BBFA8404C48D595B03316C1E39FB0", id)

	both := testFile("")

	first, err := both.ObjectID()
	require.NoError(t, err)

	second, err := both.ObjectID()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
}

func TestFromFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := sketchfile.FromFile(filepath.Join(dir, "absent.sketch"))
		require.ErrorIs(t, err, sketchfile.ErrInvalidFile)
	})

	t.Run("not a zip", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "not-a-zip.sketch")
		require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

		_, err := sketchfile.FromFile(path)
		require.ErrorIs(t, err, sketchfile.ErrInvalidFile)
	})

	t.Run("missing document", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "no-document.sketch")
		writeZip(t, path, map[string]string{"meta.json": "{}"})

		_, err := sketchfile.FromFile(path)
		require.ErrorIs(t, err, sketchfile.ErrInvalidFile)
	})

	t.Run("pages not a list", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "bad-pages.sketch")
		writeZip(t, path, map[string]string{
			"document.json": `{"pages": "nope"}`,
			"meta.json":     "{}",
			"user.json":     "{}",
		})

		_, err := sketchfile.FromFile(path)
		require.ErrorIs(t, err, sketchfile.ErrInvalidFile)
	})

	t.Run("missing page member", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "missing-page.sketch")
		writeZip(t, path, map[string]string{
			"document.json": `{"pages": [{"_class": "MSJSONFileReference", "_ref_class": "MSImmutablePage", "_ref": "pages/DEAD"}]}`,
			"meta.json":     "{}",
			"user.json":     "{}",
		})

		_, err := sketchfile.FromFile(path)
		require.ErrorIs(t, err, sketchfile.ErrInvalidFile)
	})
}

func TestWritePageWithoutIDFails(t *testing.T) {
	t.Parallel()

	file := &sketchfile.File{
		Path: filepath.Join(t.TempDir(), "broken.sketch"),
		Contents: sketchfile.Contents{
			Document: map[string]any{
				"pages": []any{map[string]any{"_class": "page"}},
			},
		},
	}

	require.ErrorIs(t, file.Write(""), sketchfile.ErrInvalidFile)
}

func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()

	out, err := os.Create(path)
	require.NoError(t, err)

	writer := zip.NewWriter(out)

	for name, content := range members {
		w, err := writer.Create(name)
		require.NoError(t, err)

		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	require.NoError(t, out.Close())
}
