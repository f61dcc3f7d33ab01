// Package sketchfile reads and writes packaged Sketch files: zip containers
// whose members are JSON documents.
//
// On read, the page references in document.json are expanded into inline
// page objects; on write they are collapsed back into file references and
// each page lands in its own pages/<uuid>.json member.
package sketchfile

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ErrInvalidFile indicates a packaged file the reader cannot accept: not a
// zip archive, a missing or malformed document.json, or a missing page
// member.
var ErrInvalidFile = errors.New("invalid sketch file")

// FileRef is the collapsed form of a page inside document.json.
type FileRef struct {
	Class    string `json:"_class"`
	Ref      string `json:"_ref"`
	RefClass string `json:"_ref_class"`
}

// Reference kinds used by page refs.
const (
	refClass     = "MSJSONFileReference"
	pageRefClass = "MSImmutablePage"
)

// Contents is the expanded payload of a packaged file.
type Contents struct {
	// Document is document.json with its pages expanded inline.
	Document map[string]any
	// Meta is meta.json.
	Meta map[string]any
	// User is user.json.
	User map[string]any
	// Workspace maps each workspace/<name>.json member to its decoded
	// value, keyed by name without extension.
	Workspace map[string]any
}

// Pages returns the expanded page objects of the document.
func (c *Contents) Pages() []map[string]any {
	raw, _ := c.Document["pages"].([]any)

	pages := make([]map[string]any, 0, len(raw))

	for _, entry := range raw {
		if page, ok := entry.(map[string]any); ok {
			pages = append(pages, page)
		}
	}

	return pages
}

// File is a packaged Sketch file bound to a path on disk.
type File struct {
	Path     string
	Contents Contents
}

// ObjectID derives a stable identifier for the file by folding the UUIDs of
// all pages together.
func (f *File) ObjectID() (string, error) {
	var combined uuid.UUID

	for _, page := range f.Contents.Pages() {
		id, err := pageObjectID(page)
		if err != nil {
			return "", err
		}

		parsed, err := uuid.Parse(id)
		if err != nil {
			return "", fmt.Errorf("%w: page id %q: %w", ErrInvalidFile, id, err)
		}

		for i := range combined {
			combined[i] ^= parsed[i]
		}
	}

	return strings.ToUpper(strings.ReplaceAll(combined.String(), "-", "")), nil
}

func pageObjectID(page map[string]any) (string, error) {
	id, ok := page["do_objectID"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: page missing do_objectID", ErrInvalidFile)
	}

	return id, nil
}

// FromFile loads a packaged file, expanding every page reference into its
// inline page object.
func FromFile(filePath string) (*File, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, filePath, err)
	}
	defer func() { _ = reader.Close() }()

	document, err := readJSONMember(&reader.Reader, "document.json")
	if err != nil {
		return nil, err
	}

	err = expandPages(&reader.Reader, document)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	meta, err := readJSONMember(&reader.Reader, "meta.json")
	if err != nil {
		return nil, err
	}

	user, err := readJSONMember(&reader.Reader, "user.json")
	if err != nil {
		return nil, err
	}

	workspace, err := readWorkspace(&reader.Reader)
	if err != nil {
		return nil, err
	}

	return &File{
		Path: filePath,
		Contents: Contents{
			Document:  document,
			Meta:      meta,
			User:      user,
			Workspace: workspace,
		},
	}, nil
}

// expandPages replaces each {_class: MSJSONFileReference} entry of the
// document's pages list with the decoded pages/<uuid>.json member it points
// at.
func expandPages(reader *zip.Reader, document map[string]any) error {
	rawPages, ok := document["pages"].([]any)
	if !ok {
		return fmt.Errorf("%w: document.json pages is not a list", ErrInvalidFile)
	}

	pages := make([]any, 0, len(rawPages))

	for _, entry := range rawPages {
		ref, ok := entry.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: document.json page entry is not a reference", ErrInvalidFile)
		}

		target, ok := ref["_ref"].(string)
		if !ok {
			return fmt.Errorf("%w: document.json page entry has no _ref", ErrInvalidFile)
		}

		page, err := readJSONMember(reader, target+".json")
		if err != nil {
			return err
		}

		pages = append(pages, page)
	}

	document["pages"] = pages

	return nil
}

func readWorkspace(reader *zip.Reader) (map[string]any, error) {
	workspace := make(map[string]any)

	for _, member := range reader.File {
		name := member.Name
		if !strings.HasPrefix(name, "workspace/") || !strings.HasSuffix(name, ".json") {
			continue
		}

		value, err := decodeMember(member)
		if err != nil {
			return nil, err
		}

		key := strings.TrimSuffix(path.Base(name), ".json")
		workspace[key] = value
	}

	return workspace, nil
}

func readJSONMember(reader *zip.Reader, name string) (map[string]any, error) {
	f, err := reader.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidFile, name)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, name, err)
	}

	var value map[string]any

	err = json.Unmarshal(data, &value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, name, err)
	}

	return value, nil
}

func decodeMember(member *zip.File) (any, error) {
	f, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, member.Name, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, member.Name, err)
	}

	var value any

	err = json.Unmarshal(data, &value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, member.Name, err)
	}

	return value, nil
}

type writeOptions struct {
	keepStaticFiles bool
}

// WriteOption configures [File.Write].
type WriteOption func(*writeOptions)

// WithKeepStaticFiles copies every member of the previous archive whose name
// is not produced by this write, preserving embedded static assets such as
// bitmaps and previews.
func WithKeepStaticFiles(keep bool) WriteOption {
	return func(o *writeOptions) {
		o.keepStaticFiles = keep
	}
}

// Write saves the file to filePath, or to its own path when filePath is
// empty. Pages are collapsed back into references and written as individual
// members. The archive is assembled in memory and written once.
func (f *File) Write(filePath string, opts ...WriteOption) error {
	var options writeOptions

	for _, opt := range opts {
		opt(&options)
	}

	if filePath == "" {
		filePath = f.Path
	}

	var previous map[string][]byte

	if options.keepStaticFiles {
		loaded, err := readArchiveMembers(f.Path)
		if err != nil {
			return err
		}

		previous = loaded
	}

	var buf bytes.Buffer

	err := f.writeArchive(&buf, previous)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(filePath), 0o755)
	if err != nil {
		return fmt.Errorf("write %s: %w", filePath, err)
	}

	err = os.WriteFile(filePath, buf.Bytes(), 0o644) //nolint:gosec // Documents are not secrets.
	if err != nil {
		return fmt.Errorf("write %s: %w", filePath, err)
	}

	return nil
}

func (f *File) writeArchive(w io.Writer, previous map[string][]byte) error {
	archive := zip.NewWriter(w)
	written := make(map[string]bool)

	add := func(name string, data []byte) error {
		member, err := archive.Create(name)
		if err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}

		_, err = member.Write(data)
		if err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}

		written[name] = true

		return nil
	}

	addJSON := func(name string, value any) error {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}

		return add(name, data)
	}

	refs := make([]any, 0, len(f.Contents.Pages()))

	for _, page := range f.Contents.Pages() {
		id, err := pageObjectID(page)
		if err != nil {
			return err
		}

		err = addJSON(path.Join("pages", id+".json"), page)
		if err != nil {
			return err
		}

		refs = append(refs, FileRef{
			Class:    refClass,
			Ref:      path.Join("pages", id),
			RefClass: pageRefClass,
		})
	}

	for _, key := range sortedKeys(f.Contents.Workspace) {
		err := addJSON(path.Join("workspace", key+".json"), f.Contents.Workspace[key])
		if err != nil {
			return err
		}
	}

	document := make(map[string]any, len(f.Contents.Document))

	for k, v := range f.Contents.Document {
		document[k] = v
	}

	document["pages"] = refs

	err := addJSON("document.json", document)
	if err != nil {
		return err
	}

	err = addJSON("user.json", f.Contents.User)
	if err != nil {
		return err
	}

	err = addJSON("meta.json", f.Contents.Meta)
	if err != nil {
		return err
	}

	for _, name := range sortedKeys(previous) {
		if written[name] {
			continue
		}

		err = add(name, previous[name])
		if err != nil {
			return err
		}
	}

	return archive.Close()
}

// readArchiveMembers loads every member of an existing archive into memory.
// A missing archive yields no members.
func readArchiveMembers(filePath string) (map[string][]byte, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, filePath, err)
	}
	defer func() { _ = reader.Close() }()

	members := make(map[string][]byte)

	for _, member := range reader.File {
		f, err := member.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, member.Name, err)
		}

		data, err := io.ReadAll(f)
		_ = f.Close()

		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, member.Name, err)
		}

		members[member.Name] = data
	}

	return members, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
