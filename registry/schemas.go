package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sketchdoc/sketchdoc/schemagen"
)

// Schemas is the bundle of schema documents a schema package ships, plus the
// document version list extracted from the meta schema.
type Schemas struct {
	// Version is the current document version: the last entry of Versions,
	// or 0 when the meta schema lists none.
	Version int64
	// Versions lists every document version the schemas cover.
	Versions []int64

	Document   *schemagen.Schema
	FileFormat *schemagen.Schema
	Meta       *schemagen.Schema
	Page       *schemagen.Schema
	User       *schemagen.Schema
}

// Bundle adapts the loaded documents for generation.
func (s *Schemas) Bundle() schemagen.Bundle {
	return schemagen.Bundle{
		Document:   s.Document,
		FileFormat: s.FileFormat,
		Meta:       s.Meta,
		User:       s.User,
	}
}

// LoadSchemas reads the five schema documents from an unpacked package
// directory.
func LoadSchemas(dir string) (*Schemas, error) {
	schemas := &Schemas{}

	for _, entry := range []struct {
		name   string
		target **schemagen.Schema
	}{
		{"document.schema.json", &schemas.Document},
		{"file-format.schema.json", &schemas.FileFormat},
		{"meta.schema.json", &schemas.Meta},
		{"page.schema.json", &schemas.Page},
		{"user.schema.json", &schemas.User},
	} {
		schema, err := loadSchema(filepath.Join(dir, "dist", entry.name))
		if err != nil {
			return nil, err
		}

		*entry.target = schema
	}

	schemas.Versions = metaVersions(schemas.Meta)
	if len(schemas.Versions) > 0 {
		schemas.Version = schemas.Versions[len(schemas.Versions)-1]
	}

	return schemas, nil
}

func loadSchema(path string) (*schemagen.Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is rooted in the unpacked package directory.
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}

	schema, err := schemagen.ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArchive, filepath.Base(path), err)
	}

	return schema, nil
}

// metaVersions pulls the version enum out of the meta schema's version
// property.
func metaVersions(meta *schemagen.Schema) []int64 {
	if meta == nil || meta.Properties == nil {
		return nil
	}

	version := meta.Properties.Get("version")
	if version == nil {
		return nil
	}

	var versions []int64

	for _, v := range version.Enum {
		if v.Kind == schemagen.ValueInt {
			versions = append(versions, v.Int)
		}
	}

	return versions
}
