package schemagen

// ImportSet tracks the import paths the emitted file requires. Requires are
// idempotent and emission order is insertion order, so identical inputs
// always produce an identical import block.
type ImportSet struct {
	paths []string
	seen  map[string]bool
}

// NewImportSet creates an empty [ImportSet].
func NewImportSet() *ImportSet {
	return &ImportSet{seen: make(map[string]bool)}
}

// Require records that the emitted file imports path.
func (s *ImportSet) Require(path string) {
	if s.seen[path] {
		return
	}

	s.seen[path] = true
	s.paths = append(s.paths, path)
}

// Paths returns the required import paths in insertion order.
func (s *ImportSet) Paths() []string {
	return s.paths
}

// jsonImportPath is the serialization package the generated file depends on
// for polymorphic decoding.
const jsonImportPath = "github.com/goccy/go-json"
