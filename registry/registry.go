// Package registry fetches a schema package from an npm-style registry and
// exposes the JSON Schema documents it carries.
package registry

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// Sentinel errors returned by the fetcher.
var (
	// ErrFetch indicates a registry or download failure.
	ErrFetch = errors.New("fetch package")
	// ErrUnknownVersion indicates a version or dist-tag the registry does
	// not know.
	ErrUnknownVersion = errors.New("unknown version")
	// ErrInvalidArchive indicates a tarball that cannot be unpacked or is
	// missing expected members.
	ErrInvalidArchive = errors.New("invalid archive")
)

// Dist describes one published tarball.
type Dist struct {
	Shasum  string `json:"shasum"`
	Tarball string `json:"tarball"`
}

// VersionInfo describes one published version of a package.
type VersionInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Dist    Dist   `json:"dist"`
}

// Package is the registry document for a package.
type Package struct {
	Name     string                 `json:"name"`
	DistTags map[string]string      `json:"dist-tags"`
	Versions map[string]VersionInfo `json:"versions"`
}

// FetchPackage retrieves the registry document for name. A non-200 response
// is a fetch error; no retries are attempted.
func FetchPackage(ctx context.Context, client *http.Client, registryURL, name string) (*Package, error) {
	url := strings.TrimSuffix(registryURL, "/") + "/" + name

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s %s", ErrFetch, resp.Status, url)
	}

	var pkg Package

	err = json.NewDecoder(resp.Body).Decode(&pkg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	return &pkg, nil
}

// ResolveVersion maps a dist-tag to its version when the tag is known, and
// otherwise treats the argument as a literal version. The result must be a
// published version.
func (p *Package) ResolveVersion(tag string) (string, error) {
	version := tag
	if resolved, ok := p.DistTags[tag]; ok {
		version = resolved
	}

	if _, ok := p.Versions[version]; !ok {
		return "", fmt.Errorf("%w: %s@%s", ErrUnknownVersion, p.Name, tag)
	}

	return version, nil
}

// WithTarball downloads and unpacks the tarball for version into a temporary
// directory and invokes fn with the unpacked package directory. The
// temporary directory is removed on every exit path.
func WithTarball(ctx context.Context, client *http.Client, p *Package, version string, fn func(dir string) error) error {
	resolved, err := p.ResolveVersion(version)
	if err != nil {
		return err
	}

	tempDir, err := os.MkdirTemp("", "sketchgen-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	url := p.Versions[resolved].Dist.Tarball

	slog.Debug("downloading tarball",
		slog.String("package", p.Name),
		slog.String("version", resolved),
	)

	err = downloadAndUnpack(ctx, client, url, tempDir)
	if err != nil {
		return err
	}

	// npm tarballs unpack under a top-level package/ directory.
	return fn(filepath.Join(tempDir, "package"))
}

func downloadAndUnpack(ctx context.Context, client *http.Client, url, dir string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s %s", ErrFetch, resp.Status, url)
	}

	return untar(resp.Body, dir)
}

// untar unpacks a gzip-compressed tarball into dir, rejecting entries that
// would escape it.
func untar(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArchive, err)
		}

		target, err := safeJoin(dir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			err = os.MkdirAll(target, 0o755)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArchive, err)
			}

		case tar.TypeReg:
			err = writeFile(target, tr)
			if err != nil {
				return err
			}
		}
	}
}

func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.Clean(name))
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: entry %q escapes archive root", ErrInvalidArchive, name)
	}

	return target, nil
}

func writeFile(target string, r io.Reader) error {
	err := os.MkdirAll(filepath.Dir(target), 0o755)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}

	f, err := os.Create(target) //nolint:gosec // Target is path-checked against the archive root.
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}

	_, err = io.Copy(f, r) //nolint:gosec // Schema tarballs are small.
	if err != nil {
		_ = f.Close()

		return fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}

	return f.Close()
}
