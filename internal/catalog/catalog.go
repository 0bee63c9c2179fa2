// Package catalog loads the built-in feature descriptors and template tree
// bundled with the binary, plus optional descriptors from a user directory.
// Related: internal/feature/registry.go, internal/render/copy.go
// Tags: catalog, features, templates, embed
package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/stackgen/stackgen/internal/feature"
	"go.uber.org/zap"
)

//go:embed features/*.yaml
var featureFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// descriptorPattern matches descriptor files in a catalog directory.
const descriptorPattern = "*.{yaml,yml}"

// ErrCatalogDir is returned when a configured directory cannot be used.
var ErrCatalogDir = errors.New("invalid catalog directory")

// Options selects where descriptors and templates come from.
type Options struct {
	// Dir holds extra descriptors appended after the built-in ones.
	Dir string
	// TemplatesDir replaces the built-in template tree when set.
	TemplatesDir string
	Logger       *zap.Logger
}

// Catalog is a loaded feature registry with the template tree its
// descriptors refer to.
type Catalog struct {
	Registry  *feature.Registry
	Templates fs.FS
}

// Load builds the catalog. Features are registered in file name order,
// built-in files first, then document order within each file.
func Load(opts Options) (*Catalog, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	features, err := decodeDir(featureFiles, "features")
	if err != nil {
		return nil, err
	}
	log.Debug("loaded built-in features", zap.Int("count", len(features)))

	if opts.Dir != "" {
		extra, err := decodeDir(os.DirFS(opts.Dir), ".")
		if err != nil {
			return nil, fmt.Errorf("catalog dir %s: %w", opts.Dir, err)
		}
		log.Debug("loaded extra features", zap.String("dir", opts.Dir), zap.Int("count", len(extra)))
		features = append(features, extra...)
	}

	reg, err := feature.NewRegistry(features...)
	if err != nil {
		return nil, fmt.Errorf("building feature registry: %w", err)
	}

	templates, err := Templates(opts.TemplatesDir)
	if err != nil {
		return nil, err
	}
	return &Catalog{Registry: reg, Templates: templates}, nil
}

// Builtin loads only the embedded descriptors and templates.
func Builtin() (*Catalog, error) {
	return Load(Options{})
}

// Templates returns the template tree rooted at dir, or the built-in tree
// when dir is empty.
func Templates(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(templateFiles, "templates")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("templates dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates dir %s is not a directory: %w", dir, ErrCatalogDir)
	}
	return os.DirFS(dir), nil
}

func decodeDir(fsys fs.FS, dir string) ([]feature.Feature, error) {
	if _, err := fs.Stat(fsys, dir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogDir, err)
	}
	names, err := doublestar.Glob(fsys, path.Join(dir, descriptorPattern), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("listing descriptors: %w", err)
	}
	sort.Strings(names)

	var out []feature.Feature
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		features, err := feature.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
		out = append(out, features...)
	}
	return out, nil
}
