package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/stackgen/stackgen/internal/feature"
)

var (
	// ErrTemplateNotFound is returned when a template source matches nothing.
	ErrTemplateNotFound = errors.New("template source not found")
	// ErrUnsafePath is returned when a destination escapes the project root.
	ErrUnsafePath = errors.New("path escapes project root")
)

// Copier writes templates from Source into a project directory.
type Copier struct {
	Source fs.FS
	Vars   Lookup
}

// Copy renders one template under root and returns the written paths,
// relative to root. A source may name a file, a directory or a glob.
// Existing files are overwritten.
func (c *Copier) Copy(t feature.Template, root string) ([]string, error) {
	files, err := c.files(t)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		if err := c.writeFile(f.src, root, f.dest); err != nil {
			return written, err
		}
		written = append(written, f.dest)
	}
	return written, nil
}

// Destinations returns the cleaned paths Copy would write for t, relative
// to the project root, without writing anything.
func (c *Copier) Destinations(t feature.Template) ([]string, error) {
	files, err := c.files(t)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = path.Clean(f.dest)
	}
	return out, nil
}

func (c *Copier) files(t feature.Template) ([]copyPair, error) {
	if c.Source == nil {
		return nil, fmt.Errorf("copying %s: no template source configured: %w", t.Source, ErrTemplateNotFound)
	}
	src := path.Clean(strings.TrimPrefix(Substitute(t.Source, c.Vars), "/"))
	dest := Substitute(t.Destination, c.Vars)
	return c.expand(src, dest)
}

type copyPair struct {
	src  string
	dest string
}

func (c *Copier) expand(src, dest string) ([]copyPair, error) {
	if hasMeta(src) {
		base, _ := doublestar.SplitPattern(src)
		matches, err := doublestar.Glob(c.Source, src, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", src, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: %w", src, ErrTemplateNotFound)
		}
		out := make([]copyPair, 0, len(matches))
		for _, m := range matches {
			rel := m
			if base != "." {
				rel = strings.TrimPrefix(strings.TrimPrefix(m, base), "/")
			}
			out = append(out, copyPair{src: m, dest: path.Join(dest, Substitute(rel, c.Vars))})
		}
		return out, nil
	}

	info, err := fs.Stat(c.Source, src)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", src, ErrTemplateNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", src, err)
	}

	if !info.IsDir() {
		if strings.HasSuffix(dest, "/") {
			dest = path.Join(dest, path.Base(src))
		}
		return []copyPair{{src: src, dest: dest}}, nil
	}

	var out []copyPair
	err = fs.WalkDir(c.Source, src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel := p
		if src != "." {
			rel = strings.TrimPrefix(strings.TrimPrefix(p, src), "/")
		}
		out = append(out, copyPair{src: p, dest: path.Join(dest, Substitute(rel, c.Vars))})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking template %s: %w", src, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s is empty: %w", src, ErrTemplateNotFound)
	}
	return out, nil
}

func (c *Copier) writeFile(src, root, dest string) error {
	data, err := fs.ReadFile(c.Source, src)
	if err != nil {
		return fmt.Errorf("reading template %s: %w", src, err)
	}
	if !IsBinary(data) {
		data = []byte(Substitute(string(data), c.Vars))
	}

	target, err := ResolvePath(root, dest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dest, err)
	}

	mode := fs.FileMode(0o644)
	if info, err := fs.Stat(c.Source, src); err == nil && info.Mode().Perm()&0o111 != 0 {
		mode = 0o755
	}
	if err := os.WriteFile(target, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// ResolvePath joins rel onto root and rejects results outside root.
func ResolvePath(root, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%s: %w", rel, ErrUnsafePath)
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	back, err := filepath.Rel(root, target)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", rel, ErrUnsafePath)
	}
	return target, nil
}

// IsBinary reports whether data is not text. Binary templates are copied
// without substitution.
func IsBinary(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return false
		}
	}
	return true
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
