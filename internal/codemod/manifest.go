package codemod

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ErrInvalidManifest is returned when an existing manifest is not a JSON object.
var ErrInvalidManifest = errors.New("manifest is not a JSON object")

var prettyOptions = &pretty.Options{Indent: "  "}

// Manifest is a package.json held as raw JSON so edits keep key order
// and every key the edit does not touch.
type Manifest struct {
	raw []byte
}

// ReadManifest loads path. A missing or blank file reads as {}.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseManifest(data)
}

// ParseManifest wraps raw JSON. Blank input is treated as {}.
func ParseManifest(data []byte) (*Manifest, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &Manifest{raw: []byte("{}")}, nil
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, ErrInvalidManifest
	}
	return &Manifest{raw: data}, nil
}

// Get reads the value at the nested key path.
func (m *Manifest) Get(keys ...string) gjson.Result {
	return gjson.GetBytes(m.raw, KeyPath(keys...))
}

// Set writes value at the nested key path, creating parent objects.
func (m *Manifest) Set(value any, keys ...string) error {
	out, err := sjson.SetBytes(m.raw, KeyPath(keys...), value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", strings.Join(keys, "."), err)
	}
	m.raw = out
	return nil
}

// SetAll writes every key of values under the object at parent.
// Keys are written in the order given.
func (m *Manifest) SetAll(parent string, values []KeyValue) error {
	for _, kv := range values {
		if err := m.Set(kv.Value, parent, kv.Key); err != nil {
			return err
		}
	}
	return nil
}

// KeyValue is one ordered entry for SetAll.
type KeyValue struct {
	Key   string
	Value any
}

// Bytes returns the manifest pretty-printed with two-space indentation and
// a trailing newline.
func (m *Manifest) Bytes() []byte {
	return pretty.PrettyOptions(m.raw, prettyOptions)
}

// Write saves the manifest to path, creating parent directories.
func (m *Manifest) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, m.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// UpdateManifest reads path, applies fn and writes the result.
func UpdateManifest(path string, fn func(*Manifest) error) error {
	m, err := ReadManifest(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := fn(m); err != nil {
		return err
	}
	return m.Write(path)
}

// MergeDependency sets name to version in section. Re-merging the same
// package overwrites its version.
func MergeDependency(path, section, name, version string) error {
	return UpdateManifest(path, func(m *Manifest) error {
		return m.Set(version, section, name)
	})
}

// KeyPath joins keys into a gjson/sjson path, escaping path syntax so keys
// such as "@prisma/client" or "*.{ts,tsx}" are taken literally.
func KeyPath(keys ...string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = escapeKey(k)
	}
	return strings.Join(parts, ".")
}

func escapeKey(k string) string {
	var sb strings.Builder
	for i := 0; i < len(k); i++ {
		switch k[i] {
		case '\\', '.', '*', '?', '|', '#', '@', '!', '=', '<', '>', '%', ':':
			sb.WriteByte('\\')
		}
		sb.WriteByte(k[i])
	}
	return sb.String()
}
