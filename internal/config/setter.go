package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ErrEmptyKeyPath is returned by the setters for a blank key.
var ErrEmptyKeyPath = errors.New("empty key path")

// SetConfigValue validates value for key and writes it into the JSON file
// at filePath, creating the file when needed. Existing keys keep their
// order.
func SetConfigValue(filePath, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKeyPath
	}
	parsed, err := ValidateValue(key, value)
	if err != nil {
		return fmt.Errorf("validating value: %w", err)
	}

	doc, err := readObject(filePath)
	if err != nil {
		return err
	}
	if doc, err = sjson.SetBytes(doc, key, parsed); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return replaceFile(filePath, pretty.Pretty(doc))
}

// GetConfigValue reports the raw value of key in the JSON file at filePath
// and whether the file sets it.
func GetConfigValue(filePath, key string) (gjson.Result, bool, error) {
	if strings.TrimSpace(key) == "" {
		return gjson.Result{}, false, ErrEmptyKeyPath
	}
	doc, err := readObject(filePath)
	if err != nil {
		return gjson.Result{}, false, err
	}
	r := gjson.GetBytes(doc, key)
	return r, r.Exists(), nil
}

// readObject returns the file's JSON object, or "{}" when the file is
// missing or blank.
func readObject(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return []byte("{}"), nil
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	case strings.TrimSpace(string(data)) == "":
		return []byte("{}"), nil
	}
	if err := CheckJSONSyntax(data, filePath); err != nil {
		return nil, err
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, &ValidationError{FilePath: filePath, Message: "config must be a JSON object"}
	}
	return data, nil
}

// replaceFile swaps content into path through a temp file in the same
// directory.
func replaceFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing config file: %w", err)
	}
	return nil
}

// WriteDefaultConfig writes the default config template to path. It refuses
// to overwrite an existing file unless force is set.
func WriteDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	return replaceFile(path, []byte(GetDefaultConfigTemplate()))
}
