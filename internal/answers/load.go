package answers

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/golobby/cast"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadFile reads an answers file. The format is chosen by extension:
// .json, .yaml/.yml or .toml.
func LoadFile(path string) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		k := koanf.New("::")
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, fmt.Errorf("loading answers %s: %w", path, err)
		}
		return k.Raw(), nil
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading answers %s: %w", path, err)
		}
		out := map[string]any{}
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parsing answers %s: %w", path, err)
		}
		return out, nil
	case ".toml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading answers %s: %w", path, err)
		}
		out := map[string]any{}
		if err := toml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parsing answers %s: %w", path, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("loading answers %s: unsupported format %q (use .json, .yaml or .toml)", path, filepath.Ext(path))
	}
}

// WriteFile saves the model as JSON, creating parent directories.
func WriteFile(path string, m *Model) error {
	data, err := json.Parser().Marshal(m.Values())
	if err != nil {
		return fmt.Errorf("encoding answers: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating answers directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing answers %s: %w", path, err)
	}
	return nil
}

// KindFunc reports the prompt type for a key ("" when no prompt declares it).
type KindFunc func(key string) string

var boolType = reflect.TypeOf(true)

// ParseAssignments turns key=value pairs from the command line into typed answers.
// Boolean prompts are cast to bool, multiselect prompts split on commas, everything
// else stays a string. Keys without a known prompt get "true"/"false" cast to bool.
func ParseAssignments(pairs []string, kindOf KindFunc) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected key=value", pair)
		}
		kind := ""
		if kindOf != nil {
			kind = kindOf(key)
		}
		value, err := Coerce(raw, kind)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		out[key] = value
	}
	return out, nil
}

// Coerce converts a raw string into the Go value expected by a prompt kind.
func Coerce(raw, kind string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case "boolean":
		return cast.FromType(raw, boolType)
	case "multiselect":
		if raw == "" {
			return []any{}, nil
		}
		parts := strings.Split(raw, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	case "select", "text":
		return raw, nil
	default:
		if b, err := cast.FromType(raw, boolType); err == nil && (raw == "true" || raw == "false") {
			return b, nil
		}
		return raw, nil
	}
}
