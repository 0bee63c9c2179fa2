// Package answers holds the configuration model: the user's answers to feature
// prompts, keyed by prompt id. The model is append-only for the duration of a run.
package answers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mitchellh/copystructure"
)

// ErrAlreadyAnswered is returned when a key that already holds an answer is set again.
var ErrAlreadyAnswered = errors.New("answer already recorded")

// Model is the mutable answer store for one generation run.
// Keys keep their insertion order so dumps and plans are reproducible.
type Model struct {
	values map[string]any
	order  []string
}

// New creates an empty model.
func New() *Model {
	return &Model{values: make(map[string]any)}
}

// FromMap creates a model seeded with the given answers.
// Keys are inserted in sorted order.
func FromMap(m map[string]any) *Model {
	model := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_ = model.Set(k, m[k])
	}
	return model
}

// Get returns the answer for key and whether it is present.
func (m *Model) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key has been answered.
func (m *Model) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set records an answer. Once answered, a key cannot be overwritten.
func (m *Model) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("setting answer: empty key")
	}
	if _, exists := m.values[key]; exists {
		return fmt.Errorf("setting answer %q: %w", key, ErrAlreadyAnswered)
	}
	m.values[key] = Normalize(value)
	m.order = append(m.order, key)
	return nil
}

// Merge records every answer from src whose key is not yet present.
// Existing answers win.
func (m *Model) Merge(src map[string]any) {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !m.Has(k) {
			_ = m.Set(k, src[k])
		}
	}
}

// Keys returns answered keys in insertion order.
func (m *Model) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of answers.
func (m *Model) Len() int {
	if m == nil {
		return 0
	}
	return len(m.values)
}

// Values returns a deep copy of all answers.
func (m *Model) Values() map[string]any {
	if m == nil || len(m.values) == 0 {
		return map[string]any{}
	}
	return copystructure.Must(copystructure.Copy(m.values)).(map[string]any)
}

// Normalize converts typed slices into []any so list answers have one shape
// regardless of where they came from (flags, JSON, YAML, TOML, prompts).
func Normalize(v any) any {
	switch t := v.(type) {
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out
	case []bool:
		out := make([]any, len(t))
		for i, b := range t {
			out[i] = b
		}
		return out
	case []float64:
		out := make([]any, len(t))
		for i, f := range t {
			out[i] = f
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	default:
		return v
	}
}
