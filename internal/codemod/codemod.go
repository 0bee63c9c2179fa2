// Package codemod holds the named file transforms a stage can apply.
// Every codemod is idempotent: applying it to its own output leaves the
// file unchanged.
package codemod

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownCodemod is returned when a name has no registered codemod.
	ErrUnknownCodemod = errors.New("unknown codemod")
	// ErrDuplicateCodemod is returned when a name is registered twice.
	ErrDuplicateCodemod = errors.New("codemod already registered")
)

// Func transforms the file at path in place.
type Func func(ctx context.Context, path string) error

// Registry maps codemod names to implementations.
type Registry struct {
	mu   sync.RWMutex
	mods map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{mods: make(map[string]Func)}
}

// Default returns a registry holding the built-in codemods.
func Default() *Registry {
	r := NewRegistry()
	for name, fn := range builtins() {
		r.mods[name] = fn
	}
	return r
}

func builtins() map[string]Func {
	return map[string]Func{
		"modPackageJsonPrisma":       ModPackageJSONPrisma,
		"modPackageJsonApolloServer": ModPackageJSONApolloServer,
		"addDevxScripts":             AddDevxScripts,
		"addTailwindImport":          AddTailwindImport,
	}
}

// Register adds fn under name.
func (r *Registry) Register(name string, fn Func) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.mods[name]; exists {
		return fmt.Errorf("registering %s: %w", name, ErrDuplicateCodemod)
	}
	r.mods[name] = fn
	return nil
}

// Lookup returns the codemod registered as name.
func (r *Registry) Lookup(name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.mods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodemod, name)
	}
	return fn, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, err := r.Lookup(name)
	return err == nil
}

// Names returns registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.mods))
	for name := range r.mods {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Apply runs the named codemod on path.
func (r *Registry) Apply(ctx context.Context, name, path string) error {
	fn, err := r.Lookup(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(ctx, path); err != nil {
		return fmt.Errorf("%s on %s: %w", name, path, err)
	}
	return nil
}
