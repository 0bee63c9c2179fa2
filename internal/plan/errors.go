package plan

import (
	"errors"
	"fmt"

	"github.com/stackgen/stackgen/internal/dag"
)

var (
	// ErrCircularDependency is wrapped when dependsOn edges form a cycle.
	ErrCircularDependency = dag.ErrCycle
	// ErrUnknownFeature is wrapped when a requested or depended-on id is not registered.
	ErrUnknownFeature = errors.New("unknown feature")
	// ErrDestinationConflict is wrapped when two features write the same template destination.
	ErrDestinationConflict = errors.New("template destination claimed by more than one feature")
	// ErrMissingAnswer is wrapped when a required prompt has no answer.
	ErrMissingAnswer = errors.New("missing answer")
	// ErrInvalidAnswer is wrapped when an answer does not fit its prompt.
	ErrInvalidAnswer = errors.New("invalid answer")
)

// ConfigError is a fatal configuration problem found while building a plan.
// No plan is returned alongside it and nothing has been written.
type ConfigError struct {
	Feature string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Feature == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error in feature %s: %v", e.Feature, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErr(feature string, format string, args ...any) error {
	return &ConfigError{Feature: feature, Err: fmt.Errorf(format, args...)}
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
