// Package shared provides constants and helpers used across CLI subpackages.
// This package has no dependencies on other CLI packages to avoid circular imports.
package shared

import (
	"errors"

	clierrors "github.com/stackgen/stackgen/internal/errors"
)

// Command group IDs for organizing help output
const (
	GroupGenerate      = "generate"
	GroupCatalog       = "catalog"
	GroupConfiguration = "configuration"
)

// Exit codes for CLI commands
const (
	ExitSuccess           = clierrors.ExitSuccess
	ExitStageFailed       = clierrors.ExitStageFailed
	ExitConfiguration     = clierrors.ExitConfiguration
	ExitInvalidArguments  = clierrors.ExitInvalidArguments
	ExitMissingDependency = clierrors.ExitMissingDependency
	ExitTimeout           = clierrors.ExitTimeout
)

type exitCoder interface {
	ExitCode() int
}

// ExitCode returns the process exit code for an error returned by a command.
// Errors that carry no code exit with ExitStageFailed.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coded exitCoder
	if errors.As(err, &coded) {
		if code := coded.ExitCode(); code != 0 {
			return code
		}
	}
	return ExitStageFailed
}
