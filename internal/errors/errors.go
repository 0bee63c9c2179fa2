// Package errors provides user-facing CLI errors for stackgen. Each error
// carries a category, an optional usage line and remediation steps, and maps
// to a process exit code.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a CLIError for formatting and exit codes.
type ErrorCategory int

const (
	// Argument covers invalid command-line input.
	Argument ErrorCategory = iota
	// Configuration covers invalid tool configuration, catalogs and plans.
	Configuration
	// Prerequisite covers missing files, directories or tools.
	Prerequisite
	// Runtime covers failures while executing stages.
	Runtime
)

// Exit codes returned by the stackgen binary.
const (
	ExitSuccess           = 0
	ExitStageFailed       = 1
	ExitConfiguration     = 2
	ExitInvalidArguments  = 3
	ExitMissingDependency = 4
	ExitTimeout           = 5
)

// String returns the heading used when the error is printed.
func (c ErrorCategory) String() string {
	switch c {
	case Argument:
		return "Argument Error"
	case Configuration:
		return "Configuration Error"
	case Prerequisite:
		return "Prerequisite Error"
	case Runtime:
		return "Runtime Error"
	default:
		return "Error"
	}
}

// CLIError is an error presented to the user with remediation steps.
type CLIError struct {
	Category    ErrorCategory
	Message     string
	Usage       string
	Remediation []string
	// Code overrides the category exit code when non-zero.
	Code int
	// Err is the underlying cause, if any.
	Err error
}

func (e *CLIError) Error() string {
	return e.Message
}

func (e *CLIError) Unwrap() error { return e.Err }

// ExitCode returns the process exit code for the error.
func (e *CLIError) ExitCode() int {
	if e.Code != 0 {
		return e.Code
	}
	switch e.Category {
	case Argument:
		return ExitInvalidArguments
	case Configuration:
		return ExitConfiguration
	case Prerequisite:
		return ExitMissingDependency
	default:
		return ExitStageFailed
	}
}

// NewArgumentError creates an Argument error.
func NewArgumentError(message string, remediation ...string) *CLIError {
	return &CLIError{Category: Argument, Message: message, Remediation: remediation}
}

// NewArgumentErrorWithUsage creates an Argument error that prints a usage line.
func NewArgumentErrorWithUsage(message, usage string, remediation ...string) *CLIError {
	return &CLIError{Category: Argument, Message: message, Usage: usage, Remediation: remediation}
}

// NewConfigError creates a Configuration error.
func NewConfigError(message string, remediation ...string) *CLIError {
	return &CLIError{Category: Configuration, Message: message, Remediation: remediation}
}

// NewPrerequisiteError creates a Prerequisite error.
func NewPrerequisiteError(message string, remediation ...string) *CLIError {
	return &CLIError{Category: Prerequisite, Message: message, Remediation: remediation}
}

// NewRuntimeError creates a Runtime error.
func NewRuntimeError(message string, remediation ...string) *CLIError {
	return &CLIError{Category: Runtime, Message: message, Remediation: remediation}
}

// Wrap converts err into a CLIError of the given category.
func Wrap(err error, category ErrorCategory, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	return &CLIError{Category: category, Message: err.Error(), Remediation: remediation, Err: err}
}

// WrapWithMessage is Wrap with message prefixed to the error text.
func WrapWithMessage(err error, category ErrorCategory, message string, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	return &CLIError{
		Category:    category,
		Message:     fmt.Sprintf("%s: %s", message, err.Error()),
		Remediation: remediation,
		Err:         err,
	}
}

// IsCLIError reports whether err is or wraps a *CLIError.
func IsCLIError(err error) bool {
	return AsCLIError(err) != nil
}

// AsCLIError returns the *CLIError in err's chain, or nil.
func AsCLIError(err error) *CLIError {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	return nil
}
