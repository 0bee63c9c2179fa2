package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err         *CLIError
		wantHeading string
		wantExit    int
	}{
		"argument": {
			err:         NewArgumentErrorWithUsage("unknown flag: --verbose", "stackgen plan <feature>..."),
			wantHeading: "Argument Error",
			wantExit:    ExitInvalidArguments,
		},
		"configuration": {
			err:         NewConfigError("duplicate feature prisma"),
			wantHeading: "Configuration Error",
			wantExit:    ExitConfiguration,
		},
		"prerequisite": {
			err:         NewPrerequisiteError("shell \"zsh\" not found in PATH"),
			wantHeading: "Prerequisite Error",
			wantExit:    ExitMissingDependency,
		},
		"runtime": {
			err:         NewRuntimeError("feature tailwind stage css failed at mods"),
			wantHeading: "Runtime Error",
			wantExit:    ExitStageFailed,
		},
		"explicit code wins over category": {
			err:         &CLIError{Category: Runtime, Message: "script timed out", Code: ExitTimeout},
			wantHeading: "Runtime Error",
			wantExit:    ExitTimeout,
		},
		"unknown category": {
			err:         &CLIError{Category: ErrorCategory(42), Message: "?"},
			wantHeading: "Error",
			wantExit:    ExitStageFailed,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantHeading, tt.err.Category.String())
			assert.Equal(t, tt.wantExit, tt.err.ExitCode())
			assert.Equal(t, tt.err.Message, tt.err.Error(), "Error is the bare message")
		})
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("reading answers.yaml: %w", context.DeadlineExceeded)

	tests := map[string]struct {
		wrap        func(error) *CLIError
		wantMessage string
		wantFixes   int
	}{
		"wrap keeps the message": {
			wrap:        func(err error) *CLIError { return Wrap(err, Prerequisite, "Check the file exists") },
			wantMessage: "reading answers.yaml: context deadline exceeded",
			wantFixes:   1,
		},
		"wrap with message prefixes it": {
			wrap: func(err error) *CLIError {
				return WrapWithMessage(err, Prerequisite, "loading saved answers")
			},
			wantMessage: "loading saved answers: reading answers.yaml: context deadline exceeded",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := tt.wrap(cause)
			require.NotNil(t, got)
			assert.Equal(t, Prerequisite, got.Category)
			assert.Equal(t, tt.wantMessage, got.Message)
			assert.Len(t, got.Remediation, tt.wantFixes)
			assert.ErrorIs(t, got, context.DeadlineExceeded)
		})
	}

	assert.Nil(t, Wrap(nil, Runtime))
	assert.Nil(t, WrapWithMessage(nil, Runtime, "x"))
}

func TestAsCLIError(t *testing.T) {
	t.Parallel()

	inner := CatalogInvalid(errors.New("feature x: duplicate stage"))

	tests := map[string]struct {
		err  error
		want *CLIError
	}{
		"direct":      {err: inner, want: inner},
		"wrapped":     {err: fmt.Errorf("loading env: %w", inner), want: inner},
		"plain error": {err: errors.New("exit status 1")},
		"nil":         {err: nil},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Same(t, tt.want, AsCLIError(tt.err))
			assert.Equal(t, tt.want != nil, IsCLIError(tt.err))
		})
	}
}
