// Package errors_test tests structured CLI error message generation and remediation steps.
// Related: internal/errors/messages.go
// Tags: errors, cli-errors, messages, remediation, error-categories
package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestMessages(t *testing.T) {
	cause := errors.New("boom")

	tests := map[string]struct {
		err          *CLIError
		wantCategory ErrorCategory
		wantExit     int
		wantContains string
		wantUsage    bool
	}{
		"no features requested": {
			err:          NoFeaturesRequested(),
			wantCategory: Argument,
			wantExit:     ExitInvalidArguments,
			wantContains: "no features",
			wantUsage:    true,
		},
		"unknown feature": {
			err:          UnknownFeature("graphqll", []string{"prisma", "tailwind"}),
			wantCategory: Argument,
			wantExit:     ExitInvalidArguments,
			wantContains: "graphqll",
		},
		"invalid assignment": {
			err:          InvalidAssignment("novalue", cause),
			wantCategory: Argument,
			wantExit:     ExitInvalidArguments,
			wantContains: "novalue",
			wantUsage:    true,
		},
		"invalid flag combination": {
			err:          InvalidFlagCombination("--resume --answers", "resume reuses saved answers"),
			wantCategory: Argument,
			wantExit:     ExitInvalidArguments,
			wantContains: "--resume --answers",
		},
		"config file not found": {
			err:          ConfigFileNotFound("/path/to/config"),
			wantCategory: Configuration,
			wantExit:     ExitConfiguration,
			wantContains: "/path/to/config",
		},
		"config parse error": {
			err:          ConfigParseError("/path/to/config", cause),
			wantCategory: Configuration,
			wantExit:     ExitConfiguration,
			wantContains: "boom",
		},
		"catalog invalid": {
			err:          CatalogInvalid(cause),
			wantCategory: Configuration,
			wantExit:     ExitConfiguration,
			wantContains: "catalog",
		},
		"plan invalid": {
			err:          PlanInvalid(cause),
			wantCategory: Configuration,
			wantExit:     ExitConfiguration,
			wantContains: "boom",
		},
		"stage failed": {
			err:          StageFailed(cause, ".stackgen"),
			wantCategory: Runtime,
			wantExit:     ExitStageFailed,
			wantContains: "boom",
		},
		"timeout": {
			err:          TimeoutError("10m0s", "npm install"),
			wantCategory: Runtime,
			wantExit:     ExitTimeout,
			wantContains: "10m0s",
		},
		"retry exhausted": {
			err:          RetryExhausted("prisma/generate", 3),
			wantCategory: Runtime,
			wantExit:     ExitStageFailed,
			wantContains: "prisma/generate",
		},
		"nothing to resume": {
			err:          NothingToResume(".stackgen"),
			wantCategory: Prerequisite,
			wantExit:     ExitMissingDependency,
			wantContains: ".stackgen",
		},
		"directory not found": {
			err:          DirectoryNotFound("/path/to/dir"),
			wantCategory: Prerequisite,
			wantExit:     ExitMissingDependency,
			wantContains: "/path/to/dir",
		},
		"shell not found": {
			err:          ShellNotFound("zsh"),
			wantCategory: Prerequisite,
			wantExit:     ExitMissingDependency,
			wantContains: "zsh",
		},
		"file not writable": {
			err:          FileNotWritable("/path/to/file"),
			wantCategory: Runtime,
			wantExit:     ExitStageFailed,
			wantContains: "/path/to/file",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if tt.err.Category != tt.wantCategory {
				t.Errorf("Category = %v, want %v", tt.err.Category, tt.wantCategory)
			}
			if got := tt.err.ExitCode(); got != tt.wantExit {
				t.Errorf("ExitCode() = %d, want %d", got, tt.wantExit)
			}
			if !strings.Contains(tt.err.Message, tt.wantContains) {
				t.Errorf("Message = %q, want to contain %q", tt.err.Message, tt.wantContains)
			}
			if tt.wantUsage && tt.err.Usage == "" {
				t.Error("Expected non-empty usage")
			}
			if len(tt.err.Remediation) == 0 {
				t.Error("Expected remediation steps")
			}
		})
	}
}

func TestMessages_KeepCause(t *testing.T) {
	cause := errors.New("boom")

	for name, err := range map[string]*CLIError{
		"config parse": ConfigParseError("c.json", cause),
		"catalog":      CatalogInvalid(cause),
		"plan":         PlanInvalid(cause),
		"stage":        StageFailed(cause, ".stackgen"),
		"assignment":   InvalidAssignment("x", cause),
	} {
		if !errors.Is(err, cause) {
			t.Errorf("%s: errors.Is(err, cause) = false, want true", name)
		}
	}
}
