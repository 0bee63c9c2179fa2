package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Step names the part of a stage that was running when it failed.
type Step string

const (
	StepDependencies Step = "dependencies"
	StepTemplates    Step = "templates"
	StepScripts      Step = "scripts"
	StepMods         Step = "mods"
	// StepAttempt is reported when the stage could not start, e.g. retries are exhausted.
	StepAttempt Step = "attempt"
)

// StageError identifies the first failing feature, stage and step of a run.
// Output holds captured script output when the failing step ran a script.
type StageError struct {
	Feature string
	Stage   string
	Step    Step
	// Item is the failing entry of the step: a package, template source,
	// script command or "path: codemod".
	Item   string
	Output string
	Err    error
}

func (e *StageError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "feature %s stage %s failed at %s", e.Feature, e.Stage, e.Step)
	if e.Item != "" {
		fmt.Fprintf(&sb, " (%s)", e.Item)
	}
	fmt.Fprintf(&sb, ": %v", e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		sb.WriteString("\n--- output ---\n")
		sb.WriteString(out)
	}
	return sb.String()
}

func (e *StageError) Unwrap() error { return e.Err }

// TimeoutError is returned when a script exceeds its timeout.
type TimeoutError struct {
	Timeout time.Duration
	Command string
	Err     error
}

// NewTimeoutError creates a TimeoutError wrapping context.DeadlineExceeded.
func NewTimeoutError(timeout time.Duration, command string) *TimeoutError {
	return &TimeoutError{Timeout: timeout, Command: command, Err: context.DeadlineExceeded}
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command timed out after %v: %s (hint: increase script_timeout in config)", e.Timeout, e.Command)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
