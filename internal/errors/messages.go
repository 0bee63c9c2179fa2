package errors

import (
	"fmt"
	"strings"
)

// NoFeaturesRequested is returned when `stackgen new` gets no feature ids.
func NoFeaturesRequested() *CLIError {
	return NewArgumentErrorWithUsage(
		"no features requested",
		"stackgen new <feature>... [--root dir]",
		"Run 'stackgen features' to list the available features",
		"Pass one or more feature ids, or --resume to continue the last run",
	)
}

// UnknownFeature is returned when a requested id is not in the catalog.
func UnknownFeature(id string, known []string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("unknown feature %q", id),
		fmt.Sprintf("Available features: %s", strings.Join(known, ", ")),
	)
}

// InvalidAssignment is returned for a malformed --set value.
func InvalidAssignment(assignment string, err error) *CLIError {
	e := NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid answer %q: %v", assignment, err),
		"--set key=value",
		"Use key=value, e.g. --set databaseProvider=postgresql",
		"Separate list values with commas, e.g. --set apiFeatures=graphql,rest",
	)
	e.Err = err
	return e
}

// InvalidFlagCombination is returned when flags cannot be used together.
func InvalidFlagCombination(flags, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination %s: %s", flags, reason),
		"Run the command with --help to see valid flags",
	)
}

// ConfigFileNotFound is returned when an explicit --config path is missing.
func ConfigFileNotFound(path string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("config file not found: %s", path),
		"Check the --config path",
		"Run 'stackgen config init' to create a default config",
	)
}

// ConfigParseError is returned when a config file cannot be parsed.
func ConfigParseError(path string, err error) *CLIError {
	e := NewConfigError(
		fmt.Sprintf("failed to parse config %s: %v", path, err),
		"Check the file is valid JSON",
		"Run 'stackgen config show' to see the effective configuration",
	)
	e.Err = err
	return e
}

// CatalogInvalid is returned when feature descriptors fail to load.
func CatalogInvalid(err error) *CLIError {
	e := NewConfigError(
		fmt.Sprintf("feature catalog is invalid: %v", err),
		"Check the descriptors in catalog_dir",
		"Each feature needs a unique id and uniquely named stages",
	)
	e.Err = err
	return e
}

// PlanInvalid is returned when plan resolution fails with a configuration error.
// Nothing has been written to disk at that point.
func PlanInvalid(err error) *CLIError {
	e := NewConfigError(
		err.Error(),
		"Fix the feature descriptors or answers named above",
		"No files were written; run 'stackgen plan' to check the plan before generating",
	)
	e.Err = err
	return e
}

// StageFailed is returned when a plan stage fails during generation.
func StageFailed(err error, stateDir string) *CLIError {
	e := NewRuntimeError(
		err.Error(),
		"Files written by earlier stages were kept",
		fmt.Sprintf("Fix the problem and re-run with --resume to continue (state in %s)", stateDir),
	)
	e.Err = err
	return e
}

// TimeoutError is returned when a script exceeds the configured timeout.
func TimeoutError(duration, command string) *CLIError {
	return &CLIError{
		Category: Runtime,
		Message:  fmt.Sprintf("script timed out after %s: %s", duration, command),
		Code:     ExitTimeout,
		Remediation: []string{
			"Increase script_timeout in .stackgen/config.json or set STACKGEN_SCRIPT_TIMEOUT",
			"Set script_timeout to 0 to disable the timeout",
		},
	}
}

// RetryExhausted is returned when a stage used all of its attempts.
func RetryExhausted(stage string, attempts int) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("stage %s failed %d times", stage, attempts),
		"Inspect the output of the previous attempt",
		"Raise max_retries or start over without --resume",
	)
}

// NothingToResume is returned by --resume when no saved state exists.
func NothingToResume(stateDir string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("no saved run state in %s", stateDir),
		"Run 'stackgen new' without --resume to start a generation",
	)
}

// DirectoryNotFound is returned when a required directory is missing.
func DirectoryNotFound(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("directory not found: %s", path),
		"Check the path exists",
	)
}

// ShellNotFound is returned when the configured script shell is missing.
func ShellNotFound(shell string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("shell %q not found in PATH", shell),
		"Install the shell or set the shell option in .stackgen/config.json",
	)
}

// FileNotWritable is returned when a file cannot be written.
func FileNotWritable(path string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("cannot write %s", path),
		"Check the file permissions",
	)
}
