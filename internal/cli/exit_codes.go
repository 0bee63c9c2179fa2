package cli

import "github.com/stackgen/stackgen/internal/cli/shared"

// Process exit codes of the stackgen binary.
const (
	ExitSuccess             = shared.ExitSuccess
	ExitStageFailed         = shared.ExitStageFailed // a stage failed, or an unclassified error
	ExitConfiguration       = shared.ExitConfiguration
	ExitInvalidArguments    = shared.ExitInvalidArguments
	ExitMissingDependencies = shared.ExitMissingDependency // e.g. the configured shell
	ExitTimeout             = shared.ExitTimeout
)

// ExitCode maps an error returned by ExecuteContext to its exit code.
func ExitCode(err error) int {
	return shared.ExitCode(err)
}
