// stackgen - Feature-driven project scaffolding

// Package cli provides Cobra-based CLI commands for stackgen.
// It defines the generation commands (new, plan), catalog inspection
// (features, graph), and configuration and utility commands (config,
// history, version).
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stackgen/stackgen/internal/cli/config"
	"github.com/stackgen/stackgen/internal/cli/generate"
	"github.com/stackgen/stackgen/internal/cli/shared"
	"github.com/stackgen/stackgen/internal/cli/util"
	clierrors "github.com/stackgen/stackgen/internal/errors"
)

// Command group IDs for organizing help output (re-exported from shared)
const (
	GroupGenerate      = shared.GroupGenerate
	GroupCatalog       = shared.GroupCatalog
	GroupConfiguration = shared.GroupConfiguration
)

var rootCmd = &cobra.Command{
	Use:   "stackgen",
	Short: "Feature-driven project scaffolding",
	Long: `stackgen - Feature-driven project scaffolding

Pick features from the catalog and stackgen resolves their dependencies,
asks the questions they declare, then installs packages, copies templates,
runs scripts and patches files stage by stage.`,
	Example: `  # See what the catalog offers
  stackgen features

  # Preview the stages for an API with Prisma
  stackgen plan apollo-server prisma

  # Generate it with default answers
  stackgen new apollo-server prisma -y

  # Continue after fixing a failed stage
  stackgen new --resume`,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx and prints any error.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !clierrors.IsCLIError(err) && strings.HasPrefix(err.Error(), "unknown command") {
		err = clierrors.NewArgumentError(err.Error(), "Run 'stackgen --help' for usage")
	}
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func printError(w io.Writer, err error) {
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		clierrors.FprintError(w, cliErr)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func init() {
	// Define command groups in display order
	rootCmd.AddGroup(&cobra.Group{ID: GroupGenerate, Title: "Generate:"})
	rootCmd.AddGroup(&cobra.Group{ID: GroupCatalog, Title: "Catalog:"})
	rootCmd.AddGroup(&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"})

	// Assign built-in help and completion to configuration group
	rootCmd.SetHelpCommandGroupID(GroupConfiguration)
	rootCmd.SetCompletionCommandGroupID(GroupConfiguration)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to project config file (default .stackgen/config.json)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return shared.ArgError(cmd, err)
	})

	// Register commands from subpackages
	generate.Register(rootCmd)
	util.Register(rootCmd)
	config.Register(rootCmd)

	wrapArgs(rootCmd)
}

// wrapArgs makes positional argument errors exit with ExitInvalidArguments.
func wrapArgs(cmd *cobra.Command) {
	if validate := cmd.Args; validate != nil {
		cmd.Args = func(c *cobra.Command, args []string) error {
			return shared.ArgError(c, validate(c, args))
		}
	}
	for _, sub := range cmd.Commands() {
		wrapArgs(sub)
	}
}
