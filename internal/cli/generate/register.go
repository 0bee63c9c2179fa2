// Package generate provides the CLI commands that resolve and execute plans.
// Includes: new, plan
package generate

import (
	"github.com/spf13/cobra"
)

// Register adds the generation commands to the root command.
// This function is called from the root CLI package during initialization.
func Register(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(planCmd)
}
