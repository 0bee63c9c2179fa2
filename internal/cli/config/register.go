// Package config provides CLI commands for stackgen configuration management.
// Includes: config show, init, set, get, toggle, keys
package config

import (
	"github.com/spf13/cobra"
	"github.com/stackgen/stackgen/internal/cli/shared"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stackgen configuration",
	Long: `Manage stackgen configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (STACKGEN_*)
  2. Project config (.stackgen/config.json) or --config
  3. User config (~/.config/stackgen/config.json)
  4. Built-in defaults`,
	Example: `  # Show current configuration
  stackgen config show

  # Create a project config with defaults
  stackgen config init --project

  # Raise the retry limit for this project
  stackgen config set max_retries 5 --project`,
}

// Register adds all configuration commands to the root command.
// This function is called from the root CLI package during initialization.
func Register(rootCmd *cobra.Command) {
	configCmd.GroupID = shared.GroupConfiguration
	rootCmd.AddCommand(configCmd)
}
