package config

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	cfgpkg "github.com/stackgen/stackgen/internal/config"
	clierrors "github.com/stackgen/stackgen/internal/errors"
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with default values",
	Long: `Write the default configuration template to the user config
(~/.config/stackgen/config.json) or, with --project, to .stackgen/config.json.

An existing file is left untouched unless --force is given.`,
	Example: `  # Create the user config
  stackgen config init

  # Create a project config, replacing any existing one
  stackgen config init --project --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("user", false, "Write the user-level config (default)")
	configInitCmd.Flags().Bool("project", false, "Write the project-level config")
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")

	filePath, scope, err := resolveConfigPath(cmd)
	if err != nil {
		return err
	}

	if err := cfgpkg.WriteDefaultConfig(filePath, force); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration, "writing default config",
			"Pass --force to replace an existing file")
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(cmd.OutOrStdout(), "%s Created %s config: %s\n", green("✓"), scope, filePath)
	return nil
}
