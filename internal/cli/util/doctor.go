package util

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stackgen/stackgen/internal/cli/shared"
	clierrors "github.com/stackgen/stackgen/internal/errors"
	"github.com/stackgen/stackgen/internal/health"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the tools stage scripts need",
	Long: `Check that the configured script shell and the Node.js tooling used by the
built-in catalog are installed. Only a missing shell is an error.`,
	Example: `  stackgen doctor`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := shared.LoadConfig(cmd)
		if err != nil {
			return err
		}
		report := health.RunHealthChecks(cfg.Shell, health.DefaultTools)
		fmt.Fprint(cmd.OutOrStdout(), health.FormatReport(report))
		if !report.Passed {
			return clierrors.ShellNotFound(cfg.Shell)
		}
		return nil
	},
}

func init() {
	doctorCmd.GroupID = shared.GroupConfiguration
}
