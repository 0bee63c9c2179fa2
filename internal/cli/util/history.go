package util

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stackgen/stackgen/internal/cli/shared"
	clierrors "github.com/stackgen/stackgen/internal/errors"
	"github.com/stackgen/stackgen/internal/history"
)

var historyCmd = &cobra.Command{
	Use:          "history",
	Short:        "View generation run history",
	Long:         `View a log of stackgen runs in a project with timestamp, run id, status, features, exit code, and duration.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := shared.LoadConfig(cmd)
		if err != nil {
			return err
		}
		root, _ := cmd.Flags().GetString("root")
		abs, err := filepath.Abs(root)
		if err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Argument, "resolving --root")
		}
		return runHistoryWithStateDir(cmd, shared.StateDir(abs, cfg))
	},
}

func init() {
	historyCmd.GroupID = shared.GroupConfiguration
	historyCmd.Flags().StringP("root", "r", ".", "Project directory whose history to show")
	historyCmd.Flags().StringP("feature", "f", "", "Filter by feature id")
	historyCmd.Flags().IntP("limit", "n", 0, "Limit to last N entries (most recent)")
	historyCmd.Flags().Bool("clear", false, "Clear all history")
	historyCmd.Flags().String("status", "", "Filter by status (running, completed, failed, cancelled)")
}

// runHistoryWithStateDir runs the history command against a state directory.
func runHistoryWithStateDir(cmd *cobra.Command, stateDir string) error {
	clearAll, _ := cmd.Flags().GetBool("clear")
	filter := history.Filter{}
	filter.Feature, _ = cmd.Flags().GetString("feature")
	filter.Status, _ = cmd.Flags().GetString("status")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	if filter.Limit < 0 {
		return clierrors.NewArgumentError(fmt.Sprintf("limit must be positive, got %d", filter.Limit))
	}

	store := history.NewStore(stateDir, 0, nil)
	out := cmd.OutOrStdout()
	if clearAll {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(out, "History cleared.")
		return nil
	}

	runs, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	entries := runs.Select(filter)
	if len(entries) == 0 {
		fmt.Fprintln(out, noEntriesMessage(filter))
		return nil
	}
	printEntries(out, entries)
	return nil
}

func noEntriesMessage(f history.Filter) string {
	var conds []string
	if f.Feature != "" {
		conds = append(conds, fmt.Sprintf("feature '%s'", f.Feature))
	}
	if f.Status != "" {
		conds = append(conds, fmt.Sprintf("status '%s'", f.Status))
	}
	if len(conds) == 0 {
		return "No history available."
	}
	return "No matching entries for " + strings.Join(conds, " and ") + "."
}

var statusColors = map[string]*color.Color{
	history.StatusCompleted: color.New(color.FgGreen),
	history.StatusRunning:   color.New(color.FgYellow),
	history.StatusFailed:    color.New(color.FgRed),
	history.StatusCancelled: color.New(color.FgRed),
}

// printEntries writes one line per run, oldest first.
func printEntries(out io.Writer, entries []history.Entry) {
	when := color.New(color.FgCyan)
	for _, e := range entries {
		status := fmt.Sprintf("%-10s", orDash(e.Status))
		if c, ok := statusColors[e.Status]; ok {
			status = c.Sprint(status)
		}
		exit := color.New(color.FgGreen)
		if e.ExitCode != 0 {
			exit = color.New(color.FgRed)
		}
		fmt.Fprintf(out, "%s  %s  %s  %-6s  exit=%s  %-10s  %s\n",
			when.Sprint(e.CreatedAt.Format("2006-01-02 15:04:05")),
			formatID(e.ID),
			status,
			e.Command,
			exit.Sprint(e.ExitCode),
			orDash(e.Duration),
			orDash(strings.Join(e.Features, ",")),
		)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// idWidth fits the first block of a UUID run id.
const idWidth = 8

// formatID returns the run id cut or padded to idWidth.
func formatID(id string) string {
	if len(id) > idWidth {
		return id[:idWidth]
	}
	return fmt.Sprintf("%-*s", idWidth, orDash(id))
}
