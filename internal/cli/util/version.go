package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stackgen/stackgen/internal/build"
	"github.com/stackgen/stackgen/internal/cli/shared"
)

var logo = []string{
	"█▀ ▀█▀ ▄▀█ █▀▀ █▄▀ █▀▀ █▀▀ █▄ █",
	"▄█  █  █▀█ █▄▄ █ █ █▄█ ██▄ █ ▀█",
}

const tagline = "Feature-driven project scaffolding"

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for stackgen",
	Example: `  # Show version info
  stackgen version

  # Plain output (for scripts)
  stackgen version --plain`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		info := build.Current()
		if plain, _ := cmd.Flags().GetBool("plain"); plain {
			printPlainVersion(out, info)
			return
		}
		printPrettyVersion(out, info, shared.TerminalWidth(out))
	},
}

func init() {
	versionCmd.GroupID = shared.GroupConfiguration
	versionCmd.Flags().Bool("plain", false, "Plain output without formatting")
}

func versionFields(info build.Info, short bool) [][2]string {
	version, commit := info.Version, info.Commit
	if short {
		if info.IsDev() {
			version += " (development build)"
		}
		commit = truncateCommit(commit)
	}
	return [][2]string{
		{"version", version},
		{"commit", commit},
		{"built", info.BuildDate},
		{"go", info.GoVersion},
		{"platform", info.Platform},
	}
}

// printPlainVersion writes one "key: value" line per field, for scripts.
func printPlainVersion(out io.Writer, info build.Info) {
	fmt.Fprintf(out, "stackgen %s\n", info.Version)
	for _, f := range versionFields(info, false)[1:] {
		fmt.Fprintf(out, "%s: %s\n", f[0], f[1])
	}
}

// printPrettyVersion writes the logo and an aligned field list, centered
// in width columns.
func printPrettyVersion(out io.Writer, info build.Info, width int) {
	accent := color.New(color.FgCyan, color.Bold).SprintFunc()
	label := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	indent := func(cols int) string { return strings.Repeat(" ", max(0, (width-cols)/2)) }

	fmt.Fprintln(out)
	for _, line := range logo {
		fmt.Fprintln(out, indent(len([]rune(line)))+accent(line))
	}
	fmt.Fprintln(out, indent(len(tagline))+dim(tagline))
	fmt.Fprintln(out)

	fields := versionFields(info, true)
	pad := indent(logoWidth())
	for _, f := range fields {
		fmt.Fprintf(out, "%s%s  %s\n", pad, label(fmt.Sprintf("%9s", f[0])), f[1])
	}
	fmt.Fprintln(out)
}

func logoWidth() int {
	return len([]rune(logo[0]))
}

// truncateCommit shortens a commit hash to eight characters.
// A "-dirty" marker is kept.
func truncateCommit(commit string) string {
	base, dirty := strings.CutSuffix(commit, "-dirty")
	if len(base) <= 8 {
		return commit
	}
	if dirty {
		return base[:8] + "-dirty"
	}
	return base[:8]
}
