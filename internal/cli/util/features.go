package util

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stackgen/stackgen/internal/cli/shared"
	"github.com/stackgen/stackgen/internal/feature"
	"github.com/tidwall/pretty"
)

var featuresCmd = &cobra.Command{
	Use:     "features [feature]...",
	Aliases: []string{"ls"},
	Short:   "List catalog features",
	Long: `List the features in the catalog in declaration order, with their
dependencies, activation condition, prompts and stages.

Pass feature ids to show only those features.`,
	Example: `  # List every feature
  stackgen features

  # Show one feature as JSON
  stackgen features prisma --json`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := shared.LoadEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Sync()
		asJSON, _ := cmd.Flags().GetBool("json")
		return listFeatures(cmd.OutOrStdout(), env, args, asJSON)
	},
}

func init() {
	featuresCmd.GroupID = shared.GroupCatalog
	featuresCmd.Flags().Bool("json", false, "Print features as JSON")
}

func listFeatures(out io.Writer, env *shared.Env, ids []string, asJSON bool) error {
	if err := env.CheckFeatures(ids); err != nil {
		return err
	}
	features := env.Catalog.Registry.Features()
	if len(ids) > 0 {
		features = features[:0:0]
		for _, id := range ids {
			f, _ := env.Catalog.Registry.Get(id)
			features = append(features, f)
		}
	}

	if asJSON {
		data, err := json.Marshal(features)
		if err != nil {
			return fmt.Errorf("encoding features: %w", err)
		}
		_, err = out.Write(pretty.Pretty(data))
		return err
	}

	for i, f := range features {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printFeature(out, f)
	}
	return nil
}

func printFeature(out io.Writer, f *feature.Feature) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	title := cyan(f.ID)
	if f.Name != "" && f.Name != f.ID {
		title += " " + dim("("+f.Name+")")
	}
	fmt.Fprintln(out, bold(title))
	if f.Description != "" {
		fmt.Fprintf(out, "  %s\n", f.Description)
	}
	if len(f.DependsOn) > 0 {
		fmt.Fprintf(out, "  depends on: %s\n", strings.Join(f.DependsOn, ", "))
	}
	if f.ActivatedBy.Predicate != nil {
		fmt.Fprintf(out, "  activated by: %s\n", f.ActivatedBy.Predicate.String())
	}
	for _, p := range f.Configuration {
		line := fmt.Sprintf("  prompt %s (%s)", p.ID, p.Type)
		if len(p.Options) > 0 {
			values := make([]string, len(p.Options))
			for i, o := range p.Options {
				values[i] = o.Value
			}
			line += " [" + strings.Join(values, "|") + "]"
		}
		if p.DefaultValue != nil {
			line += fmt.Sprintf(" default=%v", p.DefaultValue)
		}
		fmt.Fprintln(out, line)
	}
	names := make([]string, len(f.Stages))
	for i, s := range f.Stages {
		names[i] = s.Name
	}
	fmt.Fprintf(out, "  stages: %s\n", strings.Join(names, ", "))
}
