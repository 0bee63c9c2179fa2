package util

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/stackgen/stackgen/internal/answers"
	"github.com/stackgen/stackgen/internal/cli/shared"
	"github.com/stackgen/stackgen/internal/dag"
	clierrors "github.com/stackgen/stackgen/internal/errors"
	"github.com/stackgen/stackgen/internal/plan"
	"github.com/stackgen/stackgen/internal/prompt"
)

var dagCmd = &cobra.Command{
	Use:     "graph [feature]...",
	Aliases: []string{"dag"},
	Short:   "Visualize feature dependencies as execution waves",
	Long: `Display an ASCII visualization of the feature dependency graph.

Features in the same wave do not depend on each other. Each feature is marked
active or skipped according to its activatedBy condition, evaluated with
default answers and any --set values. Without arguments the whole catalog is shown.`,
	Example: `  # Whole catalog
  stackgen graph

  # One feature and its dependencies, with an answer
  stackgen graph logging --set apiFeatures=logging`,
	SilenceUsage: true,
	RunE:         runDagCmd,
}

func init() {
	dagCmd.GroupID = shared.GroupCatalog
	dagCmd.Flags().StringArray("set", nil, "Answer a prompt as key=value (repeatable)")
	dagCmd.Flags().Bool("compact", false, "Show compact single-line output")
	dagCmd.Flags().Bool("detailed", false, "Show detailed feature information")
	dagCmd.Flags().Bool("stats", false, "Show only wave statistics")
}

func runDagCmd(cmd *cobra.Command, args []string) error {
	env, err := shared.LoadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Sync()

	pairs, _ := cmd.Flags().GetStringArray("set")
	layout, err := buildLayout(cmd.Context(), env, args, pairs)
	if err != nil {
		return err
	}

	compact, _ := cmd.Flags().GetBool("compact")
	detailed, _ := cmd.Flags().GetBool("detailed")
	stats, _ := cmd.Flags().GetBool("stats")
	renderOutput(cmd.OutOrStdout(), layout, compact, detailed, stats)
	return nil
}

// buildLayout resolves ids (all features when empty) with default answers
// and splits the plan's graph into waves.
func buildLayout(ctx context.Context, env *shared.Env, ids, pairs []string) (*dag.Layout, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(ids) == 0 {
		ids = env.Catalog.Registry.IDs()
	}
	if err := env.CheckFeatures(ids); err != nil {
		return nil, err
	}

	values, err := answers.ParseAssignments(pairs, env.Catalog.Registry.PromptKind)
	if err != nil {
		return nil, clierrors.NewArgumentErrorWithUsage(err.Error(), "--set key=value")
	}

	r := &plan.Resolver{
		Registry:  env.Catalog.Registry,
		Prompter:  prompt.Defaults{},
		Templates: env.Catalog.Templates,
		Logger:    env.Logger,
	}
	p, err := r.Resolve(ctx, ids, answers.FromMap(values))
	if err != nil {
		if plan.IsConfigError(err) {
			return nil, clierrors.PlanInvalid(err)
		}
		return nil, fmt.Errorf("resolving features: %w", err)
	}

	layout, err := p.Graph.Layout()
	if err != nil {
		return nil, fmt.Errorf("computing execution waves: %w", err)
	}
	return layout, nil
}

// renderOutput writes the layout in the format the flags select.
func renderOutput(out io.Writer, layout *dag.Layout, compact, detailed, stats bool) {
	switch {
	case stats:
		s := layout.Stats()
		fmt.Fprintf(out, "Waves:      %d\n", s.Waves)
		fmt.Fprintf(out, "Features:   %d (%d active, %d skipped)\n", s.Features, s.Active, s.Skipped)
		fmt.Fprintf(out, "Wave sizes: %d to %d, mean %.1f\n", s.Smallest, s.Largest, s.Mean())
	case compact:
		fmt.Fprintln(out, layout.Line())
	case detailed:
		fmt.Fprint(out, layout.Detail())
	default:
		fmt.Fprint(out, layout.Tree())
	}
}
