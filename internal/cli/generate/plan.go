package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stackgen/stackgen/internal/cli/shared"
	clierrors "github.com/stackgen/stackgen/internal/errors"
	"github.com/stackgen/stackgen/internal/plan"
	"github.com/stackgen/stackgen/internal/prompt"
	"github.com/stackgen/stackgen/internal/render"
	"github.com/tidwall/pretty"
)

var planCmd = &cobra.Command{
	Use:   "plan <feature>...",
	Short: "Show the stages a generation would run",
	Long: `Resolve the requested features into an execution plan without writing anything.

The plan lists the dependency order, every stage that would run, and every
feature or stage whose activatedBy condition is false, with the answers used.`,
	Example: `  # Plan an API with Prisma using default answers
  stackgen plan apollo-server prisma -y

  # Machine-readable output
  stackgen plan prisma --set databaseProvider=mysql --json`,
	SilenceUsage: true,
	RunE:         runPlan,
}

func init() {
	planCmd.GroupID = shared.GroupGenerate
	addAnswerFlags(planCmd)
	planCmd.Flags().Bool("json", false, "Print the plan as JSON")
}

func runPlan(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return clierrors.NoFeaturesRequested()
	}
	env, err := shared.LoadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Sync()

	asJSON, _ := cmd.Flags().GetBool("json")
	return showPlan(cmd.Context(), cmd, env, newPrompter(cmd, env), args, asJSON)
}

func showPlan(ctx context.Context, cmd *cobra.Command, env *shared.Env, prompter prompt.Prompter, ids []string, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := env.CheckFeatures(ids); err != nil {
		return err
	}
	model, err := buildModel(cmd, env.Catalog.Registry, nil)
	if err != nil {
		return err
	}
	p, err := resolvePlan(ctx, env, prompter, ids, model)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
		_, err = out.Write(pretty.Pretty(data))
		return err
	}
	printPlan(out, p)
	return nil
}

func printPlan(out io.Writer, p *plan.Plan) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(out, "%s %s\n\n", bold("Order:"), strings.Join(p.Order, " → "))

	fmt.Fprintln(out, bold("Stages:"))
	if len(p.Entries) == 0 {
		fmt.Fprintln(out, dim("  (none)"))
	}
	for i, e := range p.Entries {
		fmt.Fprintf(out, "  %2d. %s\n", i+1, cyan(e.Key()))
	}

	if len(p.Skipped) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, bold("Skipped:"))
		for _, s := range p.Skipped {
			name := s.Feature
			if s.Stage != "" {
				name += "/" + s.Stage
			}
			fmt.Fprintf(out, "  - %s %s\n", yellow(name), dim(s.Reason))
		}
	}

	if keys := p.Answers.Keys(); len(keys) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, bold("Answers:"))
		for _, k := range keys {
			v, _ := p.Answers.Get(k)
			fmt.Fprintf(out, "  %s = %s\n", k, render.FormatValue(v))
		}
	}
}
