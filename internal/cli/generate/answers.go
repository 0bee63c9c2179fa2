package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/stackgen/stackgen/internal/answers"
	"github.com/stackgen/stackgen/internal/cli/shared"
	"github.com/stackgen/stackgen/internal/codemod"
	clierrors "github.com/stackgen/stackgen/internal/errors"
	"github.com/stackgen/stackgen/internal/feature"
	"github.com/stackgen/stackgen/internal/plan"
	"github.com/stackgen/stackgen/internal/prompt"
)

// AnswersFile is the name of the saved answers file inside the state directory.
const AnswersFile = "answers.json"

// addAnswerFlags registers the flags that feed the configuration model.
func addAnswerFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("set", nil, "Answer a prompt as key=value (repeatable)")
	cmd.Flags().StringP("answers", "a", "", "Answers file (.json, .yaml or .toml)")
	cmd.Flags().BoolP("non-interactive", "y", false, "Never prompt; unanswered prompts take their defaults")
}

// buildModel collects answers from --set, then --answers, then saved.
// Earlier sources win.
func buildModel(cmd *cobra.Command, reg *feature.Registry, saved map[string]any) (*answers.Model, error) {
	model := answers.New()

	pairs, _ := cmd.Flags().GetStringArray("set")
	for _, pair := range pairs {
		values, err := answers.ParseAssignments([]string{pair}, reg.PromptKind)
		if err != nil {
			return nil, clierrors.InvalidAssignment(pair, err)
		}
		model.Merge(values)
	}

	if path, _ := cmd.Flags().GetString("answers"); path != "" {
		values, err := answers.LoadFile(path)
		if err != nil {
			return nil, clierrors.WrapWithMessage(err, clierrors.Argument, "reading --answers",
				"Check the file exists and is valid .json, .yaml or .toml")
		}
		model.Merge(values)
	}

	model.Merge(saved)
	return model, nil
}

// loadSavedAnswers reads the answers a previous run stored in stateDir.
func loadSavedAnswers(stateDir string) (map[string]any, error) {
	path := filepath.Join(stateDir, AnswersFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return answers.LoadFile(path)
}

// newPrompter picks the interactive prompter only when nothing disables it.
func newPrompter(cmd *cobra.Command, env *shared.Env) prompt.Prompter {
	nonInteractive, _ := cmd.Flags().GetBool("non-interactive")
	if nonInteractive || env.Config.NonInteractive || !shared.IsInteractive() {
		return prompt.Defaults{}
	}
	return prompt.NewSurvey(prompt.DefaultSurveyIO)
}

// resolvePlan answers prompts and builds the plan. Configuration problems
// map to exit code 2 before anything is written.
func resolvePlan(ctx context.Context, env *shared.Env, prompter prompt.Prompter, ids []string, model *answers.Model) (*plan.Plan, error) {
	r := &plan.Resolver{
		Registry:  env.Catalog.Registry,
		Prompter:  prompter,
		Codemods:  codemod.Default(),
		Templates: env.Catalog.Templates,
		Logger:    env.Logger,
	}
	p, err := r.Resolve(ctx, ids, model)
	if err == nil {
		return p, nil
	}
	if plan.IsConfigError(err) {
		return nil, clierrors.PlanInvalid(err)
	}
	if errors.Is(err, context.Canceled) {
		return nil, clierrors.WrapWithMessage(err, clierrors.Runtime, "interrupted while answering prompts")
	}
	return nil, clierrors.WrapWithMessage(err, clierrors.Runtime, "resolving plan")
}
