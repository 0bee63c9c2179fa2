package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stackgen/stackgen/internal/answers"
	"github.com/stackgen/stackgen/internal/cli/shared"
	clierrors "github.com/stackgen/stackgen/internal/errors"
	"github.com/stackgen/stackgen/internal/history"
	"github.com/stackgen/stackgen/internal/lifecycle"
	"github.com/stackgen/stackgen/internal/plan"
	"github.com/stackgen/stackgen/internal/progress"
	"github.com/stackgen/stackgen/internal/prompt"
	"github.com/stackgen/stackgen/internal/retry"
	"github.com/stackgen/stackgen/internal/workflow"
	"go.uber.org/zap"
)

var newCmd = &cobra.Command{
	Use:   "new <feature>...",
	Short: "Generate a project from catalog features",
	Long: `Generate a project by running the stages of the requested features.

The requested features and everything they depend on are ordered by their
dependencies. Prompts are answered from --set, --answers, or interactively,
then each active stage installs dependencies, copies templates, runs scripts
and applies codemods, in that order.

The first failing stage stops the run. Files written by earlier stages are
kept; fix the problem and re-run with --resume to continue where it stopped.`,
	Example: `  # API with Prisma, default answers
  stackgen new apollo-server prisma -y

  # Choose answers up front
  stackgen new prisma --set databaseProvider=sqlite --set apiDir=server

  # Generate into another directory
  stackgen new typescript tailwind --root ./web

  # Continue a failed run
  stackgen new --resume`,
	SilenceUsage: true,
	RunE:         runNew,
}

func init() {
	newCmd.GroupID = shared.GroupGenerate
	addAnswerFlags(newCmd)
	newCmd.Flags().StringP("root", "r", ".", "Project directory to generate into")
	newCmd.Flags().Bool("resume", false, "Continue the last run, skipping completed stages")
	newCmd.Flags().Bool("no-progress", false, "Disable stage progress output")
	newCmd.Flags().Bool("stream", false, "Stream script output while stages run")
}

// newOptions are the resolved inputs of one `new` invocation.
type newOptions struct {
	Features []string
	Root     string
	Resume   bool
	Progress bool
	Stream   bool
	Prompter prompt.Prompter
	Out      io.Writer
	ErrOut   io.Writer
}

func runNew(cmd *cobra.Command, args []string) error {
	env, err := shared.LoadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Sync()

	root, _ := cmd.Flags().GetString("root")
	resume, _ := cmd.Flags().GetBool("resume")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	stream, _ := cmd.Flags().GetBool("stream")

	if resume && len(args) > 0 {
		return clierrors.InvalidFlagCombination("--resume with feature ids", "a resumed run reuses the saved feature list")
	}

	opts := newOptions{
		Features: args,
		Root:     root,
		Resume:   resume,
		Progress: env.Config.ShowProgress && !noProgress,
		Stream:   stream,
		Prompter: newPrompter(cmd, env),
		Out:      cmd.OutOrStdout(),
		ErrOut:   cmd.ErrOrStderr(),
	}
	return executeNew(cmd.Context(), cmd, env, opts)
}

// executeNew resolves and runs a plan. It is split from runNew so tests can
// supply the environment and prompter directly.
func executeNew(ctx context.Context, cmd *cobra.Command, env *shared.Env, opts newOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Argument, "resolving --root")
	}
	stateDir := shared.StateDir(root, env.Config)
	log := env.Logger

	var (
		state *retry.RunState
		saved map[string]any
		runID string
	)
	features := opts.Features

	if opts.Resume {
		if _, err := os.Stat(root); err != nil {
			return clierrors.DirectoryNotFound(root)
		}
		state, err = retry.Load(stateDir)
		if err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Prerequisite, "loading run state",
				"Start over without --resume")
		}
		if state == nil {
			return clierrors.NothingToResume(stateDir)
		}
		saved, err = loadSavedAnswers(stateDir)
		if err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Prerequisite, "loading saved answers",
				"Start over without --resume")
		}
		features = state.Features
		runID = state.RunID
		log.Info("resuming run", zap.String("run_id", runID), zap.Strings("completed", state.CompletedKeys()))
	} else {
		if len(features) == 0 {
			return clierrors.NoFeaturesRequested()
		}
		if err := env.CheckFeatures(features); err != nil {
			return err
		}
		if err := os.MkdirAll(root, 0o755); err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Prerequisite, "creating project directory")
		}
		if err := retry.Reset(stateDir); err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Runtime, "clearing previous run state")
		}
		runID = uuid.NewString()
	}

	model, err := buildModel(cmd, env.Catalog.Registry, saved)
	if err != nil {
		return err
	}
	p, err := resolvePlan(ctx, env, opts.Prompter, features, model)
	if err != nil {
		return err
	}

	if hasScripts(p) {
		if _, err := exec.LookPath(env.Config.Shell); err != nil {
			return clierrors.ShellNotFound(env.Config.Shell)
		}
	}

	answersPath := filepath.Join(stateDir, AnswersFile)
	if err := answers.WriteFile(answersPath, p.Answers); err != nil {
		e := clierrors.FileNotWritable(answersPath)
		e.Err = err
		return e
	}

	executor := &workflow.Executor{
		Templates: env.Catalog.Templates,
		Scripts: workflow.ScriptRunner{
			Shell:   env.Config.Shell,
			Timeout: env.Config.ScriptTimeoutDuration(),
		},
		StateDir:   stateDir,
		MaxRetries: env.Config.MaxRetries,
		Notify:     lifecycle.NewLogHandler(log),
		Logger:     log,
	}
	if opts.Stream {
		executor.Scripts.Stream = opts.ErrOut
	}
	if opts.Progress {
		executor.Progress = progress.NewProgressDisplay(progress.DetectCapabilities(opts.ErrOut), opts.ErrOut)
	}

	inv := lifecycle.Invocation{Command: "new", ID: runID, Features: p.Requested}
	hist := history.NewStore(stateDir, env.Config.MaxHistoryEntries, log)

	return lifecycle.RunWithHistoryContext(ctx, executor.Notify, hist, inv, func(ctx context.Context) error {
		report, err := executor.Execute(ctx, p, root, runID, state)
		if executor.Progress != nil {
			executor.Progress.StopSpinner()
		}
		printReport(opts.Out, report, err)
		if err != nil {
			return classifyRunError(err, stateDir)
		}
		return nil
	})
}

func hasScripts(p *plan.Plan) bool {
	for _, e := range p.Entries {
		if len(e.Def.Scripts) > 0 {
			return true
		}
	}
	return false
}

// classifyRunError maps executor failures to CLI errors with exit codes.
func classifyRunError(err error, stateDir string) error {
	var exhausted *retry.RetryExhaustedError
	if errors.As(err, &exhausted) {
		e := clierrors.RetryExhausted(exhausted.Stage, exhausted.Count)
		e.Err = err
		return e
	}
	var timeout *workflow.TimeoutError
	if errors.As(err, &timeout) {
		e := clierrors.TimeoutError(timeout.Timeout.String(), timeout.Command)
		e.Err = err
		return e
	}
	if errors.Is(err, context.Canceled) {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "generation interrupted",
			"Re-run with --resume to continue")
	}
	return clierrors.StageFailed(err, stateDir)
}

// printReport writes the run outcome. Failure details, including captured
// script output, travel in the returned error.
func printReport(out io.Writer, report *workflow.Report, err error) {
	if report == nil {
		return
	}
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if err == nil {
		fmt.Fprintf(out, "%s Generated %d files in %s\n", green("✓"), len(report.Files()), report.Root)
		fmt.Fprintln(out, dim(report.Summary()))
		return
	}

	fmt.Fprintf(out, "%s Generation stopped: %s\n", red("✗"), report.Summary())
}
