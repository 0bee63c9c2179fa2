// Package workflow executes resolved plans against a project directory.
// Stages run strictly one at a time in plan order; within a stage the
// dependencies, templates, scripts and mods steps run in that order.
// The first failure aborts the run and nothing already written is undone.
// Related: internal/plan/resolver.go, internal/retry/retry.go
// Tags: workflow, executor, stages, scripts, codemods, resume
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/stackgen/stackgen/internal/codemod"
	"github.com/stackgen/stackgen/internal/lifecycle"
	"github.com/stackgen/stackgen/internal/plan"
	"github.com/stackgen/stackgen/internal/progress"
	"github.com/stackgen/stackgen/internal/render"
	"github.com/stackgen/stackgen/internal/retry"
	"go.uber.org/zap"
)

// Executor runs plan stages.
type Executor struct {
	// Templates is the template tree sources are resolved against.
	Templates fs.FS
	// Codemods defaults to codemod.Default().
	Codemods *codemod.Registry
	// Scripts runs script steps. The zero value uses DefaultShell with no timeout.
	Scripts ScriptRunner
	// StateDir, when set, persists run state after every stage.
	StateDir string
	// MaxRetries bounds attempts per stage across resumed runs (0 = unlimited).
	MaxRetries int
	// Progress is an optional progress display.
	Progress *progress.ProgressDisplay
	// Notify receives a completion event per executed stage.
	Notify lifecycle.NotificationHandler
	Logger *zap.Logger
}

// Execute runs the entries of p against root, in order. Activation was
// decided when p was resolved and is not evaluated again. When state is non-nil, stages it records as
// completed are not run again and new progress is added to it; pass nil to
// start a fresh run with runID.
//
// The returned report is always non-nil. On failure the error is a
// *StageError naming the first failing feature, stage and step, and the
// remaining stages stay pending.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan, root, runID string, state *retry.RunState) (*Report, error) {
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if state == nil {
		state = retry.NewRunState(runID, p.Requested)
	}

	report := &Report{
		RunID:     state.RunID,
		Root:      root,
		Results:   make([]StageResult, len(p.Entries)),
		StartedAt: time.Now(),
	}
	for i, entry := range p.Entries {
		report.Results[i] = StageResult{Feature: entry.Feature, Stage: entry.Stage, Status: StatusPending}
	}
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	log = log.With(zap.String("run_id", report.RunID))

	for i, entry := range p.Entries {
		result := &report.Results[i]
		info := progress.StageInfo{
			Feature:     entry.Feature,
			Name:        entry.Stage,
			Number:      i + 1,
			TotalStages: len(p.Entries),
			MaxRetries:  e.MaxRetries,
		}

		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("run interrupted before %s: %w", entry.Key(), err)
		}

		if state.IsCompleted(entry.Key()) {
			result.Status = StatusSkipped
			result.Reason = "completed in a previous attempt"
			e.showSkip(info, result.Reason)
			log.Info("stage already completed", zap.String("feature", entry.Feature), zap.String("stage", entry.Stage))
			continue
		}

		if err := state.BeginAttempt(entry.Key(), e.MaxRetries); err != nil {
			stageErr := &StageError{Feature: entry.Feature, Stage: entry.Stage, Step: StepAttempt, Err: err}
			return report, e.fail(result, info, stageErr, state, log)
		}
		result.Attempt = state.Stage(entry.Key()).Attempts
		info.Attempt = result.Attempt
		if err := e.saveState(state); err != nil {
			return report, err
		}

		result.Status = StatusRunning
		if e.Progress != nil {
			if err := e.Progress.StartStage(info); err != nil {
				log.Warn("progress display error", zap.Error(err))
			}
		}
		log.Info("stage started",
			zap.String("feature", entry.Feature),
			zap.String("stage", entry.Stage),
			zap.Int("attempt", result.Attempt),
		)

		start := time.Now()
		var stageErr *StageError
		_ = lifecycle.RunStage(e.Notify, entry.Key(), func() error {
			result.Files, stageErr = e.runStage(ctx, entry, p, root)
			if stageErr != nil {
				return stageErr
			}
			return nil
		})
		result.Duration = time.Since(start)
		if stageErr != nil {
			return report, e.fail(result, info, stageErr, state, log)
		}

		result.Status = StatusCompleted
		state.MarkComplete(entry.Key())
		if err := e.saveState(state); err != nil {
			return report, err
		}
		if e.Progress != nil {
			_ = e.Progress.CompleteStage(info)
		}
		log.Info("stage completed",
			zap.String("feature", entry.Feature),
			zap.String("stage", entry.Stage),
			zap.Int("files", len(result.Files)),
			zap.Duration("duration", result.Duration),
		)
	}

	return report, nil
}

func (e *Executor) fail(result *StageResult, info progress.StageInfo, err *StageError, state *retry.RunState, log *zap.Logger) error {
	result.Status = StatusFailed
	result.Err = err
	if e.Progress != nil {
		_ = e.Progress.FailStage(info, err.Err)
	}
	log.Error("stage failed",
		zap.String("feature", err.Feature),
		zap.String("stage", err.Stage),
		zap.String("step", string(err.Step)),
		zap.String("item", err.Item),
		zap.Error(err.Err),
	)
	if saveErr := e.saveState(state); saveErr != nil {
		log.Warn("saving run state", zap.Error(saveErr))
	}
	return err
}

func (e *Executor) showSkip(info progress.StageInfo, reason string) {
	if e.Progress != nil {
		_ = e.Progress.SkipStage(info, reason)
	}
}

func (e *Executor) saveState(state *retry.RunState) error {
	if e.StateDir == "" {
		return nil
	}
	if err := retry.Save(e.StateDir, state); err != nil {
		return fmt.Errorf("saving run state: %w", err)
	}
	return nil
}

// runStage performs the four steps of one stage and returns the project
// files it wrote, relative to root.
func (e *Executor) runStage(ctx context.Context, entry plan.Entry, p *plan.Plan, root string) ([]string, *StageError) {
	stageErr := func(step Step, item string, err error) *StageError {
		se := &StageError{Feature: entry.Feature, Stage: entry.Stage, Step: step, Item: item, Err: err}
		var scriptErr *scriptFailure
		if errors.As(err, &scriptErr) {
			se.Output = scriptErr.output
			se.Err = scriptErr.err
		}
		return se
	}
	def := entry.Def
	var files []string

	for _, d := range def.Dependencies {
		name, version := d.PackageAndVersion()
		manifest := path.Join(render.Substitute(d.Workspace, p.Answers), "package.json")
		target, err := render.ResolvePath(root, manifest)
		if err == nil {
			err = codemod.MergeDependency(target, d.Section(), name, version)
		}
		if err != nil {
			return files, stageErr(StepDependencies, d.Name, err)
		}
		files = appendUnique(files, path.Clean(manifest))
	}

	copier := &render.Copier{Source: e.Templates, Vars: p.Answers}
	for _, t := range def.Templates {
		written, err := copier.Copy(t, root)
		files = append(files, written...)
		if err != nil {
			return files, stageErr(StepTemplates, t.Source, err)
		}
	}

	for _, s := range def.Scripts {
		script := render.Substitute(s.Src, p.Answers)
		dir, err := render.ResolvePath(root, render.Substitute(s.Dir, p.Answers))
		if err == nil {
			var out string
			out, err = e.Scripts.Run(ctx, script, dir)
			if err != nil {
				err = &scriptFailure{output: out, err: err}
			}
		}
		if err != nil {
			return files, stageErr(StepScripts, script, err)
		}
	}

	registry := e.Codemods
	if registry == nil {
		registry = codemod.Default()
	}
	for _, fm := range def.Mods {
		rel := render.Substitute(fm.Path, p.Answers)
		target, err := render.ResolvePath(root, rel)
		if err != nil {
			return files, stageErr(StepMods, rel, err)
		}
		for _, name := range fm.Codemods {
			if err := registry.Apply(ctx, name, target); err != nil {
				return files, stageErr(StepMods, rel+": "+name, err)
			}
		}
		files = appendUnique(files, path.Clean(rel))
	}

	return files, nil
}

// scriptFailure carries captured output from the script step to StageError.
type scriptFailure struct {
	output string
	err    error
}

func (f *scriptFailure) Error() string { return f.err.Error() }
func (f *scriptFailure) Unwrap() error { return f.err }

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
