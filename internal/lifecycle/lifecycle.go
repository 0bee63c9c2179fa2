// Package lifecycle wraps generation runs and their stages with timing,
// notification dispatch and two-phase history logging.
package lifecycle

import (
	"context"
	"errors"
	"time"
)

// History statuses written by the wrappers. They match the history package.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Invocation describes the command being wrapped for history logging.
type Invocation struct {
	// Command is the command name (e.g., "new").
	Command string
	// ID is the history entry id; generation runs pass their run id.
	ID string
	// Features lists the requested feature ids.
	Features []string
}

// runWithContext times fn and dispatches the command notification. A
// context cancelled before fn starts is returned without calling fn.
func runWithContext(ctx context.Context, handler NotificationHandler, name string, fn func(context.Context) error) error {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		notifyCommandComplete(handler, name, false, time.Since(start))
		return err
	}

	fnErr := fn(ctx)
	notifyCommandComplete(handler, name, fnErr == nil, time.Since(start))

	return fnErr
}

// RunStage wraps a single stage with notification dispatch.
func RunStage(handler NotificationHandler, name string, fn func() error) error {
	fnErr := fn()
	notifyStageComplete(handler, name, fnErr == nil)
	return fnErr
}

// RunWithHistoryContext wraps a generation run with timing, notification
// dispatch and two-phase history logging: a running entry is written before
// fn starts and completed with status and exit code after. A context
// cancelled before or during fn is recorded as cancelled. A nil logger skips
// history; logger failures never change the result, which is fn's error.
func RunWithHistoryContext(ctx context.Context, handler NotificationHandler, logger HistoryLogger, inv Invocation, fn func(context.Context) error) error {
	start := time.Now()
	id := writeStart(logger, inv)

	fnErr := runWithContext(ctx, handler, inv.Command, fn)

	if id != "" {
		status, exitCode := determineStatusAndCode(fnErr)
		updateComplete(logger, id, exitCode, status, time.Since(start))
	}
	return fnErr
}

// exitCoder is implemented by errors that carry a process exit code.
type exitCoder interface {
	ExitCode() int
}

// determineStatusAndCode maps a command error to a history status and exit code.
func determineStatusAndCode(err error) (string, int) {
	if err == nil {
		return StatusCompleted, 0
	}
	status := StatusFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = StatusCancelled
	}
	var coded exitCoder
	if errors.As(err, &coded) && coded.ExitCode() != 0 {
		return status, coded.ExitCode()
	}
	return status, 1
}

func writeStart(logger HistoryLogger, inv Invocation) (id string) {
	if logger == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	id, err := logger.WriteStart(inv.Command, inv.ID, inv.Features)
	if err != nil {
		return ""
	}
	return id
}

func updateComplete(logger HistoryLogger, id string, exitCode int, status string, duration time.Duration) {
	defer func() { _ = recover() }()
	_ = logger.UpdateComplete(id, exitCode, status, duration)
}

// notifyCommandComplete safely calls OnCommandComplete with panic recovery.
func notifyCommandComplete(handler NotificationHandler, name string, success bool, duration time.Duration) {
	if handler == nil {
		return
	}
	defer func() { _ = recover() }()
	handler.OnCommandComplete(name, success, duration)
}

// notifyStageComplete safely calls OnStageComplete with panic recovery.
func notifyStageComplete(handler NotificationHandler, name string, success bool) {
	if handler == nil {
		return
	}
	defer func() { _ = recover() }()
	handler.OnStageComplete(name, success)
}
