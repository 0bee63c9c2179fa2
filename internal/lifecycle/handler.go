package lifecycle

import (
	"time"

	"go.uber.org/zap"
)

// NotificationHandler receives command and stage completion events.
// The wrapper functions check for nil before calling any method.
type NotificationHandler interface {
	// OnCommandComplete is called when a CLI command finishes execution.
	OnCommandComplete(name string, success bool, duration time.Duration)
	// OnStageComplete is called when a stage ("feature/stage") finishes.
	OnStageComplete(name string, success bool)
}

// HistoryLogger is satisfied by *history.Store.
// Implementations should be non-fatal: errors during logging should not
// cause command failures.
type HistoryLogger interface {
	// WriteStart records a running entry and returns its id. An empty id
	// asks the logger to generate one.
	WriteStart(command, id string, features []string) (string, error)
	// UpdateComplete records the final status of the entry.
	UpdateComplete(id string, exitCode int, status string, duration time.Duration) error
}

// LogHandler reports completion events through a zap logger.
type LogHandler struct {
	Logger *zap.Logger
}

// NewLogHandler returns a handler that logs to logger.
func NewLogHandler(logger *zap.Logger) *LogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogHandler{Logger: logger}
}

// OnCommandComplete logs the command outcome.
func (h *LogHandler) OnCommandComplete(name string, success bool, duration time.Duration) {
	if h == nil {
		return
	}
	h.Logger.Debug("command finished",
		zap.String("command", name),
		zap.Bool("success", success),
		zap.Duration("duration", duration),
	)
}

// OnStageComplete logs the stage outcome.
func (h *LogHandler) OnStageComplete(name string, success bool) {
	if h == nil {
		return
	}
	h.Logger.Debug("stage finished", zap.String("stage", name), zap.Bool("success", success))
}
