// Package lifecycle tests run and stage wrappers: notifications, history
// records and exit codes.
// Related: internal/lifecycle/lifecycle.go, internal/lifecycle/handler.go
// Tags: lifecycle, history, notification, stages

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingHandler keeps every event it receives as "name=success".
type recordingHandler struct {
	commands []string
	stages   []string
	panics   bool
}

func (h *recordingHandler) OnCommandComplete(name string, success bool, _ time.Duration) {
	if h.panics {
		panic("handler failure")
	}
	h.commands = append(h.commands, fmt.Sprintf("%s=%t", name, success))
}

func (h *recordingHandler) OnStageComplete(name string, success bool) {
	if h.panics {
		panic("handler failure")
	}
	h.stages = append(h.stages, fmt.Sprintf("%s=%t", name, success))
}

// historyRecord is one completed history entry.
type historyRecord struct {
	id       string
	exitCode int
	status   string
}

type memoryHistory struct {
	started  []Invocation
	done     []historyRecord
	startErr error
	panics   bool
}

func (m *memoryHistory) WriteStart(command, id string, features []string) (string, error) {
	if m.panics {
		panic("history failure")
	}
	if m.startErr != nil {
		return "", m.startErr
	}
	m.started = append(m.started, Invocation{Command: command, ID: id, Features: features})
	if id == "" {
		id = "generated"
	}
	return id, nil
}

func (m *memoryHistory) UpdateComplete(id string, exitCode int, status string, _ time.Duration) error {
	m.done = append(m.done, historyRecord{id: id, exitCode: exitCode, status: status})
	return nil
}

type codedError struct{ code int }

func (e *codedError) Error() string { return fmt.Sprintf("failed with %d", e.code) }
func (e *codedError) ExitCode() int { return e.code }

func TestRunWithHistoryContext(t *testing.T) {
	t.Parallel()

	inv := Invocation{Command: "new", ID: "run-1", Features: []string{"prisma"}}

	tests := map[string]struct {
		fnErr      error
		cancel     bool
		wantCalled bool
		wantStatus string
		wantCode   int
		wantEvent  string
	}{
		"success": {
			wantCalled: true,
			wantStatus: StatusCompleted,
			wantCode:   0,
			wantEvent:  "new=true",
		},
		"stage failure keeps its exit code": {
			fnErr:      fmt.Errorf("prisma/schema: %w", &codedError{code: 5}),
			wantCalled: true,
			wantStatus: StatusFailed,
			wantCode:   5,
			wantEvent:  "new=false",
		},
		"plain error exits 1": {
			fnErr:      errors.New("disk full"),
			wantCalled: true,
			wantStatus: StatusFailed,
			wantCode:   1,
			wantEvent:  "new=false",
		},
		"interrupted run": {
			fnErr:      fmt.Errorf("run interrupted: %w", context.Canceled),
			wantCalled: true,
			wantStatus: StatusCancelled,
			wantCode:   1,
			wantEvent:  "new=false",
		},
		"cancelled before start": {
			cancel:     true,
			wantStatus: StatusCancelled,
			wantCode:   1,
			wantEvent:  "new=false",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				cancel()
			}

			handler := &recordingHandler{}
			hist := &memoryHistory{}
			called := false

			err := RunWithHistoryContext(ctx, handler, hist, inv, func(context.Context) error {
				called = true
				return tt.fnErr
			})

			assert.Equal(t, tt.wantCalled, called)
			if tt.fnErr == nil && !tt.cancel {
				assert.NoError(t, err)
			}
			if tt.fnErr != nil {
				assert.Same(t, tt.fnErr, err)
			}
			if tt.cancel {
				assert.ErrorIs(t, err, context.Canceled)
			}
			require.Equal(t, []Invocation{inv}, hist.started)
			assert.Equal(t, []historyRecord{{id: "run-1", exitCode: tt.wantCode, status: tt.wantStatus}}, hist.done)
			assert.Equal(t, []string{tt.wantEvent}, handler.commands)
		})
	}
}

func TestRunWithHistoryContext_HistoryFailuresAreIgnored(t *testing.T) {
	t.Parallel()

	tests := map[string]*memoryHistory{
		"write start fails":  {startErr: errors.New("read-only state dir")},
		"write start panics": {panics: true},
	}

	for name, hist := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ran := false
			err := RunWithHistoryContext(context.Background(), nil, hist, Invocation{Command: "new"}, func(context.Context) error {
				ran = true
				return nil
			})
			require.NoError(t, err)
			assert.True(t, ran)
			assert.Empty(t, hist.done, "no completion without a started entry")
		})
	}
}

func TestRunWithHistoryContext_NilCollaborators(t *testing.T) {
	t.Parallel()

	err := RunWithHistoryContext(context.Background(), nil, nil, Invocation{Command: "new"}, func(context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestRunWithHistoryContext_GeneratedID(t *testing.T) {
	t.Parallel()

	hist := &memoryHistory{}
	require.NoError(t, RunWithHistoryContext(context.Background(), nil, hist, Invocation{Command: "new"}, func(context.Context) error {
		return nil
	}))
	require.Len(t, hist.done, 1)
	assert.Equal(t, "generated", hist.done[0].id)
}

func TestRunStage(t *testing.T) {
	t.Parallel()

	errScript := errors.New("exit status 1")

	tests := map[string]struct {
		handler   *recordingHandler
		fnErr     error
		wantEvent []string
	}{
		"completed stage": {
			handler:   &recordingHandler{},
			wantEvent: []string{"prisma/schema=true"},
		},
		"failed stage": {
			handler:   &recordingHandler{},
			fnErr:     errScript,
			wantEvent: []string{"prisma/schema=false"},
		},
		"panicking handler": {
			handler: &recordingHandler{panics: true},
			fnErr:   errScript,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := RunStage(tt.handler, "prisma/schema", func() error { return tt.fnErr })
			assert.Equal(t, tt.fnErr, err)
			assert.Equal(t, tt.wantEvent, tt.handler.stages)
		})
	}

	assert.NoError(t, RunStage(nil, "a/b", func() error { return nil }))
}

func TestLogHandler(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	h := NewLogHandler(zap.New(core))

	h.OnStageComplete("tailwind/css", false)
	h.OnCommandComplete("new", true, 2*time.Second)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "stage finished", entries[0].Message)
	assert.Equal(t, map[string]any{"stage": "tailwind/css", "success": false}, entries[0].ContextMap())
	assert.Equal(t, "command finished", entries[1].Message)
	assert.Equal(t, "new", entries[1].ContextMap()["command"])

	var nilHandler *LogHandler
	assert.NotPanics(t, func() { nilHandler.OnStageComplete("x/y", true) })
	assert.NotPanics(t, func() { NewLogHandler(nil).OnCommandComplete("new", true, 0) })
}
