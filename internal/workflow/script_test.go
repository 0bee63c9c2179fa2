package workflow

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptRunner_Run(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		runner     ScriptRunner
		script     string
		wantOutput string
		wantErr    string
	}{
		"captures stdout and stderr": {
			script:     "echo out; echo err >&2",
			wantOutput: "out\nerr\n",
		},
		"non-zero exit": {
			script:     "echo partial; exit 7",
			wantOutput: "partial\n",
			wantErr:    "exit status 7",
		},
		"extra environment": {
			runner:     ScriptRunner{Env: []string{"STACKGEN_TEST_VALUE=hello"}},
			script:     "echo $STACKGEN_TEST_VALUE",
			wantOutput: "hello\n",
		},
		"explicit shell": {
			runner:     ScriptRunner{Shell: "sh"},
			script:     "printf ok",
			wantOutput: "ok",
		},
		"missing shell": {
			runner:  ScriptRunner{Shell: "stackgen-no-such-shell"},
			script:  "true",
			wantErr: "running stackgen-no-such-shell -c",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := tc.runner.Run(context.Background(), tc.script, t.TempDir())
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantOutput, out)
		})
	}
}

func TestScriptRunner_RunsInDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := ScriptRunner{}
	_, err := r.Run(context.Background(), "touch marker", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "marker"))
}

func TestScriptRunner_Timeout(t *testing.T) {
	t.Parallel()

	r := ScriptRunner{Timeout: 100 * time.Millisecond}
	start := time.Now()
	_, err := r.Run(context.Background(), "sleep 5", t.TempDir())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "sleep 5", timeoutErr.Command)
	assert.Equal(t, 100*time.Millisecond, timeoutErr.Timeout)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestScriptRunner_ParentCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := ScriptRunner{Timeout: time.Minute}
	_, err := r.Run(ctx, "sleep 5", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script interrupted")

	var timeoutErr *TimeoutError
	assert.False(t, errors.As(err, &timeoutErr), "cancellation is not a timeout")
}

func TestScriptRunner_Stream(t *testing.T) {
	t.Parallel()

	var streamed bytes.Buffer
	r := ScriptRunner{Stream: &streamed}
	out, err := r.Run(context.Background(), "echo one; echo two", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", out)
	assert.Equal(t, out, streamed.String())
}
