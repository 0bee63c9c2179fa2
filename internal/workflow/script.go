package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// DefaultShell runs stage scripts when no shell is configured.
const DefaultShell = "sh"

// ScriptRunner runs stage scripts through a shell.
type ScriptRunner struct {
	// Shell is invoked as `<Shell> -c <script>`. Defaults to DefaultShell.
	Shell string
	// Timeout bounds each script (0 = no timeout).
	Timeout time.Duration
	// Env is appended to the current environment.
	Env []string
	// Stream, when set, receives script output as it is produced in
	// addition to the captured copy.
	Stream io.Writer
}

// Run executes script in dir and returns its combined output.
// If Timeout > 0, the script is terminated after the timeout duration and
// a *TimeoutError is returned.
func (r *ScriptRunner) Run(ctx context.Context, script, dir string) (string, error) {
	shell := r.Shell
	if shell == "" {
		shell = DefaultShell
	}

	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var output bytes.Buffer
	var w io.Writer = &output
	if r.Stream != nil {
		w = io.MultiWriter(&output, r.Stream)
	}

	cmd := exec.CommandContext(runCtx, shell, "-c", script)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), r.Env...)
	cmd.Stdout = w
	cmd.Stderr = w
	// Children that inherit the pipes must not keep Wait blocked after a kill.
	cmd.WaitDelay = time.Second

	err := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return output.String(), NewTimeoutError(r.Timeout, script)
	}
	if ctx.Err() != nil {
		return output.String(), fmt.Errorf("script interrupted: %w", ctx.Err())
	}
	if err != nil {
		return output.String(), fmt.Errorf("running %s -c: %w", shell, err)
	}
	return output.String(), nil
}
