// Package errors tests how CLI errors are rendered for the terminal.
// Related: internal/errors/format.go
// Tags: errors, formatting, remediation, colors
package errors

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestFormatErrorPlain(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  *CLIError
		want string
	}{
		"nil": {
			err:  nil,
			want: "",
		},
		"message only": {
			err:  NewConfigError("config file not found: cfg.json"),
			want: "Configuration Error: config file not found: cfg.json\n",
		},
		"usage and remediation": {
			err: NoFeaturesRequested(),
			want: "Argument Error: no features requested\n" +
				"\nUsage: stackgen new <feature>... [--root dir]\n" +
				"\nTo fix this:\n" +
				"  1. Run 'stackgen features' to list the available features\n" +
				"  2. Pass one or more feature ids, or --resume to continue the last run\n",
		},
		"failed stage points at resume": {
			err: StageFailed(errors.New("feature prisma stage client failed at scripts: exit status 1"), ".stackgen"),
			want: "Runtime Error: feature prisma stage client failed at scripts: exit status 1\n" +
				"\nTo fix this:\n" +
				"  1. Files written by earlier stages were kept\n" +
				"  2. Fix the problem and re-run with --resume to continue (state in .stackgen)\n",
		},
		"missing shell": {
			err: ShellNotFound("bash"),
			want: "Prerequisite Error: shell \"bash\" not found in PATH\n" +
				"\nTo fix this:\n" +
				"  1. Install the shell or set the shell option in .stackgen/config.json\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatErrorPlain(tt.err))
		})
	}
}

// Color output is process-wide, so these cases run sequentially.
func TestFormatError_Color(t *testing.T) {
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })

	err := TimeoutError("10m0s", "npm install")

	color.NoColor = true
	assert.Equal(t, FormatErrorPlain(err), FormatError(err), "no escapes without color")

	color.NoColor = false
	colored := FormatError(err)
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, colored, "script timed out after 10m0s: npm install")
	assert.Contains(t, colored, "Increase script_timeout")
	assert.Empty(t, FormatError(nil))
}

func TestFprintError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	FprintError(&buf, nil)
	assert.Zero(t, buf.Len())

	FprintError(&buf, NothingToResume("app/.stackgen"))
	assert.Contains(t, buf.String(), "no saved run state in app/.stackgen")
	assert.Contains(t, buf.String(), "stackgen new")
}
