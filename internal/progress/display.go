package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// ProgressDisplay writes one line per stage outcome. On a terminal the
// running stage is shown on a spinner instead of its own line.
type ProgressDisplay struct {
	caps    TerminalCapabilities
	symbols ProgressSymbols
	out     io.Writer
	spinner *spinner.Spinner

	ok, failed, skipped *color.Color
}

// NewProgressDisplay returns a display writing to out, or stdout when out
// is nil.
func NewProgressDisplay(caps TerminalCapabilities, out io.Writer) *ProgressDisplay {
	if out == nil {
		out = os.Stdout
	}
	d := &ProgressDisplay{
		caps:    caps,
		symbols: SelectSymbols(caps),
		out:     out,
		ok:      color.New(color.FgGreen),
		failed:  color.New(color.FgRed),
		skipped: color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{d.ok, d.failed, d.skipped} {
		// ASCII marks stay plain so logs and pipes read cleanly.
		if caps.SupportsColor && caps.SupportsUnicode {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return d
}

// StartStage announces stage as running.
func (d *ProgressDisplay) StartStage(stage StageInfo) error {
	if err := stage.Validate(); err != nil {
		return err
	}
	msg := fmt.Sprintf("%s Running %s%s", stage.counter(), stage.Label(), stage.attemptSuffix())

	if !d.caps.IsTTY {
		fmt.Fprintln(d.out, msg)
		return nil
	}
	d.StopSpinner()
	opt := spinner.WithWriter(d.out)
	if f, ok := d.out.(*os.File); ok {
		opt = spinner.WithWriterFile(f)
	}
	d.spinner = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], 100*time.Millisecond, opt)
	d.spinner.Suffix = " " + msg
	d.spinner.Start()
	return nil
}

// CompleteStage reports stage as done.
func (d *ProgressDisplay) CompleteStage(stage StageInfo) error {
	d.finish(d.ok.Sprint(d.symbols.Checkmark), stage, "complete")
	return nil
}

// FailStage reports stage as failed with err.
func (d *ProgressDisplay) FailStage(stage StageInfo, err error) error {
	d.finish(d.failed.Sprint(d.symbols.Failure), stage, fmt.Sprintf("failed: %v", err))
	return nil
}

// SkipStage reports stage as not run, with the reason.
func (d *ProgressDisplay) SkipStage(stage StageInfo, reason string) error {
	d.finish(d.skipped.Sprint(d.symbols.Skip), stage, "skipped: "+reason)
	return nil
}

func (d *ProgressDisplay) finish(mark string, stage StageInfo, outcome string) {
	d.StopSpinner()
	fmt.Fprintf(d.out, "%s %s %s %s\n", mark, stage.counter(), stage.Label(), outcome)
}

// StopSpinner clears the running spinner, if any.
func (d *ProgressDisplay) StopSpinner() {
	if d.spinner != nil {
		d.spinner.Stop()
		d.spinner = nil
	}
}
