// Package progress renders per-stage status lines and spinners while a
// plan executes.
package progress

import (
	"fmt"

	apperrors "github.com/stackgen/stackgen/internal/errors"
)

// StageInfo locates one plan stage for display.
type StageInfo struct {
	Feature     string
	Name        string
	Number      int // 1-based position in the plan
	TotalStages int
	Attempt     int
	MaxRetries  int // 0 means unlimited
}

// Label returns "feature/stage", or the bare stage name without a feature.
func (s StageInfo) Label() string {
	if s.Feature == "" {
		return s.Name
	}
	return s.Feature + "/" + s.Name
}

// Validate rejects stage positions that cannot be rendered as [N/Total].
func (s StageInfo) Validate() error {
	switch {
	case s.Name == "":
		return apperrors.NewArgumentError("stage name cannot be empty")
	case s.Number < 1 || s.TotalStages < 1:
		return apperrors.NewArgumentError(fmt.Sprintf("stage %s: position %d/%d must be positive", s.Label(), s.Number, s.TotalStages))
	case s.Number > s.TotalStages:
		return apperrors.NewArgumentError(fmt.Sprintf("stage %s: position %d exceeds %d stages", s.Label(), s.Number, s.TotalStages))
	case s.Attempt < 0 || s.MaxRetries < 0:
		return apperrors.NewArgumentError(fmt.Sprintf("stage %s: attempt counters cannot be negative", s.Label()))
	}
	return nil
}

func (s StageInfo) counter() string {
	return fmt.Sprintf("[%d/%d]", s.Number, s.TotalStages)
}

func (s StageInfo) attemptSuffix() string {
	switch {
	case s.Attempt <= 1:
		return ""
	case s.MaxRetries > 0:
		return fmt.Sprintf(" (attempt %d/%d)", s.Attempt, s.MaxRetries)
	default:
		return fmt.Sprintf(" (attempt %d)", s.Attempt)
	}
}

// TerminalCapabilities describes the writer progress is rendered to.
type TerminalCapabilities struct {
	IsTTY           bool // whether the progress writer is a terminal
	SupportsColor   bool
	SupportsUnicode bool
	Width           int // columns, 0 when unknown
}

// ProgressSymbols holds the outcome marks and the spinner.CharSets index.
type ProgressSymbols struct {
	Checkmark  string
	Failure    string
	Skip       string
	SpinnerSet int
}
