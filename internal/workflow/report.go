package workflow

import (
	"fmt"
	"strings"
	"time"
)

// StageStatus is the execution state of one planned stage.
// Transitions: pending -> running -> completed | failed | skipped.
type StageStatus string

const (
	StatusPending   StageStatus = "pending"
	StatusRunning   StageStatus = "running"
	StatusCompleted StageStatus = "completed"
	StatusFailed    StageStatus = "failed"
	StatusSkipped   StageStatus = "skipped"
)

// IsTerminal reports whether the status is final.
func (s StageStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusSkipped
}

// StageResult is the outcome of one plan entry.
type StageResult struct {
	Feature  string        `json:"feature" yaml:"feature"`
	Stage    string        `json:"stage" yaml:"stage"`
	Status   StageStatus   `json:"status" yaml:"status"`
	Reason   string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	Files    []string      `json:"files,omitempty" yaml:"files,omitempty"`
	Attempt  int           `json:"attempt,omitempty" yaml:"attempt,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Err      error         `json:"-" yaml:"-"`
}

// Key returns "feature/stage".
func (r *StageResult) Key() string {
	return r.Feature + "/" + r.Stage
}

// Report is the execution report of a run. Results follow plan order.
type Report struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	Root      string        `json:"root" yaml:"root"`
	Results   []StageResult `json:"results" yaml:"results"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Count returns how many results have status s.
func (r *Report) Count(s StageStatus) int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Status == s {
			n++
		}
	}
	return n
}

// Failed returns the failed result, or nil when nothing failed.
func (r *Report) Failed() *StageResult {
	for i := range r.Results {
		if r.Results[i].Status == StatusFailed {
			return &r.Results[i]
		}
	}
	return nil
}

// Succeeded reports whether every stage completed or was skipped.
func (r *Report) Succeeded() bool {
	for i := range r.Results {
		if !r.Results[i].Status.IsTerminal() || r.Results[i].Status == StatusFailed {
			return false
		}
	}
	return true
}

// Files returns every file written by the run, in write order.
func (r *Report) Files() []string {
	var out []string
	for i := range r.Results {
		out = append(out, r.Results[i].Files...)
	}
	return out
}

// Summary returns a one-line count of stage outcomes.
func (r *Report) Summary() string {
	parts := []string{
		fmt.Sprintf("%d completed", r.Count(StatusCompleted)),
		fmt.Sprintf("%d skipped", r.Count(StatusSkipped)),
	}
	if n := r.Count(StatusFailed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	if n := r.Count(StatusPending); n > 0 {
		parts = append(parts, fmt.Sprintf("%d not run", n))
	}
	return strings.Join(parts, ", ") + fmt.Sprintf(" in %s", r.Duration.Round(time.Millisecond))
}
