// Package plan turns requested feature ids and user answers into an ordered,
// validated list of stages to execute.
package plan

import (
	"encoding/json"

	"github.com/stackgen/stackgen/internal/answers"
	"github.com/stackgen/stackgen/internal/dag"
	"github.com/stackgen/stackgen/internal/feature"
)

// Entry is one stage scheduled to run.
type Entry struct {
	Feature string         `json:"feature"`
	Stage   string         `json:"stage"`
	Def     *feature.Stage `json:"-"`
}

// Key identifies the entry in persisted run state.
func (e Entry) Key() string {
	return e.Feature + "/" + e.Stage
}

// Skip records a feature or stage whose activatedBy predicate was false.
// Stage is empty when the whole feature was skipped.
type Skip struct {
	Feature string `json:"feature"`
	Stage   string `json:"stage,omitempty"`
	Reason  string `json:"reason"`
}

// Plan is the resolved, ordered execution schedule for one run.
type Plan struct {
	// Requested holds the feature ids asked for, before dependency closure.
	Requested []string
	// Order is the dependency closure in execution order.
	Order []string
	// Entries are the stages to run, in order.
	Entries []Entry
	// Skipped lists what activation filtered out, in evaluation order.
	Skipped []Skip
	// Activated lists features that contributed at least one stage.
	Activated []string
	// Answers is the configuration model the plan was resolved against.
	Answers *answers.Model
	// Graph is the dependency graph of Order with node statuses set.
	Graph *dag.DependencyGraph
}

// Len returns the number of scheduled stages.
func (p *Plan) Len() int {
	return len(p.Entries)
}

// IsActive reports whether id contributed a stage.
func (p *Plan) IsActive(id string) bool {
	for _, a := range p.Activated {
		if a == id {
			return true
		}
	}
	return false
}

// StageNames returns the scheduled stage names of one feature.
func (p *Plan) StageNames(featureID string) []string {
	var out []string
	for _, e := range p.Entries {
		if e.Feature == featureID {
			out = append(out, e.Stage)
		}
	}
	return out
}

type planJSON struct {
	Order     []string       `json:"order"`
	Stages    []Entry        `json:"stages"`
	Skipped   []Skip         `json:"skipped"`
	Activated []string       `json:"activated"`
	Answers   map[string]any `json:"answers"`
}

// MarshalJSON renders the plan for the plan command's --json output.
func (p *Plan) MarshalJSON() ([]byte, error) {
	out := planJSON{
		Order:     nonNil(p.Order),
		Stages:    p.Entries,
		Skipped:   p.Skipped,
		Activated: nonNil(p.Activated),
		Answers:   p.Answers.Values(),
	}
	if out.Stages == nil {
		out.Stages = []Entry{}
	}
	if out.Skipped == nil {
		out.Skipped = []Skip{}
	}
	return json.Marshal(out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
