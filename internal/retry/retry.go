// Package retry provides persistent run state for stackgen generations.
// It tracks which feature stages completed and how many times each stage was
// attempted, so a failed run can be resumed without re-running completed
// stages. State is persisted to <state_dir>/state.json with atomic writes.
package retry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// StateFile is the file name of the run state inside the state directory.
const StateFile = "state.json"

// StageState tracks attempts and completion of one feature stage.
type StageState struct {
	Attempts    int       `json:"attempts"`
	Completed   bool      `json:"completed"`
	LastAttempt time.Time `json:"last_attempt"`
}

// RunState is the persisted progress of one generation in a project root.
type RunState struct {
	RunID     string                 `json:"run_id"`
	Features  []string               `json:"features"`
	Stages    map[string]*StageState `json:"stages"`
	StartedAt time.Time              `json:"started_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// NewRunState creates empty state for a run.
func NewRunState(runID string, features []string) *RunState {
	return &RunState{
		RunID:     runID,
		Features:  features,
		Stages:    make(map[string]*StageState),
		StartedAt: time.Now(),
	}
}

// Load reads the run state from stateDir. It returns nil, nil when no
// state has been saved yet.
// Performance contract: <10ms
func Load(stateDir string) (*RunState, error) {
	data, err := os.ReadFile(filepath.Join(stateDir, StateFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading run state: %w", err)
	}

	var state RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshaling run state: %w", err)
	}
	if state.Stages == nil {
		state.Stages = make(map[string]*StageState)
	}
	return &state, nil
}

// Save persists state atomically via temp file + rename.
func Save(stateDir string, state *RunState) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run state: %w", err)
	}

	statePath := filepath.Join(stateDir, StateFile)
	tmpPath := statePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, statePath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Reset removes any saved state. Missing state is not an error.
func Reset(stateDir string) error {
	err := os.Remove(filepath.Join(stateDir, StateFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing run state: %w", err)
	}
	return nil
}

// Stage returns the state for key, creating it when absent.
func (s *RunState) Stage(key string) *StageState {
	if s.Stages == nil {
		s.Stages = make(map[string]*StageState)
	}
	st, ok := s.Stages[key]
	if !ok {
		st = &StageState{}
		s.Stages[key] = st
	}
	return st
}

// IsCompleted reports whether the stage finished in this or an earlier attempt.
func (s *RunState) IsCompleted(key string) bool {
	st, ok := s.Stages[key]
	return ok && st.Completed
}

// BeginAttempt records a new attempt of key. It returns a
// *RetryExhaustedError when maxRetries attempts were already made.
// maxRetries <= 0 disables the limit.
func (s *RunState) BeginAttempt(key string, maxRetries int) error {
	st := s.Stage(key)
	if maxRetries > 0 && st.Attempts >= maxRetries {
		return &RetryExhaustedError{Stage: key, Count: st.Attempts, MaxRetries: maxRetries}
	}
	st.Attempts++
	st.LastAttempt = time.Now()
	return nil
}

// MarkComplete records that key finished successfully.
func (s *RunState) MarkComplete(key string) {
	s.Stage(key).Completed = true
}

// CompletedKeys returns the completed stage keys, sorted.
func (s *RunState) CompletedKeys() []string {
	var keys []string
	for k, st := range s.Stages {
		if st.Completed {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// RetryExhaustedError indicates a stage has used all of its attempts.
type RetryExhaustedError struct {
	Stage      string
	Count      int
	MaxRetries int
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retry limit exhausted for %s (%d/%d attempts)",
		e.Stage, e.Count, e.MaxRetries)
}

// ExitCode returns the exit code for retry exhausted (1)
func (e *RetryExhaustedError) ExitCode() int {
	return 1
}
