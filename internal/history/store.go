// Package history keeps the run log of a project in <state_dir>/history.yaml.
// Every generation run is written twice: once as running when it starts and
// again with its outcome. A resumed run keeps its id, so one id may appear on
// several entries.
package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileName is the history file inside the state directory.
const FileName = "history.yaml"

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Entry is one recorded run.
type Entry struct {
	ID          string     `yaml:"id"`
	Command     string     `yaml:"command"`
	Features    []string   `yaml:"features,omitempty"` // as requested, before closure
	Status      string     `yaml:"status"`
	CreatedAt   time.Time  `yaml:"created_at"`
	CompletedAt *time.Time `yaml:"completed_at,omitempty"`
	ExitCode    int        `yaml:"exit_code"`
	Duration    string     `yaml:"duration,omitempty"`
}

// Log is the decoded history file, oldest entry first.
type Log struct {
	Entries []Entry `yaml:"entries"`
}

// ErrEntryNotFound is returned by UpdateComplete for an id with no entry.
var ErrEntryNotFound = errors.New("history entry not found")

// Store reads and writes the history file of one state directory.
type Store struct {
	Dir string
	// MaxEntries bounds the log; the oldest entries are dropped first.
	// Zero keeps everything.
	MaxEntries int
	Logger     *zap.Logger
}

// NewStore returns a store for the history file in dir.
func NewStore(dir string, maxEntries int, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{Dir: dir, MaxEntries: maxEntries, Logger: logger}
}

// Path returns the location of the history file.
func (s *Store) Path() string {
	return filepath.Join(s.Dir, FileName)
}

// Load reads the log. A missing file is an empty log. A file that does not
// decode is renamed to history.yaml.corrupt and an empty log is returned.
func (s *Store) Load() (*Log, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return &Log{Entries: []Entry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var l Log
	if err := yaml.Unmarshal(data, &l); err != nil {
		aside := s.Path() + ".corrupt"
		if mvErr := os.Rename(s.Path(), aside); mvErr != nil {
			return nil, fmt.Errorf("moving unreadable history aside: %w", mvErr)
		}
		s.logger().Warn("history file unreadable, starting a new one",
			zap.String("moved_to", aside), zap.Error(err))
		return &Log{Entries: []Entry{}}, nil
	}
	if l.Entries == nil {
		l.Entries = []Entry{}
	}
	return &l, nil
}

// Save replaces the history file with l.
func (s *Store) Save(l *Log) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("replacing history: %w", err)
	}
	return nil
}

// Clear empties the log.
func (s *Store) Clear() error {
	return s.Save(&Log{Entries: []Entry{}})
}

// update loads the log, applies fn, trims it to MaxEntries and saves it.
func (s *Store) update(fn func(*Log) error) error {
	l, err := s.Load()
	if err != nil {
		return err
	}
	if err := fn(l); err != nil {
		return err
	}
	if s.MaxEntries > 0 && len(l.Entries) > s.MaxEntries {
		l.Entries = l.Entries[len(l.Entries)-s.MaxEntries:]
	}
	return s.Save(l)
}

// WriteStart appends a running entry and returns its id, generating one
// when id is empty.
func (s *Store) WriteStart(command, id string, features []string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	err := s.update(func(l *Log) error {
		l.Entries = append(l.Entries, Entry{
			ID:        id,
			Command:   command,
			Features:  append([]string(nil), features...),
			Status:    StatusRunning,
			CreatedAt: time.Now(),
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateComplete records the outcome on the newest entry with id.
func (s *Store) UpdateComplete(id string, exitCode int, status string, duration time.Duration) error {
	return s.update(func(l *Log) error {
		e := l.latest(id)
		if e == nil {
			return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}
		now := time.Now()
		e.Status = status
		e.ExitCode = exitCode
		e.Duration = duration.String()
		e.CompletedAt = &now
		return nil
	})
}

func (s *Store) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (l *Log) latest(id string) *Entry {
	for i := len(l.Entries) - 1; i >= 0; i-- {
		if l.Entries[i].ID == id {
			return &l.Entries[i]
		}
	}
	return nil
}
