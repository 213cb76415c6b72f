package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Run status values.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Tally counts outcomes for one category.
type Tally struct {
	Category  Category `json:"category"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
}

// Run is one press of the delete button.
type Run struct {
	ID          string     `json:"id"`
	Host        string     `json:"host"`
	WorkspaceID string     `json:"workspace_id,omitempty"`
	Categories  []Category `json:"categories"`
	Options     Options    `json:"options"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	Output      []string   `json:"output"`
	Tallies     []Tally    `json:"tallies,omitempty"`
	mu          sync.Mutex
}

// AppendLog adds a status line to the run output.
func (r *Run) AppendLog(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Output = append(r.Output, line)
}

// LogsSince returns status lines starting from the given index.
func (r *Run) LogsSince(offset int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offset >= len(r.Output) {
		return nil
	}
	lines := make([]string, len(r.Output)-offset)
	copy(lines, r.Output[offset:])
	return lines
}

// Lines returns the full output tagged for display.
func (r *Run) Lines() []StatusLine {
	return ClassifyAll(r.LogsSince(0))
}

// State returns the current status under the lock.
func (r *Run) State() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Status
}

// Done reports whether the run has finished either way.
func (r *Run) Done() bool {
	s := r.State()
	return s == RunCompleted || s == RunFailed
}

// Complete marks the run as completed with its per-category tallies.
func (r *Run) Complete(tallies []Tally) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunCompleted
	r.Tallies = tallies
	now := time.Now()
	r.FinishedAt = &now
}

// Fail marks the run as failed with an error message, keeping the tallies
// of whatever ran before the failure.
func (r *Run) Fail(err string, tallies []Tally) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunFailed
	r.Error = err
	r.Tallies = tallies
	now := time.Now()
	r.FinishedAt = &now
}

// Snapshot returns a copy that is safe to serialize while the run is still writing.
func (r *Run) Snapshot() *Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &Run{
		ID:          r.ID,
		Host:        r.Host,
		WorkspaceID: r.WorkspaceID,
		Categories:  r.Categories,
		Options:     r.Options,
		Status:      r.Status,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Error:       r.Error,
		Output:      append([]string{}, r.Output...),
		Tallies:     append([]Tally(nil), r.Tallies...),
	}
	return c
}

// RunStore is an in-memory thread-safe store for runs.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewRunStore creates an empty run store.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*Run)}
}

// Create adds a new running run, assigning it a UUID.
func (s *RunStore) Create(host, workspaceID string, categories []Category, opts Options) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &Run{
		ID:          uuid.New().String(),
		Host:        host,
		WorkspaceID: workspaceID,
		Categories:  categories,
		Options:     opts,
		Status:      RunRunning,
		StartedAt:   time.Now(),
		Output:      []string{},
	}
	s.runs[r.ID] = r
	return r
}

// Get returns a run by ID.
func (s *RunStore) Get(id string) *Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs[id]
}

// List returns all runs, most recent first.
func (s *RunStore) List() []*Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Run, 0, len(s.runs))
	for _, r := range s.runs {
		result = append(result, r)
	}
	// Sort by started_at descending
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].StartedAt.After(result[i].StartedAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result
}
