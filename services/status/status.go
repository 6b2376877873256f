package status

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"bverlaan/yogabench/logger"
)

// State is the lifecycle state of a refresh run.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateSuccess State = "success"
	StateFailed  State = "failed"
)

// ErrAlreadyRunning is returned by Begin when a run is in progress.
var ErrAlreadyRunning = errors.New("a refresh run is already in progress")

// Record is the persisted view of the current run.
type Record struct {
	Status     State  `json:"status"`
	Message    string `json:"message"`
	StartedAt  string `json:"started_at,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
	InProgress bool   `json:"in_progress"`
}

// Tracker is the run-state machine: idle -> running -> success|failed.
// Transitions are triggered only by the refresh worker and guarded by a
// mutex so at most one run can be in progress. Every transition overwrites
// the status file (last-writer-wins); a malformed file reads as idle.
type Tracker struct {
	mu      sync.Mutex
	path    string
	running bool
	record  Record
	log     *logger.Logger
}

// NewTracker loads the persisted record from path. A previous run left in
// "running" by a crash is reported as failed, never as in progress.
func NewTracker(path string) *Tracker {
	t := &Tracker{
		path:   path,
		record: Record{Status: StateIdle},
		log:    logger.ForWorker(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return t
	}
	if record.Status == StateRunning {
		record.Status = StateFailed
		record.Message = "previous run did not finish"
	}
	record.InProgress = false
	t.record = record
	return t
}

// Begin transitions to running. It fails with ErrAlreadyRunning when a run
// is in progress.
func (t *Tracker) Begin(message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return ErrAlreadyRunning
	}
	t.running = true
	t.record = Record{
		Status:     StateRunning,
		Message:    message,
		StartedAt:  time.Now().UTC().Format(time.RFC3339),
		InProgress: true,
	}
	t.persist()
	return nil
}

// Succeed transitions the current run to success.
func (t *Tracker) Succeed(message string) {
	t.finish(StateSuccess, message)
}

// Fail transitions the current run to failed with the captured error text.
func (t *Tracker) Fail(message string) {
	t.finish(StateFailed, message)
}

func (t *Tracker) finish(state State, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = false
	t.record.Status = state
	t.record.Message = message
	t.record.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	t.record.InProgress = false
	t.persist()
}

// Snapshot returns a copy of the current record.
func (t *Tracker) Snapshot() Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.record
}

// InProgress reports whether a run is currently running.
func (t *Tracker) InProgress() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// persist writes the record to the status file. Auxiliary state favors
// availability: a write failure is logged, not raised.
func (t *Tracker) persist() {
	data, err := json.MarshalIndent(t.record, "", "  ")
	if err != nil {
		t.log.WithError(err).Error("Failed to marshal refresh status")
		return
	}
	if err := os.WriteFile(t.path, data, 0644); err != nil {
		t.log.WithError(err).Error("Failed to write refresh status")
	}
}
