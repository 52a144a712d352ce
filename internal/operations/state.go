package operations

import (
	"sync"
	"time"

	"agrocaged/internal/exporter"
	"agrocaged/pkg/contracts/domain"
)

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunState carries the data flowing between steps of one run. Each step reads what
// earlier steps produced and writes only its own fields.
type RunState struct {
	mu sync.RWMutex

	ID        string
	Status    RunStatus
	StartTime time.Time
	EndTime   *time.Time

	steps map[string]*StepState
	order []string

	Raw                  []domain.RawMovement
	Dropped              int
	Records              []domain.EnrichedMovement
	MunicipalityNames    map[string]string
	SubclassDescriptions map[string]string
	Dashboard            *domain.Dashboard
	Artifacts            []exporter.Artifact
	Published            bool

	Error error
}

// NewRunState creates the state of a run
func NewRunState(id string, now time.Time) *RunState {
	return &RunState{
		ID:        id,
		Status:    RunStatusPending,
		StartTime: now,
		steps:     make(map[string]*StepState),
	}
}

// Start marks the run as running
func (r *RunState) Start(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
	r.StartTime = now
}

// Complete marks the run as completed
func (r *RunState) Complete(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.EndTime = &now
	r.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (r *RunState) Fail(now time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.EndTime = &now
	r.Status = RunStatusFailed
	r.Error = err
}

// Cancel marks the run as cancelled
func (r *RunState) Cancel(now time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.EndTime = &now
	r.Status = RunStatusCancelled
	r.Error = err
}

// GetStatus returns the current run status
func (r *RunState) GetStatus() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status
}

// GetStep returns the state of a specific step
func (r *RunState) GetStep(id string) *StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.steps[id]
}

// SetStep registers the state of a step, keeping first registration order
func (r *RunState) SetStep(id string, state *StepState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.steps[id]; !ok {
		r.order = append(r.order, id)
	}
	r.steps[id] = state
}

// Steps returns snapshots of every step state in execution order
func (r *RunState) Steps() []*StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*StepState, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.steps[id].Snapshot())
	}
	return out
}

// Duration returns the duration of the run
func (r *RunState) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// HasFailures returns true if any step has failed
func (r *RunState) HasFailures() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.steps {
		if s.GetStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}
