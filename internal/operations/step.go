package operations

import (
	"context"
	"sync"
	"time"
)

// Step is a single unit of work in a run
type Step interface {
	// ID returns the unique identifier for this step
	ID() string

	// Name returns the human-readable name for this step
	Name() string

	// Execute runs the step against the shared run state
	Execute(ctx context.Context, run *RunState) error

	// Validate checks that the run state holds what the step needs
	Validate(run *RunState) error

	// GetDependencies returns the IDs of steps that must complete before this step
	GetDependencies() []string
}

// StepStatus represents the current status of a step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a step
type StepState struct {
	mu        sync.RWMutex
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    StepStatus     `json:"status"`
	StartTime *time.Time     `json:"start_time,omitempty"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Message   string         `json:"message,omitempty"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewStepState creates a new step state with default values
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:       id,
		Name:     name,
		Status:   StepStatusPending,
		Metadata: make(map[string]any),
	}
}

// Start marks the step as active
func (s *StepState) Start(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the step as completed
func (s *StepState) Complete(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EndTime = &now
	s.Status = StepStatusCompleted
}

// Fail marks the step as failed with the given error
func (s *StepState) Fail(now time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EndTime = &now
	s.Status = StepStatusFailed
	if err != nil {
		s.Error = err.Error()
	}
}

// Skip marks the step as skipped with the given reason
func (s *StepState) Skip(now time.Time, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// SetMetadata records a value on the step
func (s *StepState) SetMetadata(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Metadata[key] = value
}

// GetStatus returns the current status
func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns the duration of a finished step, zero otherwise
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.StartTime == nil || s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(*s.StartTime)
}

// Snapshot returns a copy safe to read while the run continues
func (s *StepState) Snapshot() *StepState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := &StepState{
		ID:        s.ID,
		Name:      s.Name,
		Status:    s.Status,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Message:   s.Message,
		Error:     s.Error,
		Metadata:  make(map[string]any, len(s.Metadata)),
	}
	for k, v := range s.Metadata {
		c.Metadata[k] = v
	}
	return c
}

// BaseStep provides common functionality for step implementations
type BaseStep struct {
	id           string
	name         string
	dependencies []string
}

// NewBaseStep creates a new base step
func NewBaseStep(id, name string, dependencies ...string) BaseStep {
	if dependencies == nil {
		dependencies = []string{}
	}
	return BaseStep{id: id, name: name, dependencies: dependencies}
}

// ID returns the step ID
func (b *BaseStep) ID() string { return b.id }

// Name returns the step name
func (b *BaseStep) Name() string { return b.name }

// GetDependencies returns the step dependencies
func (b *BaseStep) GetDependencies() []string { return b.dependencies }

// Validate provides a default validation that always passes
func (b *BaseStep) Validate(*RunState) error { return nil }
