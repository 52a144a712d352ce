package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"agrocaged/internal/infrastructure"
)

// Manager executes the registered steps of a run in dependency order, one at a time.
// A failing step stops the run and every later step is marked skipped.
type Manager struct {
	registry *Registry
	clock    clockwork.Clock
	tracer   *RunTracer
	logger   *slog.Logger
}

// NewManager creates a manager. A nil clock uses the real clock.
func NewManager(registry *Registry, clock clockwork.Clock, tracer *RunTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if tracer == nil {
		tracer = NewRunTracer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		clock:    clock,
		tracer:   tracer,
		logger:   logger.With(slog.String("component", "operations")),
	}
}

// Registry returns the registry steps are taken from
func (m *Manager) Registry() *Registry {
	return m.registry
}

// NewRun prepares the state of a run. An empty id generates one.
func (m *Manager) NewRun(id string) (*RunState, error) {
	if id == "" {
		id = uuid.NewString()
	}
	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		return nil, NewFatalError("invalid step graph", err)
	}

	run := NewRunState(id, m.clock.Now())
	for _, step := range steps {
		run.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}
	return run, nil
}

// Execute runs every step against run
func (m *Manager) Execute(ctx context.Context, run *RunState) (*RunResult, error) {
	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		err = NewFatalError("invalid step graph", err)
		run.Fail(m.clock.Now(), err)
		return m.result(run), err
	}

	ctx = infrastructure.WithTraceID(ctx, run.ID)
	ctx, span := m.tracer.StartRun(ctx, run.ID, len(steps))

	run.Start(m.clock.Now())
	m.logRunStart(ctx, run.ID, len(steps))

	err = m.executeSequential(ctx, run, steps)
	now := m.clock.Now()
	switch {
	case err == nil:
		run.Complete(now)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		run.Cancel(now, err)
	default:
		run.Fail(now, err)
	}

	m.tracer.EndRun(ctx, span, len(run.Artifacts), err)
	m.logRunComplete(ctx, run.ID, run.Duration(), run.GetStatus())
	return m.result(run), err
}

func (m *Manager) executeSequential(ctx context.Context, run *RunState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(run, steps[i:], "run cancelled")
			return NewCancellationError(step.ID(), err)
		}

		if err := m.checkDependencies(run, step); err != nil {
			m.skipRemaining(run, steps[i:], err.Error())
			return err
		}

		m.logStepStart(ctx, run.ID, step, i+1, len(steps))
		if err := m.executeStep(ctx, run, step); err != nil {
			m.logStepError(ctx, run.ID, step.ID(), err)
			m.skipRemaining(run, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

func (m *Manager) executeStep(ctx context.Context, run *RunState, step Step) error {
	state := run.GetStep(step.ID())
	if state == nil {
		state = NewStepState(step.ID(), step.Name())
		run.SetStep(step.ID(), state)
	}

	stepCtx, span := m.tracer.StartStep(ctx, run.ID, step)
	start := m.clock.Now()
	state.Start(start)

	err := step.Validate(run)
	if err != nil {
		err = NewValidationError(step.ID(), err)
	} else if err = step.Execute(stepCtx, run); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = NewCancellationError(step.ID(), err)
		} else {
			err = WrapError(err, step.ID())
		}
	}

	end := m.clock.Now()
	rows, _ := state.Snapshot().Metadata[MetaRows].(int)
	m.tracer.EndStep(stepCtx, span, step.ID(), end.Sub(start), rows, err)

	if err != nil {
		state.Fail(end, err)
		return err
	}
	state.Complete(end)
	m.logStepComplete(ctx, run.ID, step.ID(), end.Sub(start))
	return nil
}

func (m *Manager) checkDependencies(run *RunState, step Step) error {
	for _, dep := range step.GetDependencies() {
		depState := run.GetStep(dep)
		if depState == nil {
			return NewDependencyError(step.ID(), dep, fmt.Sprintf("dependency %s not found", dep))
		}
		if status := depState.GetStatus(); status != StepStatusCompleted {
			return NewDependencyError(step.ID(), dep, fmt.Sprintf("dependency %s not completed (status: %s)", dep, status))
		}
	}
	return nil
}

func (m *Manager) skipRemaining(run *RunState, steps []Step, reason string) {
	now := m.clock.Now()
	for _, step := range steps {
		if state := run.GetStep(step.ID()); state != nil && state.GetStatus() == StepStatusPending {
			state.Skip(now, reason)
		}
	}
}

func (m *Manager) result(run *RunState) *RunResult {
	res := &RunResult{
		RunID:    run.ID,
		Status:   run.GetStatus(),
		Duration: run.Duration(),
		Steps:    run.Steps(),
	}
	if run.Error != nil {
		res.Error = run.Error.Error()
	}
	return res
}
