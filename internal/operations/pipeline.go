package operations

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"agrocaged/internal/infrastructure"
)

// Pipeline runs the batch steps from microdata to a published output set
type Pipeline struct {
	deps    *Dependencies
	manager *Manager
}

// NewPipeline registers the batch steps. The publish step is only registered
// when deps carries a Publisher.
func NewPipeline(deps Dependencies, metrics *infrastructure.PipelineMetrics) (*Pipeline, error) {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Assets == nil {
		return nil, NewFatalError("classification assets are required", nil)
	}

	d := &deps
	steps := []Step{
		NewLoadStep(d),
		NewValidateStep(d),
		NewScopeStep(d),
		NewEnrichStep(d),
		NewAggregateStep(d),
		NewExportStep(d),
		NewPromoteStep(d),
	}
	if d.Publisher != nil {
		steps = append(steps, NewPublishStep(d))
	}

	registry := NewRegistry()
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, NewFatalError("register step", err)
		}
	}
	if err := registry.ValidateDependencies(); err != nil {
		return nil, NewFatalError("invalid step graph", err)
	}

	return &Pipeline{
		deps:    d,
		manager: NewManager(registry, d.Clock, NewRunTracer(metrics), d.Logger),
	}, nil
}

// Run executes one batch run. The staging directory is discarded when the run
// fails before promotion, leaving any previous output set untouched.
func (p *Pipeline) Run(ctx context.Context, runID string) (*RunResult, error) {
	run, err := p.manager.NewRun(runID)
	if err != nil {
		return nil, err
	}

	result, err := p.manager.Execute(ctx, run)
	if err != nil {
		if promote := run.GetStep(StepIDPromote); promote == nil || promote.GetStatus() != StepStatusCompleted {
			if derr := p.deps.Layout.Discard(); derr != nil {
				p.deps.Logger.WarnContext(ctx, "failed to discard staging directory",
					slog.String("path", p.deps.Layout.Staging),
					slog.String("error", derr.Error()))
			}
		}
		return result, err
	}

	result.OutputDir = p.deps.Layout.Root
	result.Dashboard = run.Dashboard
	return result, nil
}

// Steps lists the registered steps in execution order
func (p *Pipeline) Steps() []Step {
	steps, _ := p.manager.Registry().GetDependencyOrder()
	return steps
}
