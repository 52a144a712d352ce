package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"agrocaged/internal/infrastructure"
)

const (
	TracerName = "agrocaged.operations"
)

// RunTracer wraps runs and steps in spans and records their metrics.
// A nil metrics value disables metric recording.
type RunTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewRunTracer creates a tracer on the global tracer provider
func NewRunTracer(metrics *infrastructure.PipelineMetrics) *RunTracer {
	return &RunTracer{
		tracer:  otel.Tracer(TracerName),
		metrics: metrics,
	}
}

// StartRun opens the span covering a whole run
func (t *RunTracer) StartRun(ctx context.Context, runID string, steps int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.steps", steps),
		),
	)
}

// EndRun records the run outcome and closes its span
func (t *RunTracer) EndRun(ctx context.Context, span trace.Span, tables int, err error) {
	t.metrics.RecordRun(ctx, tables, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "run completed")
	}
	span.End()
}

// StartStep opens the span of one step
func (t *RunTracer) StartStep(ctx context.Context, runID string, step Step) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "pipeline.step."+step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// EndStep records the step duration and row count and closes its span
func (t *RunTracer) EndStep(ctx context.Context, span trace.Span, stepID string, duration time.Duration, rows int, err error) {
	t.metrics.RecordStep(ctx, stepID, duration, rows, err)
	span.SetAttributes(
		attribute.Float64("step.duration_seconds", duration.Seconds()),
		attribute.Int("step.rows", rows),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "step completed")
	}
	span.End()
}
