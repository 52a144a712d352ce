package operations

import (
	"context"
	"log/slog"
	"time"
)

func (m *Manager) logRunStart(ctx context.Context, runID string, steps int) {
	m.logger.InfoContext(ctx, "run started",
		slog.String("run_id", runID),
		slog.Int("steps", steps))
}

func (m *Manager) logRunComplete(ctx context.Context, runID string, duration time.Duration, status RunStatus) {
	m.logger.InfoContext(ctx, "run finished",
		slog.String("run_id", runID),
		slog.String("status", string(status)),
		slog.Duration("duration", duration))
}

func (m *Manager) logStepStart(ctx context.Context, runID string, step Step, number, total int) {
	m.logger.InfoContext(ctx, "step started",
		slog.String("run_id", runID),
		slog.String("step", step.ID()),
		slog.Int("step_number", number),
		slog.Int("total_steps", total))
}

func (m *Manager) logStepComplete(ctx context.Context, runID, stepID string, duration time.Duration) {
	m.logger.InfoContext(ctx, "step completed",
		slog.String("run_id", runID),
		slog.String("step", stepID),
		slog.Duration("duration", duration))
}

func (m *Manager) logStepError(ctx context.Context, runID, stepID string, err error) {
	m.logger.ErrorContext(ctx, "step failed",
		slog.String("run_id", runID),
		slog.String("step", stepID),
		slog.String("error", err.Error()))
}
