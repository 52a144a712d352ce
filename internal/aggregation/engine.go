package aggregation

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/alitto/pond/v2"

	"agrocaged/pkg/contracts/domain"
)

// Engine runs the battery concurrently over one enriched dataset
type Engine struct {
	battery *Battery
	workers int
	logger  *slog.Logger
}

// NewEngine creates an engine. workers <= 0 uses one worker per CPU.
func NewEngine(battery *Battery, workers int, logger *slog.Logger) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		battery: battery,
		workers: workers,
		logger:  logger.With(slog.String("component", "aggregation")),
	}
}

// Run computes every table. records must not be modified while Run executes.
// Metadata is left for the caller to fill in.
func (e *Engine) Run(ctx context.Context, records []domain.EnrichedMovement) (*domain.Dashboard, error) {
	start := time.Now()

	pool := pond.NewResultPool[func(*domain.Dashboard)](e.workers)
	defer pool.StopAndWait()

	group := pool.NewGroupContext(ctx)
	for _, m := range e.battery.members() {
		m := m
		group.SubmitErr(func() (func(*domain.Dashboard), error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			tableStart := time.Now()
			apply := m.build(records)
			e.logger.DebugContext(ctx, "table computed",
				slog.String("table", m.name),
				slog.Duration("duration", time.Since(tableStart)))
			return apply, nil
		})
	}

	setters, err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	dash := &domain.Dashboard{}
	for _, set := range setters {
		set(dash)
	}

	e.logger.InfoContext(ctx, "aggregation complete",
		slog.Int("rows", len(records)),
		slog.Int("tables", len(setters)),
		slog.Int("cube_cells", len(dash.GranularCube)),
		slog.Duration("duration", time.Since(start)))
	return dash, nil
}
