package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/jonboulle/clockwork"

	apperrors "agrocaged/internal/errors"
	"agrocaged/internal/infrastructure"
	"agrocaged/pkg/contracts"
)

// Health states reported by HealthService
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusAlive    = "alive"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Output    *OutputHealth  `json:"output,omitempty"`
	Runtime   map[string]any `json:"runtime,omitempty"`
}

// OutputHealth describes the published output set
type OutputHealth struct {
	Directory string `json:"directory"`
	Available bool   `json:"available"`
	RunID     string `json:"run_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	Tables    int    `json:"tables"`
	Message   string `json:"message,omitempty"`
}

// HealthService reports liveness and whether an output set can be served
type HealthService struct {
	tables    *TableService
	clock     clockwork.Clock
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates a health service over tables
func NewHealthService(tables *TableService, clock clockwork.Clock, logger *slog.Logger) *HealthService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HealthService{
		tables:    tables,
		clock:     clock,
		startTime: clock.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck reports ok when the output set is readable, degraded otherwise.
// The server stays up without output so a first run can be published later.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	output := hs.checkOutput(ctx)
	status := HealthStatus{
		Status:    StatusOK,
		Timestamp: hs.clock.Now().UTC(),
		Version:   contracts.Version,
		Output:    output,
	}
	if !output.Available {
		status.Status = StatusDegraded
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status),
		slog.Bool("output_available", output.Available))
	return status
}

// ReadinessCheck reports ready only when a complete output set is published
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := hs.HealthCheck(ctx)
	if status.Output.Available {
		status.Status = StatusReady
	} else {
		status.Status = StatusNotReady
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: hs.clock.Now().UTC(),
		Version:   contracts.Version,
		Runtime: map[string]any{
			"uptime_seconds": hs.clock.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

func (hs *HealthService) checkOutput(ctx context.Context) *OutputHealth {
	out := &OutputHealth{Directory: hs.tables.OutputDir()}

	list, err := hs.tables.ListTables(ctx)
	if err != nil {
		out.Message = "no output set has been published"
		if !apperrors.IsType(err, apperrors.ErrTypeMissingInput) {
			out.Message = err.Error()
			hs.logger.WarnContext(ctx, "output set unreadable", slog.String("error", err.Error()))
		}
		return out
	}

	out.Available = true
	out.RunID = list.RunID
	out.CreatedAt = list.CreatedAt
	out.Tables = len(list.Tables)
	return out
}
