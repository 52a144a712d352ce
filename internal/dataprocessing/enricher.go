package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"agrocaged/internal/classification"
	"agrocaged/internal/dimensions"
	"agrocaged/pkg/contracts/domain"
)

// minPartitionSize keeps small inputs on a single goroutine
const minPartitionSize = 4096

// Enricher derives every dimension of a record from the injected lookup tables
type Enricher struct {
	table   *classification.Table
	dims    *dimensions.Set
	workers int
	logger  *slog.Logger
}

// NewEnricher creates an enricher. workers <= 0 uses one partition per CPU.
func NewEnricher(assets *classification.Assets, workers int, logger *slog.Logger) *Enricher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		table:   assets.Table,
		dims:    assets.Dimensions,
		workers: workers,
		logger:  logger.With(slog.String("component", "enricher")),
	}
}

// Enrich returns one enriched record per raw record, in input order
func (e *Enricher) Enrich(ctx context.Context, raw []domain.RawMovement) ([]domain.EnrichedMovement, error) {
	start := time.Now()
	out := make([]domain.EnrichedMovement, len(raw))

	partitions := e.partitions(len(raw))
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range partitions {
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := p.from; i < p.to; i++ {
				out[i] = e.EnrichOne(raw[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enrich records: %w", err)
	}

	e.logger.InfoContext(ctx, "records enriched",
		slog.Int("rows", len(out)),
		slog.Int("partitions", len(partitions)),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}

// EnrichOne derives the dimensions of a single record
func (e *Enricher) EnrichOne(r domain.RawMovement) domain.EnrichedMovement {
	em := domain.EnrichedMovement{
		RawMovement: r,
		Period:      domain.FormatPeriod(r.Year, r.Month),
	}

	if len(r.Subclass) >= 4 {
		em.CNAEGroup = r.Subclass[:4]
	}
	if len(r.Subclass) >= 2 {
		em.CNAEDivision = r.Subclass[:2]
	}
	em.DivisionName = e.dims.Division.Name(em.CNAEDivision)
	em.Chain = e.table.Resolve(r.Subclass, r.PersistedChain)

	em.AgeBracket, em.AgeValue = e.dims.Ages.Derive(r.Age)
	em.SexName = e.dims.Sex.Name(r.Sex)
	em.EducationName = e.dims.Education.Name(r.Education)
	em.RaceName = e.dims.Race.Name(r.Race)
	em.MovementTypeName = e.dims.MovementType.Name(r.MovementType)
	em.EmployerSizeName = e.dims.EmployerSize.Name(r.EmployerSize)

	em.SalaryValue = parseMeasure(r.Salary)
	em.HoursValue = parseMeasure(r.Hours)

	em.IsAdmission = r.Balance == 1
	em.IsTermination = r.Balance == -1
	em.IsApprentice = dimensions.ParseFlag(r.Apprentice)
	em.IsIntermittent = dimensions.ParseFlag(r.Intermittent)
	em.IsPartTime = dimensions.ParseFlag(r.PartTime)
	em.OccupationCode = r.Occupation

	return em
}

func parseMeasure(raw string) float64 {
	v, ok := dimensions.ParseNumber(raw)
	if !ok {
		return math.NaN()
	}
	return v
}

type partition struct {
	from, to int
}

func (e *Enricher) partitions(n int) []partition {
	if n == 0 {
		return nil
	}
	count := e.workers
	if limit := (n + minPartitionSize - 1) / minPartitionSize; count > limit {
		count = limit
	}
	size := (n + count - 1) / count

	parts := make([]partition, 0, count)
	for from := 0; from < n; from += size {
		to := from + size
		if to > n {
			to = n
		}
		parts = append(parts, partition{from: from, to: to})
	}
	return parts
}
