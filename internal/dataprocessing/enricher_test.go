package dataprocessing

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"agrocaged/internal/classification"
	"agrocaged/internal/dimensions"
	"agrocaged/internal/shared/testutil"
	"agrocaged/pkg/contracts/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestEnricher(t *testing.T, workers int) *Enricher {
	t.Helper()
	assets, err := classification.Default()
	require.NoError(t, err)
	logger, _ := testutil.NewTestLogger(t)
	return NewEnricher(assets, workers, logger)
}

func TestEnrichOne(t *testing.T) {
	e := newTestEnricher(t, 1)

	em := e.EnrichOne(testutil.Movement("0151201", testutil.WithPeriod(2024, 3)))

	assert.Equal(t, "2024-03", em.Period)
	assert.Equal(t, "0151", em.CNAEGroup)
	assert.Equal(t, "01", em.CNAEDivision)
	assert.Equal(t, "Agricultura e Pecuária", em.DivisionName)
	assert.Equal(t, "Bovinocultura de Corte", em.Chain)
	assert.Equal(t, "30 a 39 anos", em.AgeBracket)
	assert.Equal(t, 30.0, em.AgeValue)
	assert.Equal(t, "Masculino", em.SexName)
	assert.Equal(t, "Médio Completo", em.EducationName)
	assert.Equal(t, "Branca", em.RaceName)
	assert.Equal(t, "Admissão por primeiro emprego", em.MovementTypeName)
	assert.Equal(t, "De 5 a 9", em.EmployerSizeName)
	assert.Equal(t, 1800.0, em.SalaryValue)
	assert.Equal(t, 44.0, em.HoursValue)
	assert.True(t, em.IsAdmission)
	assert.False(t, em.IsTermination)
	assert.False(t, em.IsApprentice)
	assert.Equal(t, "622010", em.OccupationCode)

	assert.Equal(t, "0151201", em.Subclass, "raw fields are carried unchanged")
	assert.Equal(t, "1800,00", em.Salary)
}

func TestEnrichOneFallbacks(t *testing.T) {
	e := newTestEnricher(t, 1)

	raw := testutil.Movement("0500301", testutil.Termination, testutil.WithAge("abc"), testutil.WithSalary("n/a"),
		func(m *domain.RawMovement) {
			m.Sex = "9"
			m.Education = ""
			m.Hours = ""
			m.Apprentice = "1"
		})
	em := e.EnrichOne(raw)

	assert.Equal(t, classification.Other, em.Chain)
	assert.Equal(t, dimensions.NotInformed, em.DivisionName)
	assert.Equal(t, dimensions.NotInformed, em.AgeBracket)
	assert.True(t, math.IsNaN(em.AgeValue))
	assert.Equal(t, dimensions.NotInformed, em.SexName)
	assert.Equal(t, dimensions.NotInformed, em.EducationName)
	assert.True(t, math.IsNaN(em.SalaryValue))
	assert.True(t, math.IsNaN(em.HoursValue))
	assert.True(t, em.IsTermination)
	assert.True(t, em.IsApprentice)
}

func TestEnrichOnePersistedChain(t *testing.T) {
	e := newTestEnricher(t, 1)

	fresh := testutil.Movement("0115600", func(m *domain.RawMovement) { m.PersistedChain = "Grãos" })
	assert.Equal(t, "Sojicultura", e.EnrichOne(fresh).Chain)

	retired := testutil.Movement("0199999", func(m *domain.RawMovement) { m.PersistedChain = "Erva-mate" })
	assert.Equal(t, "Erva-mate", e.EnrichOne(retired).Chain)
}

func TestEnrichPreservesLengthAndOrder(t *testing.T) {
	e := newTestEnricher(t, 4)

	raw := make([]domain.RawMovement, 3*minPartitionSize+17)
	for i := range raw {
		raw[i] = testutil.Movement("0151201", testutil.WithMunicipality(fmt.Sprintf("%06d", i)))
		raw[i].Row = i + 1
	}
	require.Len(t, e.partitions(len(raw)), 4)

	enriched, err := e.Enrich(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, enriched, len(raw))
	for i := range raw {
		assert.Equal(t, raw[i].Row, enriched[i].Row)
		assert.Equal(t, raw[i].Municipality, enriched[i].Municipality)
	}
}

func TestEnrichEmpty(t *testing.T) {
	e := newTestEnricher(t, 2)

	enriched, err := e.Enrich(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, enriched)
}

func TestEnrichCancelled(t *testing.T) {
	e := newTestEnricher(t, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Enrich(ctx, []domain.RawMovement{testutil.Movement("0151201")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPartitions(t *testing.T) {
	e := &Enricher{workers: 8}

	assert.Nil(t, e.partitions(0))
	assert.Equal(t, []partition{{0, 10}}, e.partitions(10))

	parts := e.partitions(minPartitionSize*2 + 1)
	require.Len(t, parts, 3)
	assert.Equal(t, 0, parts[0].from)
	assert.Equal(t, minPartitionSize*2+1, parts[2].to)
	for i := 1; i < len(parts); i++ {
		assert.Equal(t, parts[i-1].to, parts[i].from, "partitions are contiguous")
	}
}
