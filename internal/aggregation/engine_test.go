package aggregation

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"agrocaged/internal/shared/testutil"
	"agrocaged/pkg/contracts/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEngineRunPopulatesEveryTable(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	engine := NewEngine(newTestBattery(t, Options{}), 4, logger)
	records := sampleDataset(t)

	dash, err := engine.Run(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, "2024-02", dash.KPIs.ReferencePeriod)
	assert.Len(t, dash.Timeseries, 3)
	assert.NotEmpty(t, dash.ByChain)
	assert.NotEmpty(t, dash.TimeseriesByChain)
	assert.NotEmpty(t, dash.BySubclass)
	assert.Len(t, dash.ByMunicipality, 2)
	assert.Len(t, dash.BySex, 2)
	assert.NotEmpty(t, dash.ByAgeBracket)
	assert.NotEmpty(t, dash.ByEducation)
	assert.NotEmpty(t, dash.ByEmployerSize)
	assert.Len(t, dash.Seasonality, 3)
	assert.Len(t, dash.Yearly, 2)
	assert.NotEmpty(t, dash.CrossChainSex)
	assert.NotEmpty(t, dash.CrossChainAge)
	assert.NotEmpty(t, dash.CrossChainEducation)
	assert.NotEmpty(t, dash.SalaryDistribution)
	assert.Len(t, dash.TopMunicipalities, 2)
	assert.NotEmpty(t, dash.GranularCube)
	assert.NotEmpty(t, dash.GranularDimensions.BySex)

	// the battery functions are deterministic, so a concurrent run matches a direct call
	b := newTestBattery(t, Options{})
	assert.Equal(t, b.ByChain(records), dash.ByChain)
	assert.Equal(t, b.GranularCube(records), dash.GranularCube)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "aggregation complete")
	testutil.AssertNoErrors(t, handler)
}

func TestEngineRunEmptyInput(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	engine := NewEngine(newTestBattery(t, Options{}), 2, logger)

	dash, err := engine.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, dash.Timeseries)
	assert.Empty(t, dash.ByChain)
	assert.Empty(t, dash.GranularCube)
	assert.Equal(t, domain.Flow{}, dash.KPIs.Cumulative)
}

func TestEngineRunCancelled(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	engine := NewEngine(newTestBattery(t, Options{}), 2, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dash, err := engine.Run(ctx, sampleDataset(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, dash)
}

func TestBatteryMembersCoverDashboard(t *testing.T) {
	b := newTestBattery(t, Options{})

	names := make(map[string]bool)
	for _, m := range b.members() {
		assert.False(t, names[m.name], "duplicate member %s", m.name)
		names[m.name] = true
	}

	for _, table := range domain.BundleTables {
		if table == domain.TableMetadata {
			continue
		}
		assert.True(t, names[table], "missing member %s", table)
	}
	assert.True(t, names[domain.TableGranularCube])
	assert.True(t, names[domain.TableGranularDimensions])
}
