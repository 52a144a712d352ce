package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"agrocaged/internal/config"
	apperrors "agrocaged/internal/errors"
	"agrocaged/internal/shared/testutil"
	"agrocaged/pkg/contracts/domain"
)

func testDashboard() *domain.Dashboard {
	return &domain.Dashboard{
		Metadata: domain.Metadata{Title: "Emprego Agrícola", Records: 2, ReferencePeriod: "2024-01"},
		KPIs: domain.KPIs{
			ReferencePeriod: "2024-01",
			Cumulative:      domain.NewFlow(1, 1),
			Salary:          domain.SalaryCenter{Mean: 1750, Median: 1750},
			Profile:         domain.WorkforceProfile{MalePercent: 100, MeanAge: math.NaN()},
		},
		Timeseries: []domain.TimeseriesRow{{Period: "2024-01", Flow: domain.NewFlow(1, 1), SalaryMean: 1750, SalaryMedian: 1750}},
		ByChain: []domain.ChainRow{{
			Chain: "Bovinocultura de Corte", Flow: domain.NewFlow(1, 1),
			SalaryMean: 1750, SalaryMedian: 1750, SalaryStd: math.NaN(), AdmissionsPercent: 100,
		}},
		GranularCube: []domain.CubeRow{{Municipality: "410690", Period: "2024-01", Chain: "Bovinocultura de Corte", Flow: domain.NewFlow(1, 1), SalaryMean: 1750}},
		GranularDimensions: domain.GranularDimensions{
			BySex: []domain.CubeSexRow{{Municipality: "410690", Period: "2024-01", Chain: "Bovinocultura de Corte", Sex: "Masculino", Flow: domain.NewFlow(1, 1)}},
		},
	}
}

func readJSON(t *testing.T, path string) any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var v any
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)

	artifacts, err := New(dir, Options{}, logger).Export(context.Background(), testDashboard())
	require.NoError(t, err)

	for _, name := range domain.BundleTables {
		assert.FileExists(t, filepath.Join(dir, config.TableFile(name)))
	}
	assert.FileExists(t, filepath.Join(dir, "by_cadeia.json"))
	assert.FileExists(t, filepath.Join(dir, config.MetadataFile))
	assert.NoDirExists(t, filepath.Join(dir, config.CSVDir))
	assert.NoFileExists(t, filepath.Join(dir, config.WorkbookFile))
	assert.Len(t, artifacts, len(domain.BundleTables)+3)

	byChain := readJSON(t, filepath.Join(dir, "by_cadeia.json")).([]any)
	require.Len(t, byChain, 1)
	row := byChain[0].(map[string]any)
	assert.Equal(t, 1750.0, row["salario_medio"])
	assert.Nil(t, row["salario_std"])
	assert.Contains(t, row, "salario_std")
	assert.Equal(t, 0.0, row["saldo"])

	bundle := readJSON(t, filepath.Join(dir, config.BundleFile)).(map[string]any)
	assert.Len(t, bundle, len(domain.BundleTables))
	assert.NotContains(t, bundle, domain.TableGranularCube)
	assert.NotContains(t, bundle, domain.TableGranularDimensions)
	kpis := bundle[domain.TableKPIs].(map[string]any)
	assert.Nil(t, kpis["perfil"].(map[string]any)["idade_media"])
	assert.Equal(t, []any{}, bundle[domain.TableSeasonality])

	cube := readJSON(t, filepath.Join(dir, config.CubeFile)).([]any)
	assert.Len(t, cube, 1)
	dims := readJSON(t, filepath.Join(dir, config.DimensionsFile)).(map[string]any)
	assert.Len(t, dims["bySexo"], 1)
	assert.Equal(t, []any{}, dims["byPorte"])
}

func TestExportIsDeterministic(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()

	_, err := New(first, Options{}, nil).Export(context.Background(), testDashboard())
	require.NoError(t, err)
	_, err = New(second, Options{}, nil).Export(context.Background(), testDashboard())
	require.NoError(t, err)

	for _, file := range []string{config.BundleFile, config.CubeFile, "kpis.json"} {
		a, err := os.ReadFile(filepath.Join(first, file))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, file))
		require.NoError(t, err)
		assert.Equal(t, a, b, file)
	}
}

func TestExportGzipCube(t *testing.T) {
	dir := t.TempDir()

	artifacts, err := New(dir, Options{GzipCube: true}, nil).Export(context.Background(), testDashboard())
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dir, config.CubeFile))
	path := filepath.Join(dir, config.CubeFile+GzipSuffix)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)

	var cube []map[string]any
	require.NoError(t, json.Unmarshal(data, &cube))
	require.Len(t, cube, 1)
	assert.Equal(t, "410690", cube[0]["mun"])

	var found bool
	for _, a := range artifacts {
		if a.Path == config.CubeFile+GzipSuffix {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExportCSVAndWorkbook(t *testing.T) {
	dir := t.TempDir()

	_, err := New(dir, Options{Formats: []string{config.FormatCSV, config.FormatXLSX}}, nil).
		Export(context.Background(), testDashboard())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, config.CSVDir, "by_cadeia.csv"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))
	assert.Contains(t, string(data), "cadeia,admissoes,demissoes,saldo,salario_medio")
	assert.Contains(t, string(data), "Bovinocultura de Corte,1,1,0,1750,1750,,")
	assert.NoFileExists(t, filepath.Join(dir, config.CSVDir, "kpis.csv"))

	wb, err := excelize.OpenFile(filepath.Join(dir, config.WorkbookFile))
	require.NoError(t, err)
	defer wb.Close()

	sheets := wb.GetSheetList()
	assert.Equal(t, domain.TableTimeseries, sheets[0])
	assert.Contains(t, sheets, domain.TableByChain)

	rows, err := wb.GetRows(domain.TableByChain)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "cadeia", rows[0][0])
	assert.Equal(t, "Bovinocultura de Corte", rows[1][0])
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(t.TempDir(), Options{}, nil).Export(ctx, testDashboard())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportUnwritableDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := New(filepath.Join(file, "out"), Options{}, nil).Export(context.Background(), testDashboard())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestExportArtifacts(t *testing.T) {
	dir := t.TempDir()

	artifacts, err := New(dir, Options{Formats: []string{config.FormatCSV}}, nil).Export(context.Background(), testDashboard())
	require.NoError(t, err)

	first := artifacts[0]
	assert.Equal(t, domain.TableMetadata, first.Name)
	assert.Equal(t, "metadata.json", first.Path)
	assert.Len(t, first.SHA256, 64)

	info, err := os.Stat(filepath.Join(dir, first.Path))
	require.NoError(t, err)
	assert.Equal(t, info.Size(), first.Bytes)

	last := artifacts[len(artifacts)-1]
	assert.Equal(t, "csv/top_municipios.csv", last.Path)
}
