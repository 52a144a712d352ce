package app

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrocaged/internal/config"
	apperrors "agrocaged/internal/errors"
	"agrocaged/internal/exporter"
	"agrocaged/internal/operations"
	"agrocaged/internal/shared/testutil"
	"agrocaged/pkg/contracts/domain"
)

func testDashboard() *domain.Dashboard {
	return &domain.Dashboard{
		Metadata: domain.Metadata{Title: "Emprego Agrícola", RunID: "run-1", Records: 3},
		ByChain: []domain.ChainRow{
			{Chain: "Soja", Flow: domain.NewFlow(2, 1), SalaryMean: 1800},
		},
		GranularCube: []domain.CubeRow{
			{Municipality: "410690", Period: "2024-01", Chain: "Soja", Flow: domain.NewFlow(2, 0), SalaryMean: 1750},
			{Municipality: "411370", Period: "2024-02", Chain: "Soja", Flow: domain.NewFlow(0, 1), SalaryMean: 1500},
		},
	}
}

// newTestApplication serves an output set written under a temp directory.
// Telemetry stays disabled so the global Prometheus registry is untouched.
func newTestApplication(t *testing.T, publish bool, mutate func(*config.Config)) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	cfg := config.Default()
	cfg.Pipeline.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.Telemetry = config.TelemetryConfig{}
	cfg.Server.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	if publish {
		created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		artifacts, err := exporter.New(cfg.Pipeline.OutputDir, exporter.Options{Formats: []string{config.FormatCSV}}, logger).
			Export(context.Background(), testDashboard())
		require.NoError(t, err)
		run := operations.NewRunState("run-1", created)
		run.Artifacts = artifacts
		require.NoError(t, operations.NewRunManifest(run, created).
			SaveToFile(filepath.Join(cfg.Pipeline.OutputDir, config.ManifestFile)))
	}

	a, err := NewApplication(context.Background(), cfg, logger)
	require.NoError(t, err)
	return a
}

func serve(a *Application, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestNewApplication(t *testing.T) {
	a := newTestApplication(t, true, nil)

	assert.NotNil(t, a.Router)
	assert.NotNil(t, a.Server)
	assert.Equal(t, ":8080", a.Server.Addr)
	assert.Nil(t, a.OTelProviders.PrometheusHTTP)
	assert.Equal(t, a.Config.Pipeline.OutputDir, a.Tables.OutputDir())
}

func TestListTablesEndpoint(t *testing.T) {
	a := newTestApplication(t, true, nil)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/tables", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body struct {
		RunID  string `json:"run_id"`
		Tables []struct {
			Name string `json:"name"`
			CSV  bool   `json:"csv"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.NotEmpty(t, body.Tables)
}

func TestTableEndpoints(t *testing.T) {
	a := newTestApplication(t, true, nil)

	tests := []struct {
		name        string
		path        string
		status      int
		contentType string
	}{
		{name: "json table", path: "/api/v1/tables/byCadeia", status: http.StatusOK, contentType: "application/json"},
		{name: "csv table", path: "/api/v1/tables/byCadeia?format=csv", status: http.StatusOK, contentType: "text/csv"},
		{name: "bad format", path: "/api/v1/tables/byCadeia?format=xml", status: http.StatusBadRequest, contentType: "application/problem+json"},
		{name: "unknown table", path: "/api/v1/tables/byPlanet", status: http.StatusNotFound, contentType: "application/problem+json"},
		{name: "bundle", path: "/api/v1/bundle", status: http.StatusOK, contentType: "application/json"},
		{name: "manifest", path: "/api/v1/manifest", status: http.StatusOK, contentType: "application/json"},
		{name: "no workbook", path: "/api/v1/workbook", status: http.StatusNotFound, contentType: "application/problem+json"},
		{name: "version", path: "/api/v1/version", status: http.StatusOK, contentType: "application/json"},
		{name: "unknown route", path: "/api/v1/nothing", status: http.StatusNotFound, contentType: "application/problem+json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(a, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.contentType)
		})
	}
}

func TestCubeEndpoint(t *testing.T) {
	a := newTestApplication(t, true, nil)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/cube?mun=410690", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/cube?from=2024-03&to=2024-01", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, apperrors.TypeValidation, problem["type"])

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/cube?mun=41", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMissingOutputSet(t *testing.T) {
	a := newTestApplication(t, false, nil)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/tables", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	a := newTestApplication(t, true, nil)

	for _, path := range []string{"/healthz", "/readyz", "/livez"} {
		rec := serve(a, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"), path)
	}
}

func TestCORS(t *testing.T) {
	a := newTestApplication(t, true, func(cfg *config.Config) {
		cfg.Server.AllowedOrigins = []string{"https://painel.example.org"}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tables", nil)
	req.Header.Set("Origin", "https://painel.example.org")
	rec := serve(a, req)
	assert.Equal(t, "https://painel.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tables", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	rec = serve(a, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/tables", nil)
	req.Header.Set("Origin", "https://painel.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = serve(a, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCompression(t *testing.T) {
	a := newTestApplication(t, true, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bundle", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := serve(a, req)
	require.Equal(t, http.StatusOK, rec.Code)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		// Bodies under the minimum size are sent as-is
		assert.True(t, json.Valid(rec.Body.Bytes()))
		return
	}
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, json.Valid(body))
}

func TestRateLimit(t *testing.T) {
	a := newTestApplication(t, true, func(cfg *config.Config) {
		cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	})

	first := serve(a, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := serve(a, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestStartStop(t *testing.T) {
	a := newTestApplication(t, true, func(cfg *config.Config) {
		cfg.Server.Port = 0
		cfg.Server.ShutdownTimeout = 5 * time.Second
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, a.Start(ctx, cancel))
	assert.NoError(t, a.Stop(context.Background()))
	assert.NoError(t, ctx.Err(), "a clean shutdown must not cancel the serve context")
}
