package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"agrocaged/internal/config"
	"agrocaged/pkg/contracts"
)

const (
	ServiceName = config.AppName
	MeterName   = config.AppName
)

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel initializes tracing and metrics according to cfg.
// Disabled signals fall back to the global no-op implementations.
func InitializeOTel(ctx context.Context, cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", ServiceName),
		slog.String("version", contracts.Version),
		slog.Bool("tracing_enabled", cfg.TracingEnabled),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled))

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(contracts.Version),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	providers := &OTelProviders{
		Logger: logger,
		Tracer: otel.Tracer(MeterName),
		Meter:  noop.NewMeterProvider().Meter(MeterName),
	}

	if cfg.TracingEnabled {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.MetricsEnabled {
		if err := initializeMetrics(ctx, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRate)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(contracts.Version))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRate))
	return nil
}

// initializeMetrics registers a Prometheus reader and exposes it over HTTP
func initializeMetrics(ctx context.Context, res *resource.Resource, providers *OTelProviders) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.PrometheusHTTP = promhttp.Handler()
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(contracts.Version))
	otel.SetMeterProvider(mp)

	providers.Logger.InfoContext(ctx, "Metrics initialized", slog.String("exporter", "prometheus"))
	return nil
}

// PipelineMetrics holds the instruments recorded by pipeline runs and the table server
type PipelineMetrics struct {
	StepsTotal       metric.Int64Counter
	StepDuration     metric.Float64Histogram
	RowsProcessed    metric.Int64Counter
	TablesWritten    metric.Int64Counter
	RunsTotal        metric.Int64Counter
	HTTPRequests     metric.Int64Counter
	HTTPDuration     metric.Float64Histogram
	TableCacheLookup metric.Int64Counter
}

// CreatePipelineMetrics creates the application instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	if m.StepsTotal, err = meter.Int64Counter("pipeline_steps_total",
		metric.WithDescription("Total number of pipeline steps executed")); err != nil {
		return nil, err
	}
	if m.StepDuration, err = meter.Float64Histogram("pipeline_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.RowsProcessed, err = meter.Int64Counter("pipeline_rows_processed",
		metric.WithDescription("Microdata rows processed by a step")); err != nil {
		return nil, err
	}
	if m.TablesWritten, err = meter.Int64Counter("pipeline_tables_written",
		metric.WithDescription("Output tables written")); err != nil {
		return nil, err
	}
	if m.RunsTotal, err = meter.Int64Counter("pipeline_runs_total",
		metric.WithDescription("Pipeline runs by outcome")); err != nil {
		return nil, err
	}
	if m.HTTPRequests, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.HTTPDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.TableCacheLookup, err = meter.Int64Counter("table_cache_lookups_total",
		metric.WithDescription("Table cache lookups by result")); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordStep records the outcome and duration of a pipeline step
func (m *PipelineMetrics) RecordStep(ctx context.Context, stepID string, duration time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("step.id", stepID),
		attribute.String("status", status),
	)
	m.StepsTotal.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, duration.Seconds(), attrs)
	if rows > 0 {
		m.RowsProcessed.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("step.id", stepID)))
	}
}

// RecordRun records the outcome of a complete run
func (m *PipelineMetrics) RecordRun(ctx context.Context, tables int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.RunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	if tables > 0 {
		m.TablesWritten.Add(ctx, int64(tables))
	}
}

// RecordCacheLookup counts a table cache hit or miss
func (m *PipelineMetrics) RecordCacheLookup(ctx context.Context, table string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.TableCacheLookup.Add(ctx, 1, metric.WithAttributes(
		attribute.String("table", table),
		attribute.String("result", result)))
}

// RecordHTTP records a served request by route and status
func (m *PipelineMetrics) RecordHTTP(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status_code", status))
	m.HTTPRequests.Add(ctx, 1, attrs)
	m.HTTPDuration.Record(ctx, duration.Seconds(), attrs)
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}
