package app

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"agrocaged/internal/config"
	apperrors "agrocaged/internal/errors"
	"agrocaged/internal/infrastructure"
	customMiddleware "agrocaged/internal/middleware"
	"agrocaged/internal/services"
	handlers "agrocaged/internal/transport/http"
	"agrocaged/pkg/contracts"
)

// Application is the read-only table server
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Tables        *services.TableService
	HealthService *services.HealthService
	Metrics       *infrastructure.PipelineMetrics
	OTelProviders *infrastructure.OTelProviders
	Logger        *slog.Logger
}

// NewApplication wires the server for cfg. Telemetry is initialized here and
// shut down by Stop.
func NewApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	providers, err := infrastructure.InitializeOTel(ctx, cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	return newApplication(cfg, logger, providers)
}

func newApplication(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	layout := config.NewLayout(cfg.Pipeline.OutputDir)
	tables := services.NewTableService(layout, cfg.Server.CacheTTL, metrics, logger)

	a := &Application{
		Config:        cfg,
		Tables:        tables,
		HealthService: services.NewHealthService(tables, nil, logger),
		Metrics:       metrics,
		OTelProviders: providers,
		Logger:        infrastructure.WithComponent(logger, "app"),
	}

	if err := a.setupRouter(); err != nil {
		return nil, err
	}
	a.createServer()

	a.Logger.Info("application initialized",
		slog.String("version", contracts.Version),
		slog.String("output_dir", layout.Root),
		slog.Duration("cache_ttl", cfg.Server.CacheTTL))
	return a, nil
}

// setupRouter builds the middleware chain and mounts the API.
// Order: RequestID, RealIP, OTel, logging, recovery, headers, CORS, rate limit, compression.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	errorHandler := apperrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// Scraped outside the instrumented group so scrapes do not count as API traffic
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	compress, err := customMiddleware.Compress(gzip.DefaultCompression)
	if err != nil {
		return fmt.Errorf("failed to create compression middleware: %w", err)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(errorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Server.AllowedOrigins,
			Logger:         a.Logger,
		}))
		if a.Config.Server.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Server.RateLimit.RPS,
				a.Config.Server.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Use(compress)
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get(config.HealthEndpoint, healthHandler.HealthCheck)
		r.Get("/readyz", healthHandler.ReadinessCheck)
		r.Get("/livez", healthHandler.LivenessCheck)

		r.Route(config.APIBasePath, func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))

			r.Get("/version", healthHandler.Version)

			validator := customMiddleware.NewQueryValidator(a.Logger, errorHandler)
			tablesHandler := handlers.NewTablesHandler(a.Tables, validator, errorHandler, a.Logger)
			tablesHandler.Register(r)
		})
	})

	a.Router = r
	return nil
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Start begins serving on the configured port. Serve errors cancel ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	listener, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	go a.Tables.Start()

	status := a.HealthService.HealthCheck(ctx)
	if status.Status != services.StatusOK {
		a.Logger.WarnContext(ctx, "serving without a published output set",
			slog.String("output_dir", status.Output.Directory),
			slog.String("reason", status.Output.Message))
	}

	go func() {
		if err := a.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "server started",
		slog.String("address", listener.Addr().String()),
		slog.String("output_dir", a.Tables.OutputDir()))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	a.Tables.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return errors.Join(errs...)
}

// Run serves until SIGINT, SIGTERM or a serve error
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	return a.Stop(context.WithoutCancel(ctx))
}
