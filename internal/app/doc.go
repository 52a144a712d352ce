// Package app wires the read-only table server.
//
// NewApplication builds the router over the output directory of the
// configuration: request IDs, tracing and HTTP metrics, structured request
// logging, panic recovery, security headers, CORS, optional rate limiting,
// gzip compression and a per-request timeout, in that order. The API is
// mounted under /api/v1 next to the /healthz, /readyz and /livez probes.
// /metrics is exposed when Prometheus metrics are enabled.
//
// Usage:
//
//	a, err := app.NewApplication(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// Run serves until SIGINT or SIGTERM, then drains in-flight requests within
// the configured shutdown timeout and flushes telemetry.
package app
