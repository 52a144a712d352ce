// Package services implements the read side of the published output set.
//
// TableService resolves logical table names to the artifacts of the output
// directory, decodes them once and keeps them in a TTL cache. The granular
// cube and its narrow variants can be filtered by municipality, chain and
// period range:
//
//	tables := services.NewTableService(config.NewLayout(dir), 5*time.Minute, metrics, logger)
//	go tables.Start()
//	defer tables.Stop()
//
//	page, err := tables.Cube(ctx, services.CubeFilter{Municipality: "410690", From: "2024-01"})
//
// A missing output set is reported as a MISSING_INPUT AppError, which the HTTP
// layer maps to 503. HealthService builds on TableService to answer liveness
// and readiness probes.
package services
