// Package http implements the read-only HTTP API over a published output set.
//
// Handlers stay thin: they parse and validate query parameters, call the
// services layer and render the result. Every failure goes through
// errors.ErrorHandler, so clients always receive RFC 7807 problem details.
//
//	GET /api/v1/tables              list of tables with size and checksum
//	GET /api/v1/tables/{name}       one table, ?format=csv for the CSV rendition
//	GET /api/v1/bundle              the aggregated bundle
//	GET /api/v1/cube                granular cube, filtered by mun, cadeia, from, to, limit
//	GET /api/v1/dimensions/{dim}    one narrow cube with the same filters
//	GET /api/v1/manifest            manifest of the published run
//	GET /api/v1/workbook            XLSX workbook download
//	GET /healthz, /readyz, /livez   health probes
//
// Stored table documents are written as-is; the server never re-encodes them.
package http
