// Package exporter turns a computed dashboard into its output files.
//
// Every value goes through Sanitize before it is encoded: absent statistics (NaN or
// infinite floats) become JSON null, structs become maps keyed by their json tags and
// map keys are encoded in sorted order, so the same dashboard always produces the same
// bytes.
//
// An export writes:
//
//   - one indented <snake_name>.json per bundled table, metadata.json included
//   - aggregated_full.json, the compact bundle keyed by logical table name
//   - granular_cube.json and granular_dimensions.json, optionally gzip-compressed
//   - csv/<snake_name>.csv for every row table when the csv format is enabled
//   - dashboard.xlsx with one sheet per row table when the xlsx format is enabled
//
// Example usage:
//
//	exp := exporter.New(layout.Staging, exporter.Options{Formats: []string{"csv"}}, logger)
//	artifacts, err := exp.Export(ctx, dashboard)
package exporter
