// Package shared holds helpers used across agrocaged packages that belong to no single layer.
//
// The testutil subpackage provides a buffered slog handler for asserting on log output
// and builders for microdata fixtures.
package shared
