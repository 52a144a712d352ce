// Package ingest reads labor-market microdata into raw movement records.
//
// Readers accept CSV/TXT (semicolon or comma separated), XLSX and Parquet files. Headers
// are normalized before matching so the raw government files and previously processed
// extracts satisfy the same column contract. Only the temporal key, municipality,
// subclass and balance columns are required; other coded columns fall back to blank
// values that derive to "Not informed".
package ingest
