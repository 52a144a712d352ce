// Package aggregation computes the fixed battery of summary tables over enriched
// movement records.
//
// Every table is a reduction over complete groups: counts are summed, the balance is
// derived from them, and compensation statistics (mean, median, sample standard
// deviation, percentiles) are computed exactly once per fully assembled group. Tables
// are independent of each other and run concurrently on a worker pool; none of them
// modifies the input slice.
//
// Absent statistics are NaN. The exporter turns them into null.
package aggregation
