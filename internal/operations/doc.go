// Package operations orchestrates a batch run: loading the microdata,
// validating and scoping it, enriching every record, computing the summary
// tables and writing them as a complete output set.
//
// Core Components:
//
// Step: a single unit of work with declared dependencies. BaseStep carries the
// identity and dependency list shared by every concrete step.
//
// Registry: holds the registered steps, validates their dependencies and
// returns them in dependency order, breaking ties by registration order.
//
// Manager: executes the steps of a run one at a time. A failed step stops the
// run and marks every later step skipped. Each step runs inside a span and its
// duration and row count are recorded as metrics.
//
// Pipeline: wires the concrete steps (load, validate, scope, enrich, aggregate,
// export, promote and the optional publish) over shared Dependencies.
//
// Outputs are written to a staging directory and promoted in one rename, so
// readers never observe a partially written output set. A RunManifest listing
// every artifact with its checksum is written next to the tables.
//
// Example usage:
//
//	pipeline, err := operations.NewPipeline(operations.Dependencies{
//		Config: cfg.Pipeline,
//		Assets: assets,
//		Layout: config.NewLayout(cfg.Pipeline.OutputDir),
//		Logger: logger,
//	}, metrics)
//	if err != nil {
//		return err
//	}
//	result, err := pipeline.Run(ctx, "")
package operations
