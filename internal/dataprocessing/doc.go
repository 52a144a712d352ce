// Package dataprocessing turns raw movement records into enriched records.
//
// # Architecture
//
// The package has two components:
//
// 1. Scope: keeps the records of the configured state and CNAE divisions
// 2. Enricher: applies the classification table and the dimension derivations
//
// # Usage
//
//	assets, err := classification.Load(cfg.Pipeline.ClassificationFile)
//	if err != nil {
//	    return err
//	}
//	enricher := dataprocessing.NewEnricher(assets, cfg.Pipeline.Workers, logger)
//	enriched, err := enricher.Enrich(ctx, scope.Filter(records))
//
// # Data Flow
//
//	RawMovement → Scope → Enricher → EnrichedMovement
//
// Enrichment is total. Unknown subclass codes become the "Other" chain and unreadable
// coded fields become "Not informed"; no record is dropped or reordered.
//
// # Concurrency
//
// Records are split into contiguous partitions processed on an errgroup. Each
// partition writes only its own range of the output slice, so no locking is needed.
// Cancellation is observed when a partition starts, never in the middle of one.
package dataprocessing
