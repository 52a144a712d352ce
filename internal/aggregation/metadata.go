package aggregation

import (
	"time"

	"agrocaged/pkg/contracts/domain"
)

// MetadataOptions are the run-level values recorded in metadata
type MetadataOptions struct {
	Title                 string
	Subtitle              string
	Source                string
	SampleSource          string
	SourceIsOfficial      bool
	UpdatedAt             time.Time
	ClassificationVersion string
	RunID                 string
	FormatVersion         string
}

// BuildMetadata describes the coverage of records. A record-level provenance flag
// overrides the run flag: the output is official only when every flagged record is.
func BuildMetadata(records []domain.EnrichedMovement, opts MetadataOptions) domain.Metadata {
	meta := domain.Metadata{
		Title:                 opts.Title,
		Subtitle:              opts.Subtitle,
		UpdatedAt:             opts.UpdatedAt.Format("2006-01-02"),
		Records:               len(records),
		ClassificationVersion: opts.ClassificationVersion,
		RunID:                 opts.RunID,
		FormatVersion:         opts.FormatVersion,
	}

	municipalities := make(map[string]struct{})
	chains := make(map[string]struct{})
	subclasses := make(map[string]struct{})
	official, flagged := true, false

	for i := range records {
		r := &records[i]
		if meta.FirstPeriod == "" || r.Period < meta.FirstPeriod {
			meta.FirstPeriod = r.Period
		}
		if r.Period > meta.LastPeriod {
			meta.LastPeriod = r.Period
		}
		municipalities[r.Municipality] = struct{}{}
		chains[r.Chain] = struct{}{}
		subclasses[r.Subclass] = struct{}{}
		if r.SourceIsOfficial != nil {
			flagged = true
			official = official && *r.SourceIsOfficial
		}
	}

	meta.ReferencePeriod = meta.LastPeriod
	meta.Municipalities = len(municipalities)
	meta.Chains = len(chains)
	meta.Subclasses = len(subclasses)

	meta.SourceIsOfficial = opts.SourceIsOfficial
	if flagged {
		meta.SourceIsOfficial = official
	}
	meta.Source = opts.Source
	if !meta.SourceIsOfficial && opts.SampleSource != "" {
		meta.Source = opts.SampleSource
	}
	return meta
}
