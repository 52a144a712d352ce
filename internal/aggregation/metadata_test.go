package aggregation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"agrocaged/internal/shared/testutil"
	"agrocaged/pkg/contracts/domain"
)

func TestBuildMetadata(t *testing.T) {
	updated := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	meta := BuildMetadata(sampleDataset(t), MetadataOptions{
		Title:                 "Agro Paraná",
		Source:                "Novo CAGED",
		SampleSource:          "Amostra sintética",
		SourceIsOfficial:      true,
		UpdatedAt:             updated,
		ClassificationVersion: "abc123",
		RunID:                 "run-1",
		FormatVersion:         "2",
	})

	assert.Equal(t, "Agro Paraná", meta.Title)
	assert.Equal(t, "2024-03-15", meta.UpdatedAt)
	assert.Equal(t, "2023-12", meta.FirstPeriod)
	assert.Equal(t, "2024-02", meta.LastPeriod)
	assert.Equal(t, "2024-02", meta.ReferencePeriod)
	assert.Equal(t, 8, meta.Records)
	assert.Equal(t, 2, meta.Municipalities)
	assert.Equal(t, 4, meta.Chains)
	assert.Equal(t, 4, meta.Subclasses)
	assert.True(t, meta.SourceIsOfficial)
	assert.Equal(t, "Novo CAGED", meta.Source)
	assert.Equal(t, "abc123", meta.ClassificationVersion)
	assert.Equal(t, "run-1", meta.RunID)
}

func TestBuildMetadataProvenance(t *testing.T) {
	yes, no := true, false
	flagged := func(v *bool) func(*domain.RawMovement) {
		return func(m *domain.RawMovement) { m.SourceIsOfficial = v }
	}
	opts := MetadataOptions{Source: "Novo CAGED", SampleSource: "Amostra", SourceIsOfficial: true}

	tests := []struct {
		name         string
		records      []domain.EnrichedMovement
		runOfficial  bool
		wantOfficial bool
		wantSource   string
	}{
		{
			name:         "unflagged records follow the run",
			records:      enrich(t, testutil.Movement("0151201")),
			runOfficial:  true,
			wantOfficial: true,
			wantSource:   "Novo CAGED",
		},
		{
			name:         "unflagged sample run",
			records:      enrich(t, testutil.Movement("0151201")),
			runOfficial:  false,
			wantOfficial: false,
			wantSource:   "Amostra",
		},
		{
			name:         "one sample record marks the output as sample",
			records:      enrich(t, testutil.Movement("0151201", flagged(&yes)), testutil.Movement("0151201", flagged(&no))),
			runOfficial:  true,
			wantOfficial: false,
			wantSource:   "Amostra",
		},
		{
			name:         "flagged official records override a sample run",
			records:      enrich(t, testutil.Movement("0151201", flagged(&yes))),
			runOfficial:  false,
			wantOfficial: true,
			wantSource:   "Novo CAGED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := opts
			o.SourceIsOfficial = tt.runOfficial

			meta := BuildMetadata(tt.records, o)

			assert.Equal(t, tt.wantOfficial, meta.SourceIsOfficial)
			assert.Equal(t, tt.wantSource, meta.Source)
		})
	}
}

func TestBuildMetadataEmpty(t *testing.T) {
	meta := BuildMetadata(nil, MetadataOptions{UpdatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)})

	assert.Zero(t, meta.Records)
	assert.Empty(t, meta.FirstPeriod)
	assert.Empty(t, meta.ReferencePeriod)
	assert.Equal(t, "2024-01-02", meta.UpdatedAt)
}
