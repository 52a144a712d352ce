package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"agrocaged/internal/exporter"
)

// RunManifest describes a complete output set and the run that produced it
type RunManifest struct {
	RunID                 string              `json:"run_id"`
	CreatedAt             string              `json:"created_at"`
	Input                 string              `json:"input"`
	Records               int                 `json:"records"`
	Dropped               int                 `json:"dropped"`
	ClassificationVersion string              `json:"classification_version"`
	FormatVersion         string              `json:"format_version"`
	SourceIsOfficial      bool                `json:"source_is_official"`
	Steps                 []StepExecution     `json:"steps"`
	Artifacts             []exporter.Artifact `json:"artifacts"`
}

// StepExecution tracks the execution of a single step
type StepExecution struct {
	StepID   string `json:"step_id"`
	StepName string `json:"step_name"`
	Status   string `json:"status"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// NewRunManifest creates a manifest for run at the given time
func NewRunManifest(run *RunState, createdAt time.Time) *RunManifest {
	m := &RunManifest{
		RunID:         run.ID,
		CreatedAt:     createdAt.UTC().Format(time.RFC3339),
		Records:       len(run.Records),
		Dropped:       run.Dropped,
		FormatVersion: FormatVersion,
		Artifacts:     run.Artifacts,
	}
	for _, s := range run.Steps() {
		if s.Status == StepStatusPending {
			continue
		}
		m.Steps = append(m.Steps, StepExecution{
			StepID:   s.ID,
			StepName: s.Name,
			Status:   string(s.Status),
			Duration: s.Duration().String(),
			Error:    s.Error,
		})
	}
	return m
}

// SaveToFile saves the manifest as indented JSON
func (m *RunManifest) SaveToFile(path string) error {
	data, err := exporter.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	return nil
}

// LoadManifestFromFile loads a manifest from a JSON file
func LoadManifestFromFile(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &manifest, nil
}
