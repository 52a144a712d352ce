package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"agrocaged/internal/aggregation"
	"agrocaged/internal/classification"
	"agrocaged/internal/config"
	"agrocaged/internal/dataprocessing"
	"agrocaged/internal/exporter"
	"agrocaged/internal/ingest"
	"agrocaged/internal/validation"
	"agrocaged/pkg/contracts/domain"
)

// Publisher uploads a published output directory
type Publisher interface {
	Publish(ctx context.Context, dir string, artifacts []exporter.Artifact) error
}

// Dependencies are the collaborators shared by the pipeline steps
type Dependencies struct {
	Config    config.PipelineConfig
	Assets    *classification.Assets
	Layout    config.Layout
	Publisher Publisher
	Clock     clockwork.Clock
	Logger    *slog.Logger
}

// LoadStep reads the microdata file and the optional display assets
type LoadStep struct {
	BaseStep
	deps  *Dependencies
	files *validation.FileValidator
}

// NewLoadStep creates the load step
func NewLoadStep(deps *Dependencies) *LoadStep {
	return &LoadStep{
		BaseStep: NewBaseStep(StepIDLoad, StepNameLoad),
		deps:     deps,
		files:    validation.NewFileValidator(deps.Logger),
	}
}

// Validate checks that the input file exists and has a supported format
func (s *LoadStep) Validate(*RunState) error {
	return s.files.ValidateInputFile(s.deps.Config.InputPath)
}

// Execute loads the records and the name and description lookups
func (s *LoadStep) Execute(ctx context.Context, run *RunState) error {
	raw, err := ingest.ReadFile(ctx, s.deps.Config.InputPath, s.deps.Logger)
	if err != nil {
		return err
	}

	names, err := ingest.LoadMunicipalityNames(s.deps.Config.MunicipalitiesFile)
	if err != nil {
		return err
	}
	descriptions, err := ingest.LoadSubclassDescriptions(s.deps.Config.SubclassDescriptions)
	if err != nil {
		return err
	}

	run.Raw = raw
	run.MunicipalityNames = names
	run.SubclassDescriptions = descriptions
	run.GetStep(s.ID()).SetMetadata(MetaRows, len(raw))
	return nil
}

// ValidateStep enforces the record invariants and checks the output location
type ValidateStep struct {
	BaseStep
	deps    *Dependencies
	records *validation.RecordValidator
	files   *validation.FileValidator
}

// NewValidateStep creates the validation step
func NewValidateStep(deps *Dependencies) *ValidateStep {
	return &ValidateStep{
		BaseStep: NewBaseStep(StepIDValidate, StepNameValidate, StepIDLoad),
		deps:     deps,
		records:  validation.NewRecordValidator(),
		files:    validation.NewFileValidator(deps.Logger),
	}
}

// Execute validates every raw record
func (s *ValidateStep) Execute(ctx context.Context, run *RunState) error {
	if err := s.records.ValidateAll(run.Raw); err != nil {
		return err
	}
	if err := s.files.ValidateOutputDirectory(s.deps.Layout.Root); err != nil {
		return err
	}
	run.GetStep(s.ID()).SetMetadata(MetaRows, len(run.Raw))
	return nil
}

// ScopeStep keeps the records of the configured state and CNAE divisions
type ScopeStep struct {
	BaseStep
	deps *Dependencies
}

// NewScopeStep creates the scope step
func NewScopeStep(deps *Dependencies) *ScopeStep {
	return &ScopeStep{
		BaseStep: NewBaseStep(StepIDScope, StepNameScope, StepIDValidate),
		deps:     deps,
	}
}

// Execute filters the raw records in place
func (s *ScopeStep) Execute(ctx context.Context, run *RunState) error {
	scope := dataprocessing.Scope{
		State:     s.deps.Config.State,
		Divisions: s.deps.Config.Divisions,
	}
	before := len(run.Raw)
	run.Raw = scope.Filter(run.Raw, s.deps.Logger)
	run.Dropped = before - len(run.Raw)

	state := run.GetStep(s.ID())
	state.SetMetadata(MetaRows, len(run.Raw))
	state.SetMetadata(MetaDropped, run.Dropped)
	return nil
}

// EnrichStep derives the dimensions of every record
type EnrichStep struct {
	BaseStep
	enricher *dataprocessing.Enricher
}

// NewEnrichStep creates the enrichment step
func NewEnrichStep(deps *Dependencies) *EnrichStep {
	return &EnrichStep{
		BaseStep: NewBaseStep(StepIDEnrich, StepNameEnrich, StepIDScope),
		enricher: dataprocessing.NewEnricher(deps.Assets, deps.Config.Workers, deps.Logger),
	}
}

// Execute enriches the scoped raw records
func (s *EnrichStep) Execute(ctx context.Context, run *RunState) error {
	records, err := s.enricher.Enrich(ctx, run.Raw)
	if err != nil {
		return err
	}
	run.Records = records
	run.GetStep(s.ID()).SetMetadata(MetaRows, len(records))
	return nil
}

// AggregateStep computes every table and the run metadata
type AggregateStep struct {
	BaseStep
	deps *Dependencies
}

// NewAggregateStep creates the aggregation step
func NewAggregateStep(deps *Dependencies) *AggregateStep {
	return &AggregateStep{
		BaseStep: NewBaseStep(StepIDAggregate, StepNameAggregate, StepIDEnrich),
		deps:     deps,
	}
}

// Execute runs the battery over the enriched records
func (s *AggregateStep) Execute(ctx context.Context, run *RunState) error {
	cfg := s.deps.Config
	battery := aggregation.NewBattery(s.deps.Assets, aggregation.Options{
		MunicipalityNames:    run.MunicipalityNames,
		SubclassDescriptions: run.SubclassDescriptions,
		TopMunicipalities:    cfg.TopMunicipalities,
	})

	dash, err := aggregation.NewEngine(battery, cfg.Workers, s.deps.Logger).Run(ctx, run.Records)
	if err != nil {
		return err
	}
	dash.Metadata = aggregation.BuildMetadata(run.Records, aggregation.MetadataOptions{
		Title:                 cfg.Title,
		Subtitle:              cfg.Subtitle,
		Source:                cfg.Source,
		SampleSource:          cfg.SampleSource,
		SourceIsOfficial:      cfg.SourceIsOfficial,
		UpdatedAt:             s.deps.Clock.Now(),
		ClassificationVersion: s.deps.Assets.Table.Version(),
		RunID:                 run.ID,
		FormatVersion:         FormatVersion,
	})

	run.Dashboard = dash
	state := run.GetStep(s.ID())
	state.SetMetadata(MetaRows, len(run.Records))
	state.SetMetadata(MetaTables, len(domain.BundleTables))
	return nil
}

// ExportStep writes the output set into the staging directory
type ExportStep struct {
	BaseStep
	deps *Dependencies
}

// NewExportStep creates the export step
func NewExportStep(deps *Dependencies) *ExportStep {
	return &ExportStep{
		BaseStep: NewBaseStep(StepIDExport, StepNameExport, StepIDAggregate),
		deps:     deps,
	}
}

// Validate requires a computed dashboard
func (s *ExportStep) Validate(run *RunState) error {
	if run.Dashboard == nil {
		return errors.New("no dashboard computed")
	}
	return nil
}

// Execute writes every artifact and the run manifest
func (s *ExportStep) Execute(ctx context.Context, run *RunState) error {
	layout := s.deps.Layout
	if err := layout.PrepareStaging(); err != nil {
		return err
	}

	exp := exporter.New(layout.Staging, exporter.Options{
		Formats:  s.deps.Config.Formats,
		GzipCube: s.deps.Config.GzipCube,
	}, s.deps.Logger)
	artifacts, err := exp.Export(ctx, run.Dashboard)
	if err != nil {
		return err
	}
	run.Artifacts = artifacts

	manifest := NewRunManifest(run, s.deps.Clock.Now())
	manifest.Input = s.deps.Config.InputPath
	manifest.ClassificationVersion = run.Dashboard.Metadata.ClassificationVersion
	manifest.SourceIsOfficial = run.Dashboard.Metadata.SourceIsOfficial
	if err := manifest.SaveToFile(layout.StagingPath(config.ManifestFile)); err != nil {
		return err
	}

	state := run.GetStep(s.ID())
	state.SetMetadata(MetaArtifacts, len(artifacts))
	state.SetMetadata(MetaPath, layout.Staging)
	return nil
}

// PromoteStep moves the staged output set into place
type PromoteStep struct {
	BaseStep
	deps *Dependencies
}

// NewPromoteStep creates the promote step
func NewPromoteStep(deps *Dependencies) *PromoteStep {
	return &PromoteStep{
		BaseStep: NewBaseStep(StepIDPromote, StepNamePromote, StepIDExport),
		deps:     deps,
	}
}

// Execute replaces the published directory with the staging directory
func (s *PromoteStep) Execute(ctx context.Context, run *RunState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.deps.Layout.Promote(); err != nil {
		return err
	}
	run.GetStep(s.ID()).SetMetadata(MetaPath, s.deps.Layout.Root)
	return nil
}

// PublishStep uploads the published directory
type PublishStep struct {
	BaseStep
	deps *Dependencies
}

// NewPublishStep creates the publish step
func NewPublishStep(deps *Dependencies) *PublishStep {
	return &PublishStep{
		BaseStep: NewBaseStep(StepIDPublish, StepNamePublish, StepIDPromote),
		deps:     deps,
	}
}

// Validate requires a publisher
func (s *PublishStep) Validate(*RunState) error {
	if s.deps.Publisher == nil {
		return errors.New("no publisher configured")
	}
	return nil
}

// Execute uploads every artifact and the manifest
func (s *PublishStep) Execute(ctx context.Context, run *RunState) error {
	artifacts := append([]exporter.Artifact{}, run.Artifacts...)
	artifacts = append(artifacts, exporter.Artifact{Name: "manifest", Path: config.ManifestFile})

	if err := s.deps.Publisher.Publish(ctx, s.deps.Layout.Root, artifacts); err != nil {
		return fmt.Errorf("publish %s: %w", s.deps.Layout.Root, err)
	}
	run.Published = true
	run.GetStep(s.ID()).SetMetadata(MetaArtifacts, len(artifacts))
	return nil
}
