package operations

import (
	"time"

	"agrocaged/pkg/contracts/domain"
)

// Pipeline step identifiers
const (
	StepIDLoad      = "load"
	StepIDValidate  = "validate"
	StepIDScope     = "scope"
	StepIDEnrich    = "enrich"
	StepIDAggregate = "aggregate"
	StepIDExport    = "export"
	StepIDPromote   = "promote"
	StepIDPublish   = "publish"
)

// Pipeline step names
const (
	StepNameLoad      = "Load Microdata"
	StepNameValidate  = "Validate Records"
	StepNameScope     = "Apply Scope"
	StepNameEnrich    = "Enrich Records"
	StepNameAggregate = "Aggregate Tables"
	StepNameExport    = "Write Outputs"
	StepNamePromote   = "Publish Output Directory"
	StepNamePublish   = "Upload Outputs"
)

// FormatVersion identifies the layout of the produced files
const FormatVersion = "2"

// Metadata keys recorded on step states
const (
	MetaRows      = "rows"
	MetaDropped   = "dropped"
	MetaTables    = "tables"
	MetaArtifacts = "artifacts"
	MetaPath      = "path"
)

// RunResult summarizes a finished run
type RunResult struct {
	RunID     string        `json:"run_id"`
	Status    RunStatus     `json:"status"`
	Duration  time.Duration `json:"duration"`
	Steps     []*StepState  `json:"steps"`
	OutputDir string        `json:"output_dir"`
	Error     string        `json:"error,omitempty"`

	Dashboard *domain.Dashboard `json:"-"`
}
