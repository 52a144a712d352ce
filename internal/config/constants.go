package config

import "time"

// Application constants
const (
	AppName   = "agrocaged"
	EnvPrefix = "AGRO"

	DefaultOutputDir         = "data/dashboard"
	DefaultLogFile           = "logs/" + AppName + ".log"
	DefaultState             = "41"
	DefaultTopMunicipalities = 20
	DefaultCacheTTL          = 5 * time.Minute

	DefaultTitle        = "Emprego Agrícola - Paraná"
	DefaultSubtitle     = "Movimentações de emprego formal na agropecuária paranaense"
	DefaultSource       = "CAGED/MTE - Microdados do Novo CAGED"
	DefaultSampleSource = "CAGED/MTE (dados simulados baseados em estatísticas reais)"
)

// Output formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// API endpoints
const (
	APIBasePath     = "/api/v1"
	HealthEndpoint  = "/healthz"
	MetricsEndpoint = "/metrics"
)
