package domain

// Metadata describes a produced output set
type Metadata struct {
	Title                 string `json:"titulo"`
	Subtitle              string `json:"subtitulo"`
	Source                string `json:"fonte"`
	UpdatedAt             string `json:"atualizacao"`
	FirstPeriod           string `json:"periodo_inicial"`
	LastPeriod            string `json:"periodo_final"`
	ReferencePeriod       string `json:"periodo_referencia"`
	Records               int    `json:"total_registros"`
	Municipalities        int    `json:"total_municipios"`
	Chains                int    `json:"total_cadeias"`
	Subclasses            int    `json:"total_subclasses"`
	SourceIsOfficial      bool   `json:"dados_oficiais"`
	ClassificationVersion string `json:"versao_classificacao"`
	RunID                 string `json:"execucao_id"`
	FormatVersion         string `json:"versao_formato"`
}

// Dashboard is the full set of summary tables produced by one run.
// The granular cubes are kept apart from the bundled tables.
type Dashboard struct {
	Metadata            Metadata                `json:"metadata"`
	KPIs                KPIs                    `json:"kpis"`
	Timeseries          []TimeseriesRow         `json:"timeseries"`
	ByChain             []ChainRow              `json:"byCadeia"`
	TimeseriesByChain   []ChainPeriodRow        `json:"timeseriesCadeia"`
	BySubclass          []SubclassRow           `json:"byCnae"`
	ByMunicipality      []MunicipalityRow       `json:"byMunicipio"`
	BySex               []SexRow                `json:"bySexo"`
	ByAgeBracket        []AgeBracketRow         `json:"byFaixaEtaria"`
	ByEducation         []EducationRow          `json:"byEscolaridade"`
	ByEmployerSize      []EmployerSizeRow       `json:"byPorte"`
	Seasonality         []SeasonalityRow        `json:"seasonality"`
	Yearly              []YearRow               `json:"yearly"`
	CrossChainSex       []ChainSexRow           `json:"crossCadeiaSexo"`
	CrossChainAge       []ChainAgeRow           `json:"crossCadeiaIdade"`
	CrossChainEducation []ChainEducationRow     `json:"crossCadeiaEscolaridade"`
	SalaryDistribution  []SalaryDistributionRow `json:"salaryDistribution"`
	TopMunicipalities   []MunicipalityRow       `json:"topMunicipios"`
	GranularCube        []CubeRow               `json:"-"`
	GranularDimensions  GranularDimensions      `json:"-"`
}

// Logical table names, as used for bundle keys
const (
	TableMetadata            = "metadata"
	TableKPIs                = "kpis"
	TableTimeseries          = "timeseries"
	TableByChain             = "byCadeia"
	TableTimeseriesByChain   = "timeseriesCadeia"
	TableBySubclass          = "byCnae"
	TableByMunicipality      = "byMunicipio"
	TableBySex               = "bySexo"
	TableByAgeBracket        = "byFaixaEtaria"
	TableByEducation         = "byEscolaridade"
	TableByEmployerSize      = "byPorte"
	TableSeasonality         = "seasonality"
	TableYearly              = "yearly"
	TableCrossChainSex       = "crossCadeiaSexo"
	TableCrossChainAge       = "crossCadeiaIdade"
	TableCrossChainEducation = "crossCadeiaEscolaridade"
	TableSalaryDistribution  = "salaryDistribution"
	TableTopMunicipalities   = "topMunicipios"
	TableGranularCube        = "granularCube"
	TableGranularDimensions  = "granularDimensions"
)

// BundleTables lists the tables of the aggregated bundle in output order
var BundleTables = []string{
	TableMetadata,
	TableKPIs,
	TableTimeseries,
	TableByChain,
	TableTimeseriesByChain,
	TableBySubclass,
	TableByMunicipality,
	TableBySex,
	TableByAgeBracket,
	TableByEducation,
	TableByEmployerSize,
	TableSeasonality,
	TableYearly,
	TableCrossChainSex,
	TableCrossChainAge,
	TableCrossChainEducation,
	TableSalaryDistribution,
	TableTopMunicipalities,
}

// Table returns the value of a logical table, including the standalone cubes
func (d *Dashboard) Table(name string) (any, bool) {
	switch name {
	case TableMetadata:
		return d.Metadata, true
	case TableKPIs:
		return d.KPIs, true
	case TableTimeseries:
		return d.Timeseries, true
	case TableByChain:
		return d.ByChain, true
	case TableTimeseriesByChain:
		return d.TimeseriesByChain, true
	case TableBySubclass:
		return d.BySubclass, true
	case TableByMunicipality:
		return d.ByMunicipality, true
	case TableBySex:
		return d.BySex, true
	case TableByAgeBracket:
		return d.ByAgeBracket, true
	case TableByEducation:
		return d.ByEducation, true
	case TableByEmployerSize:
		return d.ByEmployerSize, true
	case TableSeasonality:
		return d.Seasonality, true
	case TableYearly:
		return d.Yearly, true
	case TableCrossChainSex:
		return d.CrossChainSex, true
	case TableCrossChainAge:
		return d.CrossChainAge, true
	case TableCrossChainEducation:
		return d.CrossChainEducation, true
	case TableSalaryDistribution:
		return d.SalaryDistribution, true
	case TableTopMunicipalities:
		return d.TopMunicipalities, true
	case TableGranularCube:
		return d.GranularCube, true
	case TableGranularDimensions:
		return d.GranularDimensions, true
	}
	return nil, false
}
