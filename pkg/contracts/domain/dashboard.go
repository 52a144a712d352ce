package domain

// Flow holds the movement counts shared by every aggregation row.
// Balance is always derived from the two counts by NewFlow.
type Flow struct {
	Admissions   int64 `json:"admissoes"`
	Terminations int64 `json:"demissoes"`
	Balance      int64 `json:"saldo"`
}

// NewFlow builds a Flow with Balance = admissions - terminations
func NewFlow(admissions, terminations int64) Flow {
	return Flow{
		Admissions:   admissions,
		Terminations: terminations,
		Balance:      admissions - terminations,
	}
}

// Add returns the element-wise sum of two flows
func (f Flow) Add(other Flow) Flow {
	return NewFlow(f.Admissions+other.Admissions, f.Terminations+other.Terminations)
}

// Salary statistics are float64 and NaN when the group has no usable value.
// NaN is turned into null when the output is sanitized.

// SalaryCenter summarizes central compensation values
type SalaryCenter struct {
	Mean   float64 `json:"media"`
	Median float64 `json:"mediana"`
}

// WorkforceProfile summarizes the workers behind the movements
type WorkforceProfile struct {
	MalePercent float64 `json:"pct_masculino"`
	MeanAge     float64 `json:"idade_media"`
}

// KPIs is the headline indicator block
type KPIs struct {
	ReferencePeriod string           `json:"periodo_referencia"`
	LastPeriod      Flow             `json:"ultimo_mes"`
	Cumulative      Flow             `json:"acumulado"`
	Salary          SalaryCenter     `json:"salario"`
	Profile         WorkforceProfile `json:"perfil"`
}

// TimeseriesRow is one period of the monthly series
type TimeseriesRow struct {
	Period string `json:"periodo"`
	Flow
	SalaryMean        float64 `json:"salario_medio"`
	SalaryMedian      float64 `json:"salario_mediana"`
	CumulativeBalance int64   `json:"saldo_acumulado"`
}

// ChainRow summarizes one productive chain
type ChainRow struct {
	Chain string `json:"cadeia"`
	Flow
	SalaryMean        float64 `json:"salario_medio"`
	SalaryMedian      float64 `json:"salario_mediana"`
	SalaryStd         float64 `json:"salario_std"`
	Subclasses        int     `json:"n_subclasses"`
	Municipalities    int     `json:"n_municipios"`
	AdmissionsPercent float64 `json:"pct_admissoes"`
	Color             string  `json:"cor"`
	Description       string  `json:"descricao"`
}

// ChainPeriodRow is one (period, chain) cell of the chain time series
type ChainPeriodRow struct {
	Period string `json:"periodo"`
	Chain  string `json:"cadeia"`
	Flow
}

// SubclassRow summarizes one CNAE subclass
type SubclassRow struct {
	Subclass string `json:"cnae"`
	Chain    string `json:"cadeia"`
	Flow
	SalaryMean     float64 `json:"salario_medio"`
	SalaryMedian   float64 `json:"salario_mediana"`
	Municipalities int     `json:"n_municipios"`
	Description    string  `json:"descricao"`
}

// MunicipalityRow summarizes one municipality
type MunicipalityRow struct {
	Code string `json:"codigo"`
	Name string `json:"nome"`
	Flow
	SalaryMean    float64 `json:"salario_medio"`
	DominantChain string  `json:"cadeia_dominante"`
}

// DemographicStats are the value columns of the single-dimension breakdowns
type DemographicStats struct {
	Flow
	SalaryMean   float64 `json:"salario_medio"`
	SalaryMedian float64 `json:"salario_mediana"`
	Percent      float64 `json:"pct"`
}

// SexRow is one row of the breakdown by sex
type SexRow struct {
	Sex string `json:"sexo"`
	DemographicStats
}

// AgeBracketRow is one row of the breakdown by age bracket
type AgeBracketRow struct {
	Bracket string `json:"faixa"`
	DemographicStats
}

// EducationRow is one row of the breakdown by education level
type EducationRow struct {
	Education string `json:"escolaridade"`
	DemographicStats
}

// EmployerSizeRow is one row of the breakdown by employer size
type EmployerSizeRow struct {
	Size string `json:"porte"`
	DemographicStats
}

// SeasonalityRow aggregates one calendar month across all years
type SeasonalityRow struct {
	Month     int    `json:"mes"`
	MonthName string `json:"mes_nome"`
	Flow
	Index float64 `json:"indice"`
}

// YearRow summarizes one calendar year
type YearRow struct {
	Year int `json:"ano"`
	Flow
	SalaryMean float64 `json:"salario_medio"`
}

// ChainSexRow is one cell of the chain x sex cross tabulation
type ChainSexRow struct {
	Chain string `json:"cadeia"`
	Sex   string `json:"sexo"`
	Flow
	SalaryMean float64 `json:"salario_medio"`
}

// ChainAgeRow is one cell of the chain x age bracket cross tabulation
type ChainAgeRow struct {
	Chain   string `json:"cadeia"`
	Bracket string `json:"faixa"`
	Flow
}

// ChainEducationRow is one cell of the chain x education cross tabulation
type ChainEducationRow struct {
	Chain     string `json:"cadeia"`
	Education string `json:"escolaridade"`
	Flow
	SalaryMean float64 `json:"salario_medio"`
}

// SalaryDistributionRow is the compensation distribution of one chain
type SalaryDistributionRow struct {
	Chain string  `json:"cadeia"`
	Min   float64 `json:"min"`
	P10   float64 `json:"p10"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	P90   float64 `json:"p90"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
}

// CubeRow is one municipality x period x chain cell of the granular cube.
// Counts are additive across any subset of keys; SalaryMean is not.
type CubeRow struct {
	Municipality string `json:"mun"`
	Period       string `json:"periodo"`
	Chain        string `json:"cadeia"`
	Flow
	SalaryMean float64 `json:"salario_medio"`
}

// CubeSexRow extends the cube key with sex
type CubeSexRow struct {
	Municipality string `json:"mun"`
	Period       string `json:"periodo"`
	Chain        string `json:"cadeia"`
	Sex          string `json:"sexo"`
	Flow
}

// CubeAgeRow extends the cube key with the age bracket
type CubeAgeRow struct {
	Municipality string `json:"mun"`
	Period       string `json:"periodo"`
	Chain        string `json:"cadeia"`
	Bracket      string `json:"faixa"`
	Flow
}

// CubeEducationRow extends the cube key with education
type CubeEducationRow struct {
	Municipality string `json:"mun"`
	Period       string `json:"periodo"`
	Chain        string `json:"cadeia"`
	Education    string `json:"escolaridade"`
	Flow
	SalaryMean float64 `json:"salario_medio"`
}

// CubeSizeRow extends the cube key with employer size
type CubeSizeRow struct {
	Municipality string `json:"mun"`
	Period       string `json:"periodo"`
	Chain        string `json:"cadeia"`
	Size         string `json:"porte"`
	Flow
}

// GranularDimensions holds the narrow cubes, one per demographic dimension
type GranularDimensions struct {
	BySex          []CubeSexRow       `json:"bySexo"`
	ByAgeBracket   []CubeAgeRow       `json:"byFaixa"`
	ByEducation    []CubeEducationRow `json:"byEscolaridade"`
	ByEmployerSize []CubeSizeRow      `json:"byPorte"`
}
