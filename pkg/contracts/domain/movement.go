package domain

import "fmt"

// RawMovement is one worker movement event as read from the microdata.
// Coded fields keep their source text; interpretation happens during enrichment.
type RawMovement struct {
	Row              int    `json:"-"`
	State            string `json:"uf,omitempty"`
	Year             int    `json:"ano" validate:"min=1900,max=2999"`
	Month            int    `json:"mes" validate:"min=1,max=12"`
	Municipality     string `json:"municipio" validate:"required"`
	Subclass         string `json:"subclasse" validate:"required,len=7,numeric"`
	Balance          int    `json:"saldomovimentacao" validate:"oneof=-1 1"`
	MovementType     string `json:"tipomovimentacao"`
	Sex              string `json:"sexo"`
	Age              string `json:"idade"`
	Education        string `json:"graudeinstrucao"`
	Race             string `json:"racacor"`
	EmployerSize     string `json:"tamestabjan"`
	Salary           string `json:"salario"`
	Hours            string `json:"horascontratuais"`
	Apprentice       string `json:"indicadoraprendiz"`
	Intermittent     string `json:"indtrabintermitente"`
	PartTime         string `json:"indtrabparcial"`
	Occupation       string `json:"cbo2002ocupacao"`
	PersistedChain   string `json:"cadeia_produtiva,omitempty"`
	SourceIsOfficial *bool  `json:"_source_is_official,omitempty"`
}

// Direction reports whether the movement is an admission or a termination.
func (r RawMovement) Direction() Direction {
	if r.Balance > 0 {
		return DirectionAdmission
	}
	return DirectionTermination
}

// Direction of a movement event
type Direction string

const (
	DirectionAdmission   Direction = "admission"
	DirectionTermination Direction = "termination"
)

// EnrichedMovement carries the raw record unchanged plus every derived dimension.
// SalaryValue, HoursValue and AgeValue are NaN when the source text is not numeric.
type EnrichedMovement struct {
	RawMovement

	Period       string `json:"periodo"`
	CNAEGroup    string `json:"cnae_grupo"`
	CNAEDivision string `json:"cnae_divisao"`
	DivisionName string `json:"cnae_divisao_nome"`
	Chain        string `json:"cadeia_produtiva"`

	AgeValue         float64 `json:"idade_anos"`
	AgeBracket       string  `json:"faixa_etaria"`
	SexName          string  `json:"sexo_nome"`
	EducationName    string  `json:"escolaridade_nome"`
	RaceName         string  `json:"raca_cor_nome"`
	MovementTypeName string  `json:"tipo_mov_nome"`
	EmployerSizeName string  `json:"porte_empresa_nome"`

	SalaryValue float64 `json:"salario_valor"`
	HoursValue  float64 `json:"horas_contratuais"`

	IsAdmission    bool   `json:"is_admissao"`
	IsTermination  bool   `json:"is_demissao"`
	IsApprentice   bool   `json:"is_aprendiz"`
	IsIntermittent bool   `json:"is_intermitente"`
	IsPartTime     bool   `json:"is_parcial"`
	OccupationCode string `json:"cbo_codigo"`
}

// FormatPeriod renders a year and month as YYYY-MM
func FormatPeriod(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
