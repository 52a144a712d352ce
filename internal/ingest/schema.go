package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"agrocaged/internal/classification"
	"agrocaged/internal/dimensions"
	apperrors "agrocaged/internal/errors"
	"agrocaged/pkg/contracts/domain"
)

// Normalized column names
const (
	ColYear             = "ano"
	ColMonth            = "mes"
	ColCompetence       = "competenciamov"
	ColState            = "uf"
	ColMunicipality     = "municipio"
	ColSubclass         = "subclasse"
	ColBalance          = "saldomovimentacao"
	ColMovementType     = "tipomovimentacao"
	ColSex              = "sexo"
	ColAge              = "idade"
	ColEducation        = "graudeinstrucao"
	ColRace             = "racacor"
	ColEmployerSize     = "tamestabjan"
	ColSalary           = "salario"
	ColHours            = "horascontratuais"
	ColApprentice       = "indicadoraprendiz"
	ColIntermittent     = "indtrabintermitente"
	ColPartTime         = "indtrabparcial"
	ColOccupation       = "cbo2002ocupacao"
	ColPersistedChain   = "cadeia_produtiva"
	ColSourceIsOfficial = "_source_is_official"
)

// RequiredColumns must be present in every input. The temporal key is checked apart
// because either competenciamov or ano+mes satisfies it.
var RequiredColumns = []string{ColMunicipality, ColSubclass, ColBalance}

const occupationWidth = 6

// headerAliases maps the column names of processed extracts to the contract columns
var headerAliases = map[string]string{
	"municipio_codigo":     ColMunicipality,
	"cnae_subclasse":       ColSubclass,
	"tipo_mov_codigo":      ColMovementType,
	"sexo_codigo":          ColSex,
	"idade_anos":           ColAge,
	"escolaridade_codigo":  ColEducation,
	"raca_cor_codigo":      ColRace,
	"porte_empresa_codigo": ColEmployerSize,
	"horas_contratuais":    ColHours,
	"is_aprendiz":          ColApprentice,
	"is_intermitente":      ColIntermittent,
	"is_parcial":           ColPartTime,
	"cbo_codigo":           ColOccupation,
}

// binding maps normalized column names to their position in a row
type binding struct {
	index map[string]int
}

// bind matches a header row against the column contract
func bind(headers []string) (*binding, error) {
	b := &binding{index: make(map[string]int, len(headers))}
	for i, h := range headers {
		name := NormalizeHeader(h)
		if name == "" {
			continue
		}
		if col, ok := headerAliases[name]; ok {
			name = col
		}
		if _, dup := b.index[name]; !dup {
			b.index[name] = i
		}
	}

	for _, col := range RequiredColumns {
		if !b.has(col) {
			return nil, apperrors.NewSchemaError(col, fmt.Sprintf("required column %q is missing", col))
		}
	}
	if !b.has(ColCompetence) && !(b.has(ColYear) && b.has(ColMonth)) {
		return nil, apperrors.NewSchemaError(ColCompetence,
			"temporal key is missing: expected competenciamov or ano and mes")
	}
	return b, nil
}

func (b *binding) has(col string) bool {
	_, ok := b.index[col]
	return ok
}

func (b *binding) get(row []string, col string) string {
	i, ok := b.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// decode converts one data row. row is the 1-based data row number used in errors.
func (b *binding) decode(row []string, rowNum int) (domain.RawMovement, error) {
	m := domain.RawMovement{
		Row:            rowNum,
		State:          b.get(row, ColState),
		Municipality:   b.get(row, ColMunicipality),
		MovementType:   b.get(row, ColMovementType),
		Sex:            b.get(row, ColSex),
		Age:            b.get(row, ColAge),
		Education:      b.get(row, ColEducation),
		Race:           b.get(row, ColRace),
		EmployerSize:   b.get(row, ColEmployerSize),
		Salary:         b.get(row, ColSalary),
		Hours:          b.get(row, ColHours),
		Apprentice:     b.get(row, ColApprentice),
		Intermittent:   b.get(row, ColIntermittent),
		PartTime:       b.get(row, ColPartTime),
		PersistedChain: b.get(row, ColPersistedChain),
	}

	var err error
	if b.has(ColCompetence) && b.get(row, ColCompetence) != "" {
		m.Year, m.Month, err = parseCompetence(b.get(row, ColCompetence))
		if err != nil {
			return m, apperrors.NewRowSchemaError(rowNum, ColCompetence, err.Error())
		}
	} else {
		if m.Year, err = parseInteger(b.get(row, ColYear)); err != nil {
			return m, apperrors.NewRowSchemaError(rowNum, ColYear, "year "+err.Error())
		}
		if m.Month, err = parseInteger(b.get(row, ColMonth)); err != nil {
			return m, apperrors.NewRowSchemaError(rowNum, ColMonth, "month "+err.Error())
		}
	}

	if m.Balance, err = parseInteger(b.get(row, ColBalance)); err != nil {
		return m, apperrors.NewRowSchemaError(rowNum, ColBalance, "balance "+err.Error())
	}

	subclass := b.get(row, ColSubclass)
	if padded, ok := classification.NormalizeCode(subclass); ok {
		subclass = padded
	}
	m.Subclass = subclass
	m.Municipality = strings.TrimSuffix(m.Municipality, ".0")
	m.Occupation = padOccupation(b.get(row, ColOccupation))

	if b.has(ColSourceIsOfficial) {
		m.SourceIsOfficial = parseBool(b.get(row, ColSourceIsOfficial))
	}
	return m, nil
}

// parseCompetence reads YYYYMM or YYYY-MM
func parseCompetence(s string) (int, int, error) {
	s = strings.ReplaceAll(strings.TrimSuffix(s, ".0"), "-", "")
	if len(s) != 6 {
		return 0, 0, fmt.Errorf("competence %q is not YYYYMM", s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0, 0, fmt.Errorf("competence %q is not YYYYMM", s)
	}
	month, err := strconv.Atoi(s[4:])
	if err != nil {
		return 0, 0, fmt.Errorf("competence %q is not YYYYMM", s)
	}
	return year, month, nil
}

func parseInteger(s string) (int, error) {
	v, ok := dimensions.ParseNumber(s)
	if !ok || v != math.Trunc(v) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(v), nil
}

func padOccupation(s string) string {
	s = strings.TrimSuffix(s, ".0")
	if s == "" || len(s) >= occupationWidth {
		return s
	}
	if _, err := strconv.Atoi(s); err != nil {
		return s
	}
	return strings.Repeat("0", occupationWidth-len(s)) + s
}

func parseBool(s string) *bool {
	var v bool
	switch strings.ToLower(s) {
	case "true", "1", "1.0", "sim", "yes":
		v = true
	case "false", "0", "0.0", "nao", "não", "no":
		v = false
	default:
		return nil
	}
	return &v
}
