package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"agrocaged/pkg/contracts/domain"
)

// Movement returns a valid admission record in Paraná for the given subclass.
// Options mutate the record before it is returned.
func Movement(subclass string, opts ...func(*domain.RawMovement)) domain.RawMovement {
	m := domain.RawMovement{
		State:        "41",
		Year:         2024,
		Month:        1,
		Municipality: "410690",
		Subclass:     subclass,
		Balance:      1,
		MovementType: "10",
		Sex:          "1",
		Age:          "30",
		Education:    "7",
		Race:         "2",
		EmployerSize: "3",
		Salary:       "1800,00",
		Hours:        "44",
		Apprentice:   "0",
		Intermittent: "0",
		PartTime:     "0",
		Occupation:   "622010",
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Termination flips a fixture into a termination
func Termination(m *domain.RawMovement) {
	m.Balance = -1
	m.MovementType = "31"
}

// WithSalary sets the raw salary text
func WithSalary(salary string) func(*domain.RawMovement) {
	return func(m *domain.RawMovement) { m.Salary = salary }
}

// WithAge sets the raw age text
func WithAge(age string) func(*domain.RawMovement) {
	return func(m *domain.RawMovement) { m.Age = age }
}

// WithPeriod sets year and month
func WithPeriod(year, month int) func(*domain.RawMovement) {
	return func(m *domain.RawMovement) {
		m.Year = year
		m.Month = month
	}
}

// WithMunicipality sets the municipality code
func WithMunicipality(code string) func(*domain.RawMovement) {
	return func(m *domain.RawMovement) { m.Municipality = code }
}

// WithSex sets the sex code
func WithSex(code string) func(*domain.RawMovement) {
	return func(m *domain.RawMovement) { m.Sex = code }
}

// MicrodataHeader is the column order written by WriteMicrodataCSV
var MicrodataHeader = []string{
	"competenciamov", "uf", "município", "subclasse", "saldomovimentação",
	"tipomovimentação", "sexo", "idade", "graudeinstrução", "raçacor",
	"tamestabjan", "salário", "horascontratuais", "indicadoraprendiz",
	"indtrabintermitente", "indtrabparcial", "cbo2002ocupação",
}

// MicrodataRow renders a fixture in MicrodataHeader order
func MicrodataRow(m domain.RawMovement) []string {
	return []string{
		fmt.Sprintf("%04d%02d", m.Year, m.Month), m.State, m.Municipality, m.Subclass,
		fmt.Sprintf("%d", m.Balance), m.MovementType, m.Sex, m.Age, m.Education, m.Race,
		m.EmployerSize, m.Salary, m.Hours, m.Apprentice, m.Intermittent, m.PartTime, m.Occupation,
	}
}

// WriteMicrodataCSV writes fixtures as a semicolon separated CAGED file and returns its path
func WriteMicrodataCSV(t *testing.T, dir string, rows ...domain.RawMovement) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(strings.Join(MicrodataHeader, ";"))
	b.WriteString("\n")
	for _, m := range rows {
		b.WriteString(strings.Join(MicrodataRow(m), ";"))
		b.WriteString("\n")
	}

	path := filepath.Join(dir, "caged.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write microdata fixture: %v", err)
	}
	return path
}
