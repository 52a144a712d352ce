package dimensions

import (
	"fmt"
	"math"
)

// NotInformed is the label for values that cannot be derived
const NotInformed = "Not informed"

// Bracket is a closed age interval. A nil Max makes the bracket open ended.
type Bracket struct {
	Min   int    `yaml:"min"`
	Max   *int   `yaml:"max"`
	Label string `yaml:"label"`
}

// contains compares in float64; ages beyond the int range land in the open bracket
func (b Bracket) contains(years float64) bool {
	return years >= float64(b.Min) && (b.Max == nil || years <= float64(*b.Max))
}

// StandardAgeBrackets are the brackets used by the labor statistics releases
var StandardAgeBrackets = []Bracket{
	{Min: 0, Max: intPtr(17), Label: "Menor de 18"},
	{Min: 18, Max: intPtr(24), Label: "18 a 24 anos"},
	{Min: 25, Max: intPtr(29), Label: "25 a 29 anos"},
	{Min: 30, Max: intPtr(39), Label: "30 a 39 anos"},
	{Min: 40, Max: intPtr(49), Label: "40 a 49 anos"},
	{Min: 50, Max: intPtr(64), Label: "50 a 64 anos"},
	{Min: 65, Label: "65 anos ou mais"},
}

func intPtr(v int) *int { return &v }

// AgeBrackets is an ordered list of disjoint brackets covering every age from zero up
type AgeBrackets struct {
	brackets []Bracket
	rank     map[string]int
}

// NewAgeBrackets validates that the brackets start at zero, are contiguous, do not
// overlap and that only the last one is open ended.
func NewAgeBrackets(brackets []Bracket) (*AgeBrackets, error) {
	if len(brackets) == 0 {
		return nil, fmt.Errorf("age brackets: at least one bracket is required")
	}
	if brackets[0].Min != 0 {
		return nil, fmt.Errorf("age brackets: first bracket must start at 0, got %d", brackets[0].Min)
	}

	rank := make(map[string]int, len(brackets)+1)
	for i, b := range brackets {
		if b.Label == "" || b.Label == NotInformed {
			return nil, fmt.Errorf("age brackets: bracket %d has invalid label %q", i, b.Label)
		}
		if _, dup := rank[b.Label]; dup {
			return nil, fmt.Errorf("age brackets: duplicate label %q", b.Label)
		}
		rank[b.Label] = i

		last := i == len(brackets)-1
		if b.Max == nil {
			if !last {
				return nil, fmt.Errorf("age brackets: only the last bracket may be open ended, %q is not last", b.Label)
			}
			continue
		}
		if *b.Max < b.Min {
			return nil, fmt.Errorf("age brackets: %q has max %d below min %d", b.Label, *b.Max, b.Min)
		}
		if !last && brackets[i+1].Min != *b.Max+1 {
			return nil, fmt.Errorf("age brackets: gap or overlap between %q and %q", b.Label, brackets[i+1].Label)
		}
	}
	rank[NotInformed] = len(brackets)

	copied := make([]Bracket, len(brackets))
	copy(copied, brackets)
	return &AgeBrackets{brackets: copied, rank: rank}, nil
}

// Label returns the bracket of an age in years
func (a *AgeBrackets) Label(age float64) string {
	if math.IsNaN(age) || math.IsInf(age, 0) || age < 0 {
		return NotInformed
	}
	years := math.Floor(age)
	for _, b := range a.brackets {
		if b.contains(years) {
			return b.Label
		}
	}
	return NotInformed
}

// Derive parses a raw age field and returns its bracket and numeric value.
// The value is NaN when the field is blank, not numeric or negative.
func (a *AgeBrackets) Derive(raw string) (string, float64) {
	age, ok := ParseNumber(raw)
	if !ok || age < 0 {
		return NotInformed, math.NaN()
	}
	return a.Label(age), age
}

// Labels lists the bracket labels in order, NotInformed last
func (a *AgeBrackets) Labels() []string {
	labels := make([]string, 0, len(a.brackets)+1)
	for _, b := range a.brackets {
		labels = append(labels, b.Label)
	}
	return append(labels, NotInformed)
}

// Rank is the sort position of a label. Unknown labels sort after NotInformed.
func (a *AgeBrackets) Rank(label string) int {
	if r, ok := a.rank[label]; ok {
		return r
	}
	return len(a.rank)
}
