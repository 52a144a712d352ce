package dimensions

import "fmt"

// Enumerations are the coded value tables of the microdata
type Enumerations struct {
	Sex          map[string]string `yaml:"sex"`
	Education    map[string]string `yaml:"education"`
	Race         map[string]string `yaml:"race"`
	MovementType map[string]string `yaml:"movement_type"`
	EmployerSize map[string]string `yaml:"employer_size"`
	Division     map[string]string `yaml:"division"`
}

// Set bundles every derivation applied to a record
type Set struct {
	Ages         *AgeBrackets
	Sex          Lookup
	Education    Lookup
	Race         Lookup
	MovementType Lookup
	EmployerSize Lookup
	Division     Lookup
}

// NewSet builds a Set. StandardAgeBrackets are used when brackets is empty.
func NewSet(enums Enumerations, brackets []Bracket) (*Set, error) {
	if len(brackets) == 0 {
		brackets = StandardAgeBrackets
	}
	ages, err := NewAgeBrackets(brackets)
	if err != nil {
		return nil, fmt.Errorf("dimension set: %w", err)
	}

	return &Set{
		Ages:         ages,
		Sex:          NewLookup("sex", enums.Sex),
		Education:    NewLookup("education", enums.Education),
		Race:         NewLookup("race", enums.Race),
		MovementType: NewLookup("movement_type", enums.MovementType),
		EmployerSize: NewLookup("employer_size", enums.EmployerSize),
		Division:     NewLookup("division", enums.Division),
	}, nil
}
