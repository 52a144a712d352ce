package dimensions

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupName(t *testing.T) {
	sex := NewLookup("sex", map[string]string{"1": "Masculino", "3": "Feminino"})
	division := NewLookup("division", map[string]string{"01": "Agricultura e Pecuária"})

	assert.Equal(t, "Masculino", sex.Name("1"))
	assert.Equal(t, "Masculino", sex.Name("1.0"))
	assert.Equal(t, "Masculino", sex.Name(" 01 "))
	assert.Equal(t, "Feminino", sex.Name("3"))
	assert.Equal(t, NotInformed, sex.Name("2"))
	assert.Equal(t, NotInformed, sex.Name(""))
	assert.Equal(t, NotInformed, sex.Name("x"))

	assert.Equal(t, "Agricultura e Pecuária", division.Name("01"))
	assert.Equal(t, NotInformed, division.Name("05"))

	assert.Equal(t, 2, sex.Len())
	assert.Equal(t, "sex", sex.Dimension())
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"1800,00", 1800, true},
		{"1800.50", 1800.5, true},
		{"1.800,50", 1800.5, true},
		{" 44 ", 44, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseNumber(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			} else {
				assert.True(t, math.IsNaN(got))
			}
		})
	}
}

func TestParseFlag(t *testing.T) {
	assert.True(t, ParseFlag("1"))
	assert.True(t, ParseFlag("1.0"))
	assert.False(t, ParseFlag("0"))
	assert.False(t, ParseFlag(""))
	assert.False(t, ParseFlag("9"))
}

func TestNewSet(t *testing.T) {
	set, err := NewSet(Enumerations{Sex: map[string]string{"1": "Masculino"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Masculino", set.Sex.Name("1"))
	assert.Equal(t, NotInformed, set.Education.Name("7"))
	assert.Len(t, set.Ages.Labels(), len(StandardAgeBrackets)+1)

	_, err = NewSet(Enumerations{}, []Bracket{{Min: 5, Label: "late"}})
	assert.Error(t, err)
}
