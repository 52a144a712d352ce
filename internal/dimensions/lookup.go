package dimensions

import (
	"math"
	"strconv"
	"strings"
)

// Lookup maps a coded field to its display name with NotInformed as fallback.
// Numeric codes match regardless of formatting, so "1", "01" and "1.0" resolve alike
// unless the table has an exact entry for the raw text.
type Lookup struct {
	name   string
	values map[string]string
}

// NewLookup copies values into a lookup named for error messages and logs
func NewLookup(name string, values map[string]string) Lookup {
	copied := make(map[string]string, len(values))
	for code, label := range values {
		copied[strings.TrimSpace(code)] = label
	}
	return Lookup{name: name, values: copied}
}

// Name returns the display name of code
func (l Lookup) Name(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return NotInformed
	}
	if label, ok := l.values[code]; ok {
		return label
	}
	if n, ok := ParseNumber(code); ok && n == math.Trunc(n) {
		if label, ok := l.values[strconv.FormatInt(int64(n), 10)]; ok {
			return label
		}
	}
	return NotInformed
}

// Len is the number of known codes
func (l Lookup) Len() int { return len(l.values) }

// Dimension returns the lookup name
func (l Lookup) Dimension() string { return l.name }

// ParseNumber reads a locale formatted decimal. Both "1800,50" and "1800.50" parse,
// as does "1.800,50" where the dot groups thousands.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return math.NaN(), false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	return v, true
}

// ParseFlag reports whether an indicator field is set
func ParseFlag(raw string) bool {
	v, ok := ParseNumber(raw)
	return ok && v == 1
}
