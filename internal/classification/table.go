// Package classification maps CNAE subclass codes to productive chains.
//
// A Table is immutable once built. Lookups never fail: codes absent from the table
// classify to Other and labels absent from it describe and color with the fallback.
package classification

import (
	"fmt"
	"strings"
)

// Other is the chain of every code the table does not know
const Other = "Other"

// Fallback display values
const (
	DefaultDescription = "Other activities"
	DefaultColor       = "#808080"
)

// CodeWidth is the width of a CNAE subclass code
const CodeWidth = 7

// Chain is one productive chain and the subclasses it groups
type Chain struct {
	Label       string   `yaml:"label"`
	Description string   `yaml:"description"`
	Color       string   `yaml:"color"`
	Codes       []string `yaml:"codes"`
}

// Fallback holds the display values used for Other and for unknown labels
type Fallback struct {
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	Color       string `yaml:"color"`
}

// Table is the code to chain mapping plus its description and color side tables
type Table struct {
	codes    map[string]string
	chains   map[string]Chain
	labels   []string
	fallback Fallback
	version  string
}

// NewTable builds a table from chains in display order. A code mapped to two
// different chains, an empty label or a repeated label is rejected.
func NewTable(chains []Chain, fallback Fallback, version string) (*Table, error) {
	if fallback.Label == "" {
		fallback.Label = Other
	}
	if fallback.Description == "" {
		fallback.Description = DefaultDescription
	}
	if fallback.Color == "" {
		fallback.Color = DefaultColor
	}

	t := &Table{
		codes:    make(map[string]string),
		chains:   make(map[string]Chain, len(chains)),
		labels:   make([]string, 0, len(chains)),
		fallback: fallback,
		version:  version,
	}

	for _, chain := range chains {
		if strings.TrimSpace(chain.Label) == "" {
			return nil, fmt.Errorf("chain with %d codes has no label", len(chain.Codes))
		}
		if chain.Label == fallback.Label {
			return nil, fmt.Errorf("chain label %q is reserved for unclassified codes", chain.Label)
		}
		if _, dup := t.chains[chain.Label]; dup {
			return nil, fmt.Errorf("chain %q declared twice", chain.Label)
		}

		for _, raw := range chain.Codes {
			code, ok := normalizeCode(raw)
			if !ok {
				return nil, fmt.Errorf("chain %q: invalid subclass code %q", chain.Label, raw)
			}
			if prev, dup := t.codes[code]; dup {
				return nil, fmt.Errorf("subclass %s mapped to both %q and %q", code, prev, chain.Label)
			}
			t.codes[code] = chain.Label
		}

		t.chains[chain.Label] = chain
		t.labels = append(t.labels, chain.Label)
	}

	return t, nil
}

// Classify returns the chain of a subclass code, Other when unknown
func (t *Table) Classify(code string) string {
	normalized, ok := normalizeCode(code)
	if !ok {
		return t.fallback.Label
	}
	if label, found := t.codes[normalized]; found {
		return label
	}
	return t.fallback.Label
}

// Resolve re-derives the chain of a code. The current table wins; a label persisted by a
// previous run is kept only when the table has no entry for the code.
func (t *Table) Resolve(code, persisted string) string {
	if normalized, ok := normalizeCode(code); ok {
		if label, found := t.codes[normalized]; found {
			return label
		}
	}
	if persisted = strings.TrimSpace(persisted); persisted != "" {
		return persisted
	}
	return t.fallback.Label
}

// Describe returns the description of a chain label
func (t *Table) Describe(label string) string {
	if chain, ok := t.chains[label]; ok && chain.Description != "" {
		return chain.Description
	}
	return t.fallback.Description
}

// ColorOf returns the display color of a chain label
func (t *Table) ColorOf(label string) string {
	if chain, ok := t.chains[label]; ok && chain.Color != "" {
		return chain.Color
	}
	return t.fallback.Color
}

// Labels lists the known chains in declaration order, without the fallback
func (t *Table) Labels() []string {
	labels := make([]string, len(t.labels))
	copy(labels, t.labels)
	return labels
}

// OtherLabel is the label given to unclassified codes
func (t *Table) OtherLabel() string { return t.fallback.Label }

// Len is the number of mapped subclass codes
func (t *Table) Len() int { return len(t.codes) }

// Version identifies the content the table was built from
func (t *Table) Version() string { return t.version }

// NormalizeCode zero-pads a subclass code to CodeWidth digits.
// It reports false for blank, non-digit or over-long codes.
func NormalizeCode(code string) (string, bool) {
	return normalizeCode(code)
}

func normalizeCode(code string) (string, bool) {
	code = strings.TrimSpace(code)
	// spreadsheet exports sometimes carry codes as floats
	code = strings.TrimSuffix(code, ".0")
	if code == "" || len(code) > CodeWidth {
		return "", false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	if len(code) < CodeWidth {
		code = strings.Repeat("0", CodeWidth-len(code)) + code
	}
	return code, true
}
