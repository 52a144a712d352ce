package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader lower-cases a column header and strips its BOM, surrounding
// whitespace, quotes and diacritics, so "Município" and "municipio" match.
func NormalizeHeader(header string) string {
	h := strings.TrimPrefix(header, "\ufeff")
	h = strings.Trim(strings.TrimSpace(h), `"'`)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, h); err == nil {
		h = stripped
	}
	return strings.ToLower(strings.TrimSpace(h))
}
