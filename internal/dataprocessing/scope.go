package dataprocessing

import (
	"log/slog"
	"strings"

	"agrocaged/pkg/contracts/domain"
)

// Scope selects the records of one state and a set of CNAE divisions.
// Records without a state column value are kept, since regional extracts omit it.
type Scope struct {
	State     string
	Divisions []string
}

// Filter returns the in-scope records in their original order
func (s Scope) Filter(records []domain.RawMovement, logger *slog.Logger) []domain.RawMovement {
	divisions := make(map[string]bool, len(s.Divisions))
	for _, d := range s.Divisions {
		divisions[d] = true
	}

	kept := records[:0:0]
	var outOfState, outOfSector int
	for _, r := range records {
		if s.State != "" && r.State != "" && strings.TrimSuffix(r.State, ".0") != s.State {
			outOfState++
			continue
		}
		if len(divisions) > 0 && (len(r.Subclass) < 2 || !divisions[r.Subclass[:2]]) {
			outOfSector++
			continue
		}
		kept = append(kept, r)
	}

	if logger != nil && (outOfState > 0 || outOfSector > 0) {
		logger.Info("records outside scope dropped",
			slog.String("component", "scope"),
			slog.String("state", s.State),
			slog.Int("other_state", outOfState),
			slog.Int("other_division", outOfSector),
			slog.Int("kept", len(kept)))
	}
	return kept
}
