package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Well-known artifact names inside an output directory
const (
	MetadataFile   = "metadata.json"
	BundleFile     = "aggregated_full.json"
	CubeFile       = "granular_cube.json"
	DimensionsFile = "granular_dimensions.json"
	ManifestFile   = "manifest.json"
	WorkbookFile   = "dashboard.xlsx"
	CSVDir         = "csv"
)

// Layout resolves every artifact path of a run.
// Root is the published directory; Staging receives the files while a run is in progress.
type Layout struct {
	Root    string
	Staging string
}

// NewLayout returns the layout for an output directory
func NewLayout(outputDir string) Layout {
	root := filepath.Clean(outputDir)
	return Layout{
		Root:    root,
		Staging: root + ".staging",
	}
}

// TableFile returns the file name of a logical table, e.g. byFaixaEtaria -> by_faixa_etaria.json
func TableFile(name string) string {
	return SnakeCase(name) + ".json"
}

// StagingPath returns the path of an artifact inside the staging directory
func (l Layout) StagingPath(parts ...string) string {
	return filepath.Join(append([]string{l.Staging}, parts...)...)
}

// Path returns the path of a published artifact
func (l Layout) Path(parts ...string) string {
	return filepath.Join(append([]string{l.Root}, parts...)...)
}

// PrepareStaging removes leftovers from an interrupted run and recreates the staging directory
func (l Layout) PrepareStaging() error {
	if err := os.RemoveAll(l.Staging); err != nil {
		return fmt.Errorf("failed to clear staging directory %s: %w", l.Staging, err)
	}
	if err := os.MkdirAll(l.Staging, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory %s: %w", l.Staging, err)
	}
	return nil
}

// Promote replaces the published directory with the staging directory.
// The previous output stays in place until the rename of the new one succeeded.
func (l Layout) Promote() error {
	previous := l.Root + ".previous"
	if err := os.RemoveAll(previous); err != nil {
		return fmt.Errorf("failed to clear %s: %w", previous, err)
	}
	if err := os.MkdirAll(filepath.Dir(l.Root), 0755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", l.Root, err)
	}

	hadPrevious := FileExists(l.Root)
	if hadPrevious {
		if err := os.Rename(l.Root, previous); err != nil {
			return fmt.Errorf("failed to move previous output aside: %w", err)
		}
	}
	if err := os.Rename(l.Staging, l.Root); err != nil {
		if hadPrevious {
			_ = os.Rename(previous, l.Root)
		}
		return fmt.Errorf("failed to publish %s: %w", l.Root, err)
	}
	if hadPrevious {
		if err := os.RemoveAll(previous); err != nil {
			slog.Default().Warn("Failed to remove previous output",
				slog.String("directory", previous),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// Discard removes the staging directory of a failed run
func (l Layout) Discard() error {
	return os.RemoveAll(l.Staging)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// SnakeCase converts a camelCase identifier to snake_case
func SnakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
