package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"agrocaged/internal/config"
	apperrors "agrocaged/internal/errors"
	"agrocaged/pkg/contracts/domain"
)

// Options selects the artifacts an export produces. JSON is always written.
type Options struct {
	Formats  []string
	GzipCube bool
}

// Exporter writes a dashboard as a complete output set into one directory
type Exporter struct {
	dir    string
	opts   Options
	logger *slog.Logger
}

// New creates an exporter writing into dir
func New(dir string, opts Options, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		dir:    dir,
		opts:   opts,
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// Export writes every table, the bundle, the cubes and the optional CSV and XLSX
// renditions. It returns the artifacts in write order.
func (e *Exporter) Export(ctx context.Context, dash *domain.Dashboard) ([]Artifact, error) {
	start := time.Now()
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, apperrors.NewStorageError("create output directory", err)
	}

	var artifacts []Artifact
	record := func(name, path string) error {
		a, err := describeArtifact(e.dir, name, path)
		if err != nil {
			return apperrors.NewStorageError("describe artifact", err)
		}
		artifacts = append(artifacts, a)
		return nil
	}

	for _, name := range domain.BundleTables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value, _ := dash.Table(name)
		path := filepath.Join(e.dir, config.TableFile(name))
		if err := writeJSONFile(path, value, true, false); err != nil {
			return nil, exportError(name, err)
		}
		if err := record(name, path); err != nil {
			return nil, err
		}
	}

	bundlePath := filepath.Join(e.dir, config.BundleFile)
	if err := writeJSONFile(bundlePath, Bundle(dash), false, false); err != nil {
		return nil, exportError("bundle", err)
	}
	if err := record("bundle", bundlePath); err != nil {
		return nil, err
	}

	standalone := []struct{ name, file string }{
		{domain.TableGranularCube, config.CubeFile},
		{domain.TableGranularDimensions, config.DimensionsFile},
	}
	for _, s := range standalone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value, _ := dash.Table(s.name)
		path := filepath.Join(e.dir, s.file)
		if e.opts.GzipCube {
			path += GzipSuffix
		}
		if err := writeJSONFile(path, value, false, e.opts.GzipCube); err != nil {
			return nil, exportError(s.name, err)
		}
		if err := record(s.name, path); err != nil {
			return nil, err
		}
	}

	if e.wants(config.FormatCSV) || e.wants(config.FormatXLSX) {
		tables, err := FlatTables(dash)
		if err != nil {
			return nil, exportError("flat tables", err)
		}

		if e.wants(config.FormatCSV) {
			w := NewCSVWriter(filepath.Join(e.dir, config.CSVDir), e.logger)
			for _, table := range tables {
				path, err := w.WriteTable(table)
				if err != nil {
					return nil, exportError(table.Name, err)
				}
				if err := record(table.Name+".csv", path); err != nil {
					return nil, err
				}
			}
		}

		if e.wants(config.FormatXLSX) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			path := filepath.Join(e.dir, config.WorkbookFile)
			if err := WriteWorkbook(path, tables); err != nil {
				return nil, exportError("workbook", err)
			}
			if err := record("workbook", path); err != nil {
				return nil, err
			}
		}
	}

	e.logger.InfoContext(ctx, "output written",
		slog.String("directory", e.dir),
		slog.Int("artifacts", len(artifacts)),
		slog.Duration("duration", time.Since(start)))
	return artifacts, nil
}

func (e *Exporter) wants(format string) bool {
	return slices.Contains(e.opts.Formats, format)
}

func exportError(what string, err error) error {
	return apperrors.NewStorageError(fmt.Sprintf("export %s", what), err)
}
