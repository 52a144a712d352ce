package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"agrocaged/internal/config"
)

// utf8BOM helps spreadsheet tools recognize UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes flat tables as CSV files under one directory
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer rooted at dir
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{dir: dir, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// WriteCSV writes data to a CSV file relative to the writer directory
func (w *CSVWriter) WriteCSV(fileName string, options WriteOptions) (string, error) {
	fullPath := filepath.Join(w.dir, fileName)

	w.logger.Debug("Writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return "", fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return "", fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return fullPath, file.Close()
}

// WriteTable writes one flat table as <snake_name>.csv with a BOM
func (w *CSVWriter) WriteTable(table *FlatTable) (string, error) {
	return w.WriteCSV(config.SnakeCase(table.Name)+".csv", WriteOptions{
		Headers:   table.Headers,
		Records:   table.Rows,
		BOMPrefix: true,
	})
}
