package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	apperrors "agrocaged/internal/errors"
	"agrocaged/pkg/contracts/domain"
)

// ctxCheckInterval is how many rows a reader decodes between context checks
const ctxCheckInterval = 10000

// Reader loads every movement record of one input file
type Reader interface {
	Read(ctx context.Context, path string) ([]domain.RawMovement, error)
}

// ReaderFor selects a reader by file extension
func ReaderFor(path string, logger *slog.Logger) (Reader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "ingest"))

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		return NewCSVReader(logger), nil
	case ".xlsx":
		return NewXLSXReader(logger), nil
	case ".parquet":
		return NewParquetReader(logger), nil
	default:
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("no reader for %q files", ext)).
			WithContext("path", path)
	}
}

// ReadFile reads path with the reader matching its extension
func ReadFile(ctx context.Context, path string, logger *slog.Logger) ([]domain.RawMovement, error) {
	reader, err := ReaderFor(path, logger)
	if err != nil {
		return nil, err
	}
	return reader.Read(ctx, path)
}

// rowSource yields rows as string slices; the first call returns the header
type rowSource interface {
	Next() ([]string, error)
}

// decodeRows binds the header of src and decodes every following row
func decodeRows(ctx context.Context, src rowSource, path string) ([]domain.RawMovement, error) {
	header, err := src.Next()
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("read header of %s", path), err)
	}
	if header == nil {
		return nil, apperrors.NewSchemaError(ColSubclass, "input has no header row").WithContext("path", path)
	}

	b, err := bind(header)
	if err != nil {
		var appErr *apperrors.AppError
		if apperrors.As(err, &appErr) {
			appErr.WithContext("path", path)
		}
		return nil, err
	}

	var records []domain.RawMovement
	for rowNum := 1; ; rowNum++ {
		if rowNum%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := src.Next()
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("read row %d of %s", rowNum, path), err)
		}
		if row == nil {
			break
		}
		if isBlank(row) {
			continue
		}

		record, err := b.decode(row, rowNum)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
