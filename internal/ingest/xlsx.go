package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	apperrors "agrocaged/internal/errors"
	"agrocaged/pkg/contracts/domain"
)

// XLSXReader reads the first worksheet of a workbook
type XLSXReader struct {
	logger *slog.Logger
}

// NewXLSXReader creates a workbook reader
func NewXLSXReader(logger *slog.Logger) *XLSXReader {
	return &XLSXReader{logger: logger}
}

// Read implements Reader
func (r *XLSXReader) Read(ctx context.Context, path string) ([]domain.RawMovement, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.NewMissingInputError("microdata", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("open workbook %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("workbook %s has no sheets", path), nil)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("read sheet %q", sheets[0]), err)
	}
	defer rows.Close()

	records, err := decodeRows(ctx, &xlsxSource{rows: rows}, path)
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "read workbook input",
		slog.String("file", path),
		slog.String("sheet", sheets[0]),
		slog.Int("rows", len(records)))
	return records, nil
}

type xlsxSource struct {
	rows *excelize.Rows
}

func (s *xlsxSource) Next() ([]string, error) {
	if !s.rows.Next() {
		return nil, s.rows.Error()
	}
	cols, err := s.rows.Columns()
	if err != nil {
		return nil, err
	}
	if cols == nil {
		cols = []string{}
	}
	return cols, nil
}
