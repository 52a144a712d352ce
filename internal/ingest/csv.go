package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"

	apperrors "agrocaged/internal/errors"
	"agrocaged/pkg/contracts/domain"
)

// CSVReader reads delimited text files. The delimiter is detected from the header line.
type CSVReader struct {
	logger *slog.Logger
}

// NewCSVReader creates a delimited text reader
func NewCSVReader(logger *slog.Logger) *CSVReader {
	return &CSVReader{logger: logger}
}

// Read implements Reader
func (r *CSVReader) Read(ctx context.Context, path string) ([]domain.RawMovement, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewMissingInputError("microdata", path, err)
		}
		return nil, apperrors.NewStorageError("open "+path, err)
	}
	defer file.Close()

	buffered := bufio.NewReaderSize(file, 1<<20)
	delimiter := detectDelimiter(buffered)

	cr := csv.NewReader(buffered)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := decodeRows(ctx, csvSource{cr}, path)
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "read delimited input",
		slog.String("file", path),
		slog.String("delimiter", string(delimiter)),
		slog.Int("rows", len(records)))
	return records, nil
}

// detectDelimiter peeks at the header line and picks the more frequent of ';' and ','
func detectDelimiter(r *bufio.Reader) rune {
	peek, _ := r.Peek(4096)
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		peek = peek[:i]
	}
	if bytes.Count(peek, []byte{';'}) >= bytes.Count(peek, []byte{','}) && bytes.Contains(peek, []byte{';'}) {
		return ';'
	}
	if bytes.Contains(peek, []byte{'\t'}) && !bytes.Contains(peek, []byte{','}) {
		return '\t'
	}
	return ','
}

type csvSource struct {
	r *csv.Reader
}

func (s csvSource) Next() ([]string, error) {
	row, err := s.r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return row, err
}
