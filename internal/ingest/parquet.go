package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	apperrors "agrocaged/internal/errors"
	"agrocaged/pkg/contracts/domain"
)

// ParquetReader reads Parquet extracts through an in-memory DuckDB instance
type ParquetReader struct {
	logger *slog.Logger
}

// NewParquetReader creates a Parquet reader
func NewParquetReader(logger *slog.Logger) *ParquetReader {
	return &ParquetReader{logger: logger}
}

// Read implements Reader
func (r *ParquetReader) Read(ctx context.Context, path string) ([]domain.RawMovement, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.NewMissingInputError("microdata", path, err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, apperrors.NewStorageError("open duckdb", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT * FROM read_parquet(?)", path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("query parquet %s", path), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apperrors.NewParsingError("read parquet columns", err)
	}

	records, err := decodeRows(ctx, &sqlSource{rows: rows, columns: columns}, path)
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "read parquet input",
		slog.String("file", path),
		slog.Int("columns", len(columns)),
		slog.Int("rows", len(records)))
	return records, nil
}

// sqlSource presents a result set as text rows, header first
type sqlSource struct {
	rows       *sql.Rows
	columns    []string
	headerSent bool
}

func (s *sqlSource) Next() ([]string, error) {
	if !s.headerSent {
		s.headerSent = true
		return s.columns, nil
	}
	if !s.rows.Next() {
		return nil, s.rows.Err()
	}

	values := make([]any, len(s.columns))
	ptrs := make([]any, len(s.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = cellText(v)
	}
	return out, nil
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format("200601")
	default:
		return fmt.Sprint(x)
	}
}
