package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/klauspost/compress/gzip"

	"agrocaged/internal/config"
	apperrors "agrocaged/internal/errors"
	"agrocaged/internal/exporter"
	"agrocaged/internal/infrastructure"
	"agrocaged/internal/operations"
	"agrocaged/pkg/contracts/domain"
)

const (
	manifestCacheKey = "manifest"
	bundleCacheKey   = "bundle"
	cubeCacheKey     = "cube"
	dimsCacheKey     = "dimensions"
	tableCachePrefix = "table:"
)

// Dimension names accepted by Dimension, matching the keys of granular_dimensions.json
const (
	DimensionSex          = "bySexo"
	DimensionAgeBracket   = "byFaixa"
	DimensionEducation    = "byEscolaridade"
	DimensionEmployerSize = "byPorte"
)

// Dimensions lists the narrow cubes in output order
var Dimensions = []string{DimensionSex, DimensionAgeBracket, DimensionEducation, DimensionEmployerSize}

// TableInfo describes one table of the published output set
type TableInfo struct {
	Name   string `json:"name"`
	File   string `json:"file"`
	Bytes  int64  `json:"bytes"`
	SHA256 string `json:"sha256"`
	CSV    bool   `json:"csv"`
}

// TableList is the response of ListTables
type TableList struct {
	RunID     string      `json:"run_id"`
	CreatedAt string      `json:"created_at"`
	Tables    []TableInfo `json:"tables"`
	Workbook  bool        `json:"workbook"`
}

// CubeFilter narrows the granular cubes. Zero fields match everything.
type CubeFilter struct {
	Municipality string `query:"mun" validate:"omitempty,len=6,code"`
	Chain        string `query:"cadeia" validate:"omitempty,max=100"`
	From         string `query:"from" validate:"omitempty,datetime=2006-01"`
	To           string `query:"to" validate:"omitempty,datetime=2006-01"`
	Limit        int    `query:"limit" validate:"omitempty,min=1,max=1000000"`
}

// matches reports whether a cube key passes the filter. Periods are YYYY-MM
// and compare correctly as strings.
func (f CubeFilter) matches(mun, period, chain string) bool {
	if f.Municipality != "" && mun != f.Municipality {
		return false
	}
	if f.Chain != "" && chain != f.Chain {
		return false
	}
	if f.From != "" && period < f.From {
		return false
	}
	if f.To != "" && period > f.To {
		return false
	}
	return true
}

// CubePage is a filtered slice of a cube with the number of matching rows
type CubePage[T any] struct {
	Total int `json:"total"`
	Rows  []T `json:"rows"`
}

func filterRows[T any](rows []T, f CubeFilter, key func(T) (string, string, string)) CubePage[T] {
	out := make([]T, 0)
	total := 0
	for _, row := range rows {
		if !f.matches(key(row)) {
			continue
		}
		total++
		if f.Limit == 0 || len(out) < f.Limit {
			out = append(out, row)
		}
	}
	return CubePage[T]{Total: total, Rows: out}
}

// TableService reads the published output set. Decoded artifacts are cached
// for the configured TTL, so a rerun becomes visible after at most one TTL.
type TableService struct {
	layout  config.Layout
	cache   *ttlcache.Cache[string, any]
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewTableService creates a service over the output directory of layout
func NewTableService(layout config.Layout, ttl time.Duration, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *TableService {
	if ttl <= 0 {
		ttl = config.DefaultCacheTTL
	}
	return &TableService{
		layout: layout,
		cache: ttlcache.New(
			ttlcache.WithTTL[string, any](ttl),
			ttlcache.WithDisableTouchOnHit[string, any](),
		),
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "table_service"),
	}
}

// Start runs the expiry loop until Stop is called
func (s *TableService) Start() {
	s.cache.Start()
}

// Stop ends the expiry loop
func (s *TableService) Stop() {
	s.cache.Stop()
}

// Invalidate drops every cached artifact
func (s *TableService) Invalidate() {
	s.cache.DeleteAll()
}

// OutputDir returns the directory the service reads from
func (s *TableService) OutputDir() string {
	return s.layout.Root
}

// Manifest returns the manifest of the published run
func (s *TableService) Manifest(ctx context.Context) (*operations.RunManifest, error) {
	v, err := s.cached(ctx, manifestCacheKey, func() (any, error) {
		path := s.layout.Path(config.ManifestFile)
		if !config.FileExists(path) {
			return nil, apperrors.NewMissingInputError("output manifest", path, fs.ErrNotExist)
		}
		m, err := operations.LoadManifestFromFile(path)
		if err != nil {
			return nil, apperrors.NewParsingError("decode output manifest", err)
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*operations.RunManifest), nil
}

// ListTables lists the tables of the published output set, in output order
func (s *TableService) ListTables(ctx context.Context) (*TableList, error) {
	manifest, err := s.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]exporter.Artifact, len(manifest.Artifacts))
	for _, a := range manifest.Artifacts {
		byName[a.Name] = a
	}

	list := &TableList{RunID: manifest.RunID, CreatedAt: manifest.CreatedAt, Tables: []TableInfo{}}
	for _, name := range tableNames() {
		a, ok := byName[name]
		if !ok {
			continue
		}
		_, hasCSV := byName[name+".csv"]
		list.Tables = append(list.Tables, TableInfo{
			Name:   name,
			File:   a.Path,
			Bytes:  a.Bytes,
			SHA256: a.SHA256,
			CSV:    hasCSV,
		})
	}
	_, list.Workbook = byName["workbook"]
	return list, nil
}

// Table returns the JSON document of one logical table
func (s *TableService) Table(ctx context.Context, name string) ([]byte, error) {
	if !slices.Contains(tableNames(), name) {
		return nil, apperrors.TableNotFoundError(name)
	}
	v, err := s.cached(ctx, tableCachePrefix+name, func() (any, error) {
		return s.readArtifact(tableFile(name))
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Bundle returns the aggregated bundle document
func (s *TableService) Bundle(ctx context.Context) ([]byte, error) {
	v, err := s.cached(ctx, bundleCacheKey, func() (any, error) {
		return s.readArtifact(config.BundleFile)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// CubeRow is one decoded cube row. Rows stay untyped so null statistics
// survive the round trip.
type CubeRow = map[string]any

func cubeKey(r CubeRow) (string, string, string) {
	str := func(k string) string {
		v, _ := r[k].(string)
		return v
	}
	return str("mun"), str("periodo"), str("cadeia")
}

// Cube returns the granular cube rows matching f
func (s *TableService) Cube(ctx context.Context, f CubeFilter) (CubePage[CubeRow], error) {
	v, err := s.cached(ctx, cubeCacheKey, func() (any, error) {
		var rows []CubeRow
		if err := s.decodeArtifact(config.CubeFile, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	})
	if err != nil {
		return CubePage[CubeRow]{}, err
	}
	return filterRows(v.([]CubeRow), f, cubeKey), nil
}

// Dimension returns the rows of one narrow cube matching f
func (s *TableService) Dimension(ctx context.Context, dim string, f CubeFilter) (CubePage[CubeRow], error) {
	if !slices.Contains(Dimensions, dim) {
		return CubePage[CubeRow]{}, apperrors.NewWithDetails(http.StatusNotFound, "DIMENSION_NOT_FOUND",
			fmt.Sprintf("dimension %s not found", dim), map[string]any{"allowed": Dimensions})
	}

	v, err := s.cached(ctx, dimsCacheKey, func() (any, error) {
		var dims map[string][]CubeRow
		if err := s.decodeArtifact(config.DimensionsFile, &dims); err != nil {
			return nil, err
		}
		return dims, nil
	})
	if err != nil {
		return CubePage[CubeRow]{}, err
	}
	return filterRows(v.(map[string][]CubeRow)[dim], f, cubeKey), nil
}

// CSVPath returns the path of the CSV rendition of a table
func (s *TableService) CSVPath(name string) (string, error) {
	if !slices.Contains(tableNames(), name) {
		return "", apperrors.TableNotFoundError(name)
	}
	path := s.layout.Path(config.CSVDir, config.SnakeCase(name)+".csv")
	if !config.FileExists(path) {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("csv rendition of %s", name))
	}
	return path, nil
}

// WorkbookPath returns the path of the XLSX workbook
func (s *TableService) WorkbookPath() (string, error) {
	path := s.layout.Path(config.WorkbookFile)
	if !config.FileExists(path) {
		return "", apperrors.NewNotFoundError("workbook")
	}
	return path, nil
}

// cached returns the value under key, loading and storing it on a miss
func (s *TableService) cached(ctx context.Context, key string, load func() (any, error)) (any, error) {
	if item := s.cache.Get(key); item != nil {
		s.metrics.RecordCacheLookup(ctx, key, true)
		return item.Value(), nil
	}
	s.metrics.RecordCacheLookup(ctx, key, false)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	v, err := load()
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, v, ttlcache.DefaultTTL)
	s.logger.DebugContext(ctx, "artifact loaded",
		slog.String("key", key),
		slog.Duration("duration", time.Since(start)))
	return v, nil
}

// readArtifact reads an artifact, falling back to its gzip variant
func (s *TableService) readArtifact(name string) ([]byte, error) {
	path := s.layout.Path(name)
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewStorageError(fmt.Sprintf("read %s", name), err)
	}

	gzPath := path + exporter.GzipSuffix
	compressed, gzErr := os.ReadFile(gzPath)
	if gzErr != nil {
		if errors.Is(gzErr, fs.ErrNotExist) {
			return nil, apperrors.NewMissingInputError("output artifact", path, err)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("read %s", gzPath), gzErr)
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("open %s", filepath.Base(gzPath)), err)
	}
	defer zr.Close()
	data, err = io.ReadAll(zr)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("decompress %s", filepath.Base(gzPath)), err)
	}
	return data, nil
}

func (s *TableService) decodeArtifact(name string, v any) error {
	data, err := s.readArtifact(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.NewParsingError(fmt.Sprintf("decode %s", name), err)
	}
	return nil
}

// tableNames lists every logical table the API serves
func tableNames() []string {
	return append(slices.Clone(domain.BundleTables), domain.TableGranularCube, domain.TableGranularDimensions)
}

func tableFile(name string) string {
	switch name {
	case domain.TableGranularCube:
		return config.CubeFile
	case domain.TableGranularDimensions:
		return config.DimensionsFile
	case domain.TableMetadata:
		return config.MetadataFile
	}
	return config.TableFile(name)
}
