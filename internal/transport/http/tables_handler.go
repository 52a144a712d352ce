package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"agrocaged/internal/config"
	apierrors "agrocaged/internal/errors"
	"agrocaged/internal/middleware"
	"agrocaged/internal/services"
)

// MaxCubeRows bounds the limit query parameter of the cube endpoints
const MaxCubeRows = 1_000_000

var tableFormats = []string{config.FormatJSON, config.FormatCSV}

// TablesHandler serves the published output set read-only
type TablesHandler struct {
	tables       TableServiceInterface
	validator    *middleware.QueryValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewTablesHandler creates a handler over tables
func NewTablesHandler(tables TableServiceInterface, validator *middleware.QueryValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *TablesHandler {
	return &TablesHandler{
		tables:       tables,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "tables_handler")),
	}
}

// Routes returns the table routes as a standalone router
func (h *TablesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// Register adds the table routes to r, usually the API base path router
func (h *TablesHandler) Register(r chi.Router) {
	r.Get("/tables", h.ListTables)
	r.Get("/tables/{name}", h.GetTable)
	r.Get("/bundle", h.GetBundle)
	r.Get("/cube", h.GetCube)
	r.Get("/dimensions/{dim}", h.GetDimension)
	r.Get("/manifest", h.GetManifest)
	r.Get("/workbook", h.DownloadWorkbook)
}

// ListTables handles GET /api/v1/tables
func (h *TablesHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	list, err := h.tables.ListTables(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

// GetTable handles GET /api/v1/tables/{name}. format=csv serves the CSV rendition.
func (h *TablesHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	format, ok := h.validator.ValidateEnum(w, r, "format", tableFormats, config.FormatJSON)
	if !ok {
		return
	}

	if format == config.FormatCSV {
		path, err := h.tables.CSVPath(name)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		serveDownload(w, r, path, "text/csv; charset=utf-8")
		return
	}

	data, err := h.tables.Table(r.Context(), name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	writeJSONDocument(w, data)
}

// GetBundle handles GET /api/v1/bundle
func (h *TablesHandler) GetBundle(w http.ResponseWriter, r *http.Request) {
	data, err := h.tables.Bundle(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	writeJSONDocument(w, data)
}

// GetCube handles GET /api/v1/cube?mun=&cadeia=&from=&to=&limit=
func (h *TablesHandler) GetCube(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.cubeFilter(w, r)
	if !ok {
		return
	}

	page, err := h.tables.Cube(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(page.Total))
	render.JSON(w, r, page)
}

// GetDimension handles GET /api/v1/dimensions/{dim} with the cube filters
func (h *TablesHandler) GetDimension(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.cubeFilter(w, r)
	if !ok {
		return
	}

	page, err := h.tables.Dimension(r.Context(), chi.URLParam(r, "dim"), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(page.Total))
	render.JSON(w, r, page)
}

// GetManifest handles GET /api/v1/manifest
func (h *TablesHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	manifest, err := h.tables.Manifest(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, manifest)
}

// DownloadWorkbook handles GET /api/v1/workbook
func (h *TablesHandler) DownloadWorkbook(w http.ResponseWriter, r *http.Request) {
	path, err := h.tables.WorkbookPath()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	serveDownload(w, r, path, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// cubeFilter parses and validates the cube query parameters
func (h *TablesHandler) cubeFilter(w http.ResponseWriter, r *http.Request) (services.CubeFilter, bool) {
	limit, ok := h.validator.ValidateInt(w, r, "limit", 1, MaxCubeRows, 0)
	if !ok {
		return services.CubeFilter{}, false
	}

	q := r.URL.Query()
	filter := services.CubeFilter{
		Municipality: q.Get("mun"),
		Chain:        q.Get("cadeia"),
		From:         q.Get("from"),
		To:           q.Get("to"),
		Limit:        limit,
	}
	if err := h.validator.ValidateStruct(filter); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return services.CubeFilter{}, false
	}
	if filter.From != "" && filter.To != "" && filter.To < filter.From {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("to", "to must not be before from"))
		return services.CubeFilter{}, false
	}
	return filter, true
}

// writeJSONDocument writes an already encoded JSON document
func writeJSONDocument(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func serveDownload(w http.ResponseWriter, r *http.Request, path, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
