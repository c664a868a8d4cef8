package http

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "fishintel/internal/errors"
	"fishintel/internal/services"
)

// CSVContentType is sent with every streamed table
const CSVContentType = "text/csv; charset=utf-8"

// DataHandler serves the published manifest and tables with RFC 7807 errors
type DataHandler struct {
	service      DatasetServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler
func NewDataHandler(service DatasetServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the /api/data routes
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListTables)
	r.Route("/{name}", func(r chi.Router) {
		r.Use(h.TableCtx)
		r.Get("/", h.GetTable)
	})

	return r
}

// TableCtx middleware rejects table names that cannot be manifest keys
func (h *DataHandler) TableCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" || len(name) > 128 {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusBadRequest,
				"INVALID_PARAMETER",
				"Invalid table name",
				map[string]interface{}{"name": name},
			))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetManifest handles GET /api/manifest
func (h *DataHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Manifest(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "", err)
		return
	}
	render.JSON(w, r, m)
}

// ListTables handles GET /api/data
func (h *DataHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.service.Tables(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   tables,
		"count":  len(tables),
	})
}

// GetTable handles GET /api/data/{name}. The CSV is streamed as published;
// ?format=json returns a decoded preview capped by ?limit.
func (h *DataHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	reqID := middleware.GetReqID(r.Context())

	if r.URL.Query().Get("format") == "json" {
		h.getTablePreview(w, r, name)
		return
	}

	table, err := h.service.OpenTable(r.Context(), name)
	if err != nil {
		h.handleServiceError(w, r, name, err)
		return
	}
	defer table.Content.Close()

	h.logger.DebugContext(r.Context(), "streaming table",
		slog.String("request_id", reqID),
		slog.String("table", name),
		slog.String("file", table.File))

	w.Header().Set("Content-Type", CSVContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", table.File))
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, table.File, table.ModTime, table.Content)
}

func (h *DataHandler) getTablePreview(w http.ResponseWriter, r *http.Request, name string) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusBadRequest,
				"INVALID_PARAMETER",
				"limit must be a positive integer",
				map[string]interface{}{"limit": raw},
			))
			return
		}
		limit = n
	}

	preview, err := h.service.ReadTable(r.Context(), name, limit)
	if err != nil {
		h.handleServiceError(w, r, name, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   preview,
	})
}

// handleServiceError maps dataset service errors to API errors
func (h *DataHandler) handleServiceError(w http.ResponseWriter, r *http.Request, name string, err error) {
	switch {
	case errors.Is(err, services.ErrDataNotPublished):
		h.errorHandler.HandleError(w, r, apierrors.DataNotPublishedError(err))
	case errors.Is(err, services.ErrTableNotFound):
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("Table '%s'", name)))
	case errors.Is(err, services.ErrInvalidTableName):
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_PARAMETER",
			"Invalid table name",
			map[string]interface{}{"name": name},
		))
	case errors.Is(err, services.ErrManifestCorrupted):
		h.errorHandler.HandleError(w, r, apierrors.DataCorruptedError(err))
	case errors.As(err, new(*fs.PathError)):
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("table read", err))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
