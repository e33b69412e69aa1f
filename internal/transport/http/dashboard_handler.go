package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"retailsmart/internal/config"
	apierrors "retailsmart/internal/errors"
	"retailsmart/internal/exporter"
	apimw "retailsmart/internal/middleware"
	v1 "retailsmart/pkg/contracts/api/v1"
	"retailsmart/pkg/contracts/domain"
)

// DashboardHandler serves the dashboard views, charts, exports and cache control
type DashboardHandler struct {
	service      DashboardServiceInterface
	limits       config.DashboardConfig
	validator    *apimw.ValidationMiddleware
	query        *apimw.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, limits config.DashboardConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		limits:       limits,
		validator:    apimw.NewValidationMiddleware(logger, errorHandler),
		query:        apimw.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the /api/dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/overview", h.GetOverview)
	r.Get("/kpis", h.GetKPIs)
	r.Get("/trend", h.GetTrend)
	r.Get("/categories", h.GetCategories)
	r.Get("/churn", h.GetChurn)
	r.Get("/segments", h.GetSegments)
	r.Get("/segments/assignments", h.GetAssignments)
	r.Get("/forecast", h.GetForecast)
	r.Get("/quality", h.GetQuality)
	r.With(h.TableCtx).Get("/preview/{table}", h.GetPreview)

	return r
}

// TableCtx middleware validates the table parameter
func (h *DashboardHandler) TableCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := v1.PreviewRequest{Table: chi.URLParam(r, "table")}
		if err := h.validator.ValidateStruct(req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// dateRange reads from/to; on failure the error response is already written
func (h *DashboardHandler) dateRange(w http.ResponseWriter, r *http.Request) (domain.DateRange, bool) {
	from, to, ok := h.query.ValidateDateRange(w, r)
	return domain.DateRange{From: from, To: to}, ok
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.WarnContext(r.Context(), "dashboard request failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	h.errorHandler.HandleError(w, r, err)
}

// GetOverview handles GET /api/dashboard/overview
func (h *DashboardHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	dr, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	overview, err := h.service.Overview(r.Context(), dr)
	if err != nil {
		h.fail(w, r, "overview", err)
		return
	}
	respond(w, r, overview)
}

// GetKPIs handles GET /api/dashboard/kpis
func (h *DashboardHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	dr, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	kpis, err := h.service.KPIs(r.Context(), dr)
	if err != nil {
		h.fail(w, r, "kpis", err)
		return
	}
	respond(w, r, kpis)
}

// GetTrend handles GET /api/dashboard/trend
func (h *DashboardHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	dr, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	trend, err := h.service.Trend(r.Context(), dr)
	if err != nil {
		h.fail(w, r, "trend", err)
		return
	}
	respondList(w, r, trend, len(trend))
}

// GetCategories handles GET /api/dashboard/categories
func (h *DashboardHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	dr, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	mix, err := h.service.Categories(r.Context(), dr)
	if err != nil {
		h.fail(w, r, "categories", err)
		return
	}
	respondList(w, r, mix, len(mix))
}

// GetChurn handles GET /api/dashboard/churn
func (h *DashboardHandler) GetChurn(w http.ResponseWriter, r *http.Request) {
	gauge, err := h.service.Churn(r.Context())
	if err != nil {
		h.fail(w, r, "churn", err)
		return
	}
	respond(w, r, gauge)
}

// GetSegments handles GET /api/dashboard/segments
func (h *DashboardHandler) GetSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := h.service.Segments(r.Context())
	if err != nil {
		h.fail(w, r, "segments", err)
		return
	}
	respondList(w, r, segments, len(segments))
}

// GetAssignments handles GET /api/dashboard/segments/assignments
func (h *DashboardHandler) GetAssignments(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Assignments(r.Context())
	if err != nil {
		h.fail(w, r, "assignments", err)
		return
	}
	respondList(w, r, counts, len(counts))
}

// GetForecast handles GET /api/dashboard/forecast. limit=0 returns every point.
func (h *DashboardHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 0, 100000, h.limits.ForecastLimit)
	if !ok {
		return
	}
	view, err := h.service.Forecast(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "forecast", err)
		return
	}
	respondList(w, r, view, len(view.Head))
}

// GetQuality handles GET /api/dashboard/quality
func (h *DashboardHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	quality, err := h.service.Quality(r.Context())
	if err != nil {
		h.fail(w, r, "quality", err)
		return
	}
	respondList(w, r, quality, len(quality))
}

// GetPreview handles GET /api/dashboard/preview/{table}
func (h *DashboardHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 1, h.limits.MaxPreviewLimit, h.limits.PreviewLimit)
	if !ok {
		return
	}
	preview, err := h.service.Preview(r.Context(), chi.URLParam(r, "table"), limit)
	if err != nil {
		h.fail(w, r, "preview", err)
		return
	}
	respondList(w, r, preview, len(preview.Rows))
}

// GetChart handles GET /api/charts/{chart}. The parameter carries the .png suffix.
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(chi.URLParam(r, "chart"), ".png")
	dr, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.Chart(r.Context(), name, dr, &buf); err != nil {
		h.fail(w, r, "chart", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}

var exportContentTypes = map[string]string{
	exporter.FormatCSV:  "text/csv; charset=utf-8",
	exporter.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Export handles GET /api/export/kpis?format=csv|xlsx, defaulting to csv
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", []string{exporter.FormatCSV, exporter.FormatXLSX}, exporter.FormatCSV)
	if !ok {
		return
	}
	h.export(w, r, format)
}

// ExportCSV handles GET /api/export/kpis.csv
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, exporter.FormatCSV)
}

// ExportXLSX handles GET /api/export/kpis.xlsx
func (h *DashboardHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, exporter.FormatXLSX)
}

func (h *DashboardHandler) export(w http.ResponseWriter, r *http.Request, format string) {
	dr, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), dr, format, &buf); err != nil {
		h.fail(w, r, "export", err)
		return
	}

	filename := fmt.Sprintf("kpi_report_%s.%s", time.Now().UTC().Format("20060102"), format)
	w.Header().Set("Content-Type", exportContentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(buf.Bytes())
}

// InvalidateCache handles POST /api/cache/invalidate
func (h *DashboardHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req v1.CacheInvalidateRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	removed := h.service.InvalidateCache(r.Context(), req.Path)
	respond(w, r, map[string]interface{}{
		"removed": removed,
		"path":    req.Path,
		"stats":   h.service.CacheStats(),
	})
}

// GetCacheStats handles GET /api/cache/stats
func (h *DashboardHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.service.CacheStats())
}
