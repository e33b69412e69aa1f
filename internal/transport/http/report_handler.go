package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "retailsmart/internal/errors"
	"retailsmart/internal/exporter"
	apimw "retailsmart/internal/middleware"
	"retailsmart/internal/services"
	v1 "retailsmart/pkg/contracts/api/v1"
	"retailsmart/pkg/contracts/domain"
)

var reportContentTypes = map[string]string{
	exporter.FormatCSV:  "text/csv; charset=utf-8",
	exporter.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ReportHandler saves KPI reports to the export directory and serves them
type ReportHandler struct {
	service      ReportServiceInterface
	validator    *apimw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		validator:    apimw.NewValidationMiddleware(logger, errorHandler),
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// ListReports handles GET /api/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.List(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respondList(w, r, reports, len(reports))
}

// SaveReport handles POST /api/reports
func (h *ReportHandler) SaveReport(w http.ResponseWriter, r *http.Request) {
	var req v1.SaveReportRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dr, err := parseReportRange(req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	saved, err := h.service.Save(r.Context(), dr, req.Format)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Saving report failed",
			slog.String("format", req.Format),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	respondList(w, r, saved, len(saved))
}

// DownloadReport handles GET /api/reports/{name}
func (h *ReportHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	info, rc, err := h.service.Open(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer rc.Close()

	if ct, ok := reportContentTypes[info.Format]; ok {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, info.Name))
	http.ServeContent(w, r, info.Name, info.ModTime, rc)
}

// parseReportRange turns the validated request dates into a range
func parseReportRange(req v1.SaveReportRequest) (domain.DateRange, error) {
	var dr domain.DateRange
	if req.From != "" {
		dr.From, _ = time.ParseInLocation(apimw.DateLayout, req.From, time.UTC)
	}
	if req.To != "" {
		dr.To, _ = time.ParseInLocation(apimw.DateLayout, req.To, time.UTC)
	}
	if !dr.From.IsZero() && !dr.To.IsZero() && dr.From.After(dr.To) {
		return dr, apierrors.NewAppValidationError(services.ErrInvalidRange.Error())
	}
	return dr, nil
}
