package http

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	apierrors "retailsmart/internal/errors"
	apimw "retailsmart/internal/middleware"
	"retailsmart/internal/services"
	"retailsmart/pkg/contracts"
	"retailsmart/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageHandler renders the server-side dashboard page
type PageHandler struct {
	service DashboardServiceInterface
	charts  []string
	tmpl    *template.Template
	query   *apimw.QueryParamValidator
	logger  *slog.Logger
}

// pageData is the template model
type pageData struct {
	Title       string
	Version     string
	Generated   time.Time
	Overview    domain.Overview
	Churn       *domain.ChurnGauge
	Forecast    *services.ForecastView
	Charts      []string
	RangeQuery  string
	Error       string
	Remediation string
}

// NewPageHandler parses the embedded templates
func NewPageHandler(service DashboardServiceInterface, charts []string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) (*PageHandler, error) {
	tmpl, err := template.New("dashboard.html").Funcs(template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
		"pct":   func(v float64) string { return fmt.Sprintf("%+.1f%%", v) },
		"num":   func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("2006-01-02")
		},
		"inputdate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(apimw.DateLayout)
		},
		"gaugepos": gaugePosition,
		"gaugeband": func(b domain.GaugeBand, max float64) string {
			return gaugePosition(b.To-b.From, max)
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		service: service,
		charts:  charts,
		tmpl:    tmpl,
		query:   apimw.NewQueryParamValidator(logger, errorHandler),
		logger:  logger.With(slog.String("component", "page_handler")),
	}, nil
}

func (h *PageHandler) data(ctx context.Context, r domain.DateRange) (pageData, int) {
	data := pageData{
		Title:      "RetailSmart Dashboard",
		Version:    contracts.Version,
		Generated:  time.Now().UTC(),
		Charts:     h.charts,
		RangeQuery: rangeQuery(r),
	}

	overview, err := h.service.Overview(ctx, r)
	if err != nil {
		data.Error = "Cannot load data files. Please check your folder structure."
		var appErr *apierrors.AppError
		if errors.As(err, &appErr) {
			if rem, ok := appErr.Context[apierrors.ContextRemediation].(string); ok {
				data.Remediation = rem
			}
		}
		if !errors.Is(err, apierrors.ErrDatasetUnavailable) {
			data.Error = err.Error()
			return data, http.StatusInternalServerError
		}
		return data, http.StatusServiceUnavailable
	}
	data.Overview = overview

	if overview.Availability.Predictions {
		if gauge, err := h.service.Churn(ctx); err == nil {
			data.Churn = &gauge
		}
	}
	if overview.Availability.Forecast {
		if view, err := h.service.Forecast(ctx, -1); err == nil {
			data.Forecast = &view
		}
	}
	return data, http.StatusOK
}

// rangeQuery carries the requested bounds to chart and export links
func rangeQuery(r domain.DateRange) string {
	q := url.Values{}
	if !r.From.IsZero() {
		q.Set("from", r.From.Format(apimw.DateLayout))
	}
	if !r.To.IsZero() {
		q.Set("to", r.To.Format(apimw.DateLayout))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ServeDashboard handles GET /?from=&to=
func (h *PageHandler) ServeDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, ok := h.query.ValidateDateRange(w, r)
		if !ok {
			return
		}

		data, status := h.data(r.Context(), domain.DateRange{From: from, To: to})
		if status != http.StatusOK {
			h.logger.WarnContext(r.Context(), "Dashboard rendered without data",
				slog.String("error", data.Error),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		}

		var buf bytes.Buffer
		if err := h.tmpl.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
			h.logger.ErrorContext(r.Context(), "Template execution failed", slog.String("error", err.Error()))
			http.Error(w, "template error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		w.Write(buf.Bytes())
	}
}

// gaugePosition places v on a 0..max axis as a CSS percentage, clamped to the axis
func gaugePosition(v, max float64) string {
	if max <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", math.Min(math.Max(v/max, 0), 1)*100)
}
