package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"retailsmart/internal/analytics"
	"retailsmart/internal/charts"
	"retailsmart/internal/config"
	"retailsmart/internal/dataset"
	apierrors "retailsmart/internal/errors"
	"retailsmart/internal/exporter"
	"retailsmart/internal/infrastructure"
	"retailsmart/pkg/contracts/domain"
)

// User-facing warnings for missing optional artifacts
const (
	WarnPredictions = "Phase 2 predictions not found. Complete Phase 2 to see churn analysis."
	WarnModel       = "Trained model not found. Complete Phase 2 to enable predictions."
	WarnClustering  = "Phase 3 clustering not found. Complete Phase 3 to see segmentation."
	WarnForecast    = "Phase 3 forecast not found. Complete Phase 3 to see predictions."
)

// TablePreview is the first rows of one raw dataset table
type TablePreview struct {
	Table     string     `json:"table"`
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

// ForecastView is the forecast series plus the head shown in the detail table
type ForecastView struct {
	Series []domain.ForecastPoint `json:"series"`
	Head   []domain.ForecastPoint `json:"head"`
}

// ModelChecker reports whether the churn model can be loaded
type ModelChecker interface {
	Available(ctx context.Context) bool
}

// DashboardService provides the dashboard views
type DashboardService struct {
	loader   *dataset.Loader
	renderer *charts.Renderer
	metrics  *infrastructure.BusinessMetrics
	model    ModelChecker
	limits   config.DashboardConfig
	logger   *slog.Logger
}

// NewDashboardService creates a dashboard service. metrics and model may be nil.
func NewDashboardService(loader *dataset.Loader, renderer *charts.Renderer, metrics *infrastructure.BusinessMetrics, model ModelChecker, limits config.DashboardConfig, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if renderer == nil {
		renderer = charts.NewRenderer(charts.DefaultWidth, charts.DefaultHeight)
	}

	logger.Info("DashboardService initialized",
		slog.String("data_root", loader.Layout().Root),
		slog.Int("preview_limit", limits.PreviewLimit),
		slog.Int("forecast_limit", limits.ForecastLimit))

	return &DashboardService{
		loader:   loader,
		renderer: renderer,
		metrics:  metrics,
		model:    model,
		limits:   limits,
		logger:   logger,
	}
}

// Overview summarizes the loaded bundle for sales within r
func (s *DashboardService) Overview(ctx context.Context, r domain.DateRange) (domain.Overview, error) {
	bundle, err := s.loader.Bundle(ctx)
	if err != nil {
		return domain.Overview{}, err
	}

	avail, warnings := s.availability(ctx)
	r = s.effectiveRange(bundle, r)
	filtered := analytics.FilterByDate(bundle.Sales, r)

	shown := r
	if shown.IsZero() {
		shown = analytics.SalesRange(bundle.Sales)
	}

	overview := domain.Overview{
		DataSource:   bundle.Source,
		Counts:       bundle.Counts(),
		Availability: avail,
		Warnings:     warnings,
		Range:        shown,
		KPIs:         analytics.ComputeKPIs(filtered, bundle.Customers, bundle.HasCustomerID),
		Quality:      analytics.Quality(bundle.Tables),
	}

	s.logger.DebugContext(ctx, "Overview computed",
		slog.String("source", overview.DataSource),
		slog.Int("sales", len(filtered)),
		slog.Int("warnings", len(warnings)))
	return overview, nil
}

// availability reports which optional artifacts can be loaded, with one
// warning per missing artifact
func (s *DashboardService) availability(ctx context.Context) (domain.Availability, []string) {
	var (
		avail    domain.Availability
		warnings []string
	)

	if _, err := s.loader.Predictions(ctx); err != nil {
		warnings = append(warnings, s.warning(ctx, WarnPredictions, err))
	} else {
		avail.Predictions = true
	}

	if s.model != nil && s.model.Available(ctx) {
		avail.Model = true
	} else {
		warnings = append(warnings, WarnModel)
	}

	if _, err := s.loader.Clustering(ctx); err != nil {
		warnings = append(warnings, s.warning(ctx, WarnClustering, err))
	} else {
		avail.Clustering = true
	}

	if _, err := s.loader.Forecast(ctx); err != nil {
		warnings = append(warnings, s.warning(ctx, WarnForecast, err))
	} else {
		avail.Forecast = true
	}

	return avail, warnings
}

// warning returns the fixed text for a missing file, or the error itself for
// a file that exists but cannot be used
func (s *DashboardService) warning(ctx context.Context, missing string, err error) string {
	if errors.Is(err, apierrors.ErrArtifactUnavailable) {
		return missing
	}
	s.logger.WarnContext(ctx, "Optional artifact unusable", slog.String("error", err.Error()))
	return err.Error()
}

// KPIs returns the headline metrics for sales within r
func (s *DashboardService) KPIs(ctx context.Context, r domain.DateRange) (domain.KPISummary, error) {
	bundle, err := s.loader.Bundle(ctx)
	if err != nil {
		return domain.KPISummary{}, err
	}
	filtered := analytics.FilterByDate(bundle.Sales, s.effectiveRange(bundle, r))
	return analytics.ComputeKPIs(filtered, bundle.Customers, bundle.HasCustomerID), nil
}

// Trend returns monthly revenue for sales within r
func (s *DashboardService) Trend(ctx context.Context, r domain.DateRange) ([]domain.MonthlyRevenue, error) {
	bundle, err := s.loader.Bundle(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.MonthlyTrend(analytics.FilterByDate(bundle.Sales, s.effectiveRange(bundle, r))), nil
}

// Categories returns the category mix for sales within r
func (s *DashboardService) Categories(ctx context.Context, r domain.DateRange) ([]domain.CategoryRevenue, error) {
	bundle, err := s.loader.Bundle(ctx)
	if err != nil {
		return nil, err
	}
	filtered := analytics.FilterByDate(bundle.Sales, s.effectiveRange(bundle, r))
	return analytics.CategoryMix(filtered, bundle.Products), nil
}

// Churn returns the high churn risk gauge
func (s *DashboardService) Churn(ctx context.Context) (domain.ChurnGauge, error) {
	preds, err := s.loader.Predictions(ctx)
	if err != nil {
		return domain.ChurnGauge{}, err
	}
	return analytics.ChurnGauge(preds.Scores, preds.Column, config.DefaultRiskThreshold), nil
}

// Segments returns customers per cluster from the cluster summary
func (s *DashboardService) Segments(ctx context.Context) ([]domain.ClusterSummary, error) {
	clustering, err := s.loader.Clustering(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.SegmentSummary(clustering.Summary, clustering.HasCounts, clustering.Assignments), nil
}

// Assignments returns customers per cluster counted from the assignment table
func (s *DashboardService) Assignments(ctx context.Context) ([]domain.ClusterSummary, error) {
	clustering, err := s.loader.Clustering(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.SegmentCounts(clustering.Assignments), nil
}

// Forecast returns the forecast series and its first limit points.
// A negative limit uses the configured default, zero returns everything.
func (s *DashboardService) Forecast(ctx context.Context, limit int) (ForecastView, error) {
	points, err := s.loader.Forecast(ctx)
	if err != nil {
		return ForecastView{}, err
	}
	if limit < 0 {
		limit = s.limits.ForecastLimit
	}
	return ForecastView{Series: points, Head: analytics.ForecastHead(points, limit)}, nil
}

// Quality returns null-cell counts per table of the unfiltered bundle
func (s *DashboardService) Quality(ctx context.Context) ([]domain.TableQuality, error) {
	bundle, err := s.loader.Bundle(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Quality(bundle.Tables), nil
}

// Preview returns the first rows of a raw table. A non-positive limit uses the
// configured default; limits above the configured maximum are clamped.
func (s *DashboardService) Preview(ctx context.Context, table string, limit int) (TablePreview, error) {
	bundle, err := s.loader.Bundle(ctx)
	if err != nil {
		return TablePreview{}, err
	}
	raw, err := bundle.Table(table)
	if err != nil {
		return TablePreview{}, err
	}

	if limit <= 0 {
		limit = s.limits.PreviewLimit
	}
	if s.limits.MaxPreviewLimit > 0 && limit > s.limits.MaxPreviewLimit {
		limit = s.limits.MaxPreviewLimit
	}

	return TablePreview{
		Table:     table,
		Headers:   raw.Headers,
		Rows:      raw.Head(limit),
		TotalRows: raw.Len(),
	}, nil
}

// Chart renders the named chart as PNG into w
func (s *DashboardService) Chart(ctx context.Context, name string, r domain.DateRange, w io.Writer) error {
	var err error
	switch name {
	case charts.ChartTrend:
		var trend []domain.MonthlyRevenue
		if trend, err = s.Trend(ctx, r); err == nil {
			err = s.renderer.Trend(w, trend)
		}
	case charts.ChartCategories:
		var mix []domain.CategoryRevenue
		if mix, err = s.Categories(ctx, r); err == nil {
			err = s.renderer.Categories(w, mix)
		}
	case charts.ChartSegments:
		var segments []domain.ClusterSummary
		if segments, err = s.Segments(ctx); err == nil {
			err = s.renderer.Segments(w, segments)
		}
	case charts.ChartForecast:
		var view ForecastView
		if view, err = s.Forecast(ctx, 0); err == nil {
			err = s.renderer.Forecast(w, view.Series)
		}
	default:
		return apierrors.NewNotFoundError("chart "+name, ErrUnknownChart)
	}

	if errors.Is(err, charts.ErrNoData) {
		return apierrors.NewNotFoundError("chart "+name, err)
	}
	if err != nil {
		return err
	}
	s.metrics.RecordChartRender(ctx, name)
	return nil
}

// Report assembles the KPI report for sales within r. Segments and forecast
// are included when their artifacts are available.
func (s *DashboardService) Report(ctx context.Context, r domain.DateRange) (exporter.Report, error) {
	bundle, err := s.loader.Bundle(ctx)
	if err != nil {
		return exporter.Report{}, err
	}
	r = s.effectiveRange(bundle, r)
	filtered := analytics.FilterByDate(bundle.Sales, r)
	avail, _ := s.availability(ctx)

	report := exporter.Report{
		GeneratedAt:  time.Now().UTC(),
		DataSource:   bundle.Source,
		Range:        r,
		Availability: avail,
		KPIs:         analytics.ComputeKPIs(filtered, bundle.Customers, bundle.HasCustomerID),
		Trend:        analytics.MonthlyTrend(filtered),
		Categories:   analytics.CategoryMix(filtered, bundle.Products),
	}
	if avail.Clustering {
		if report.Segments, err = s.Segments(ctx); err != nil {
			return exporter.Report{}, err
		}
	}
	if avail.Forecast {
		if report.Forecast, err = s.loader.Forecast(ctx); err != nil {
			return exporter.Report{}, err
		}
	}
	return report, nil
}

// Export encodes the KPI report for sales within r as csv or xlsx into w
func (s *DashboardService) Export(ctx context.Context, r domain.DateRange, format string, w io.Writer) error {
	if format != exporter.FormatCSV && format != exporter.FormatXLSX {
		return apierrors.NewAppValidationError(fmt.Sprintf("%v: %q", ErrUnknownFormat, format))
	}

	report, err := s.Report(ctx, r)
	if err != nil {
		return err
	}

	switch format {
	case exporter.FormatCSV:
		err = exporter.EncodeCSV(w, report)
	case exporter.FormatXLSX:
		err = exporter.EncodeXLSX(w, report)
	}
	if err != nil {
		return fmt.Errorf("encode %s report: %w", format, err)
	}

	s.metrics.RecordExport(ctx, format)
	s.logger.InfoContext(ctx, "KPI report exported",
		slog.String("format", format),
		slog.String("source", report.DataSource))
	return nil
}

// InvalidateCache drops one cached path, or every entry when path is empty.
// It returns the number of entries removed.
func (s *DashboardService) InvalidateCache(ctx context.Context, path string) int {
	cache := s.loader.Cache()
	removed := 0
	if path == "" {
		removed = cache.InvalidateAll()
	} else if cache.Invalidate(path) {
		removed = 1
	}

	s.logger.InfoContext(ctx, "Cache invalidated",
		slog.String("path", path),
		slog.Int("removed", removed))
	return removed
}

// CacheStats returns the dataset cache statistics
func (s *DashboardService) CacheStats() dataset.CacheStats {
	return s.loader.Cache().Stats()
}

// effectiveRange defaults unset bounds to the sales date span
func (s *DashboardService) effectiveRange(bundle *dataset.Bundle, r domain.DateRange) domain.DateRange {
	if r.IsZero() {
		return r
	}
	span := analytics.SalesRange(bundle.Sales)
	if r.From.IsZero() {
		r.From = span.From
	}
	if r.To.IsZero() {
		r.To = span.To
	}
	return r
}
