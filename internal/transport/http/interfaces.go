package http

import (
	"context"
	"io"

	"retailsmart/internal/dataset"
	"retailsmart/internal/files"
	"retailsmart/internal/services"
	v1 "retailsmart/pkg/contracts/api/v1"
	"retailsmart/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard views
type DashboardServiceInterface interface {
	Overview(ctx context.Context, r domain.DateRange) (domain.Overview, error)
	KPIs(ctx context.Context, r domain.DateRange) (domain.KPISummary, error)
	Trend(ctx context.Context, r domain.DateRange) ([]domain.MonthlyRevenue, error)
	Categories(ctx context.Context, r domain.DateRange) ([]domain.CategoryRevenue, error)
	Churn(ctx context.Context) (domain.ChurnGauge, error)
	Segments(ctx context.Context) ([]domain.ClusterSummary, error)
	Assignments(ctx context.Context) ([]domain.ClusterSummary, error)
	Forecast(ctx context.Context, limit int) (services.ForecastView, error)
	Quality(ctx context.Context) ([]domain.TableQuality, error)
	Preview(ctx context.Context, table string, limit int) (services.TablePreview, error)
	Chart(ctx context.Context, name string, r domain.DateRange, w io.Writer) error
	Export(ctx context.Context, r domain.DateRange, format string, w io.Writer) error
	InvalidateCache(ctx context.Context, path string) int
	CacheStats() dataset.CacheStats
}

// PredictionServiceInterface defines single-record churn inference
type PredictionServiceInterface interface {
	Info(ctx context.Context) (domain.ModelInfo, error)
	Predict(ctx context.Context, req v1.PredictionRequest) (domain.Prediction, error)
}

// HealthServiceInterface defines health reporting
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

// ReportServiceInterface defines the saved report archive
type ReportServiceInterface interface {
	Save(ctx context.Context, r domain.DateRange, format string) ([]files.FileInfo, error)
	List(ctx context.Context) ([]files.FileInfo, error)
	Open(ctx context.Context, name string) (files.FileInfo, io.ReadSeekCloser, error)
}
