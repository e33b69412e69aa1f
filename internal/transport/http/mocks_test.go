package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"retailsmart/internal/config"
	"retailsmart/internal/dataset"
	apierrors "retailsmart/internal/errors"
	"retailsmart/internal/files"
	"retailsmart/internal/services"
	"retailsmart/internal/shared/testutil"
	v1 "retailsmart/pkg/contracts/api/v1"
	"retailsmart/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Overview(ctx context.Context, r domain.DateRange) (domain.Overview, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(domain.Overview), args.Error(1)
}

func (m *MockDashboardService) KPIs(ctx context.Context, r domain.DateRange) (domain.KPISummary, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(domain.KPISummary), args.Error(1)
}

func (m *MockDashboardService) Trend(ctx context.Context, r domain.DateRange) ([]domain.MonthlyRevenue, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthlyRevenue), args.Error(1)
}

func (m *MockDashboardService) Categories(ctx context.Context, r domain.DateRange) ([]domain.CategoryRevenue, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryRevenue), args.Error(1)
}

func (m *MockDashboardService) Churn(ctx context.Context) (domain.ChurnGauge, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ChurnGauge), args.Error(1)
}

func (m *MockDashboardService) Segments(ctx context.Context) ([]domain.ClusterSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClusterSummary), args.Error(1)
}

func (m *MockDashboardService) Assignments(ctx context.Context) ([]domain.ClusterSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClusterSummary), args.Error(1)
}

func (m *MockDashboardService) Forecast(ctx context.Context, limit int) (services.ForecastView, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).(services.ForecastView), args.Error(1)
}

func (m *MockDashboardService) Quality(ctx context.Context) ([]domain.TableQuality, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TableQuality), args.Error(1)
}

func (m *MockDashboardService) Preview(ctx context.Context, table string, limit int) (services.TablePreview, error) {
	args := m.Called(ctx, table, limit)
	return args.Get(0).(services.TablePreview), args.Error(1)
}

func (m *MockDashboardService) Chart(ctx context.Context, name string, r domain.DateRange, w io.Writer) error {
	args := m.Called(ctx, name, r, w)
	return args.Error(0)
}

func (m *MockDashboardService) Export(ctx context.Context, r domain.DateRange, format string, w io.Writer) error {
	args := m.Called(ctx, r, format, w)
	return args.Error(0)
}

func (m *MockDashboardService) InvalidateCache(ctx context.Context, path string) int {
	args := m.Called(ctx, path)
	return args.Int(0)
}

func (m *MockDashboardService) CacheStats() dataset.CacheStats {
	args := m.Called()
	return args.Get(0).(dataset.CacheStats)
}

// MockPredictionService is a mock implementation of PredictionServiceInterface
type MockPredictionService struct {
	mock.Mock
}

func (m *MockPredictionService) Info(ctx context.Context) (domain.ModelInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ModelInfo), args.Error(1)
}

func (m *MockPredictionService) Predict(ctx context.Context, req v1.PredictionRequest) (domain.Prediction, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Prediction), args.Error(1)
}

// MockHealthService is a mock implementation of HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Save(ctx context.Context, r domain.DateRange, format string) ([]files.FileInfo, error) {
	args := m.Called(ctx, r, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]files.FileInfo), args.Error(1)
}

func (m *MockReportService) List(ctx context.Context) ([]files.FileInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]files.FileInfo), args.Error(1)
}

func (m *MockReportService) Open(ctx context.Context, name string) (files.FileInfo, io.ReadSeekCloser, error) {
	args := m.Called(ctx, name)
	if args.Get(1) == nil {
		return args.Get(0).(files.FileInfo), nil, args.Error(2)
	}
	return args.Get(0).(files.FileInfo), args.Get(1).(io.ReadSeekCloser), args.Error(2)
}

var testLimits = config.DashboardConfig{PreviewLimit: 100, MaxPreviewLimit: 1000, ForecastLimit: 10}

// newTestRouter mounts the API handlers the way the server does
func newTestRouter(t *testing.T, dash DashboardServiceInterface, pred PredictionServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	eh := apierrors.NewErrorHandler(logger, false)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		if dash != nil {
			dh := NewDashboardHandler(dash, testLimits, logger, eh)
			r.Mount("/dashboard", dh.Routes())
			r.Get("/charts/{chart}", dh.GetChart)
			r.Get("/export/kpis", dh.Export)
			r.Get("/export/kpis.csv", dh.ExportCSV)
			r.Get("/export/kpis.xlsx", dh.ExportXLSX)
			r.Post("/cache/invalidate", dh.InvalidateCache)
			r.Get("/cache/stats", dh.GetCacheStats)
		}
		if pred != nil {
			ph := NewPredictionHandler(pred, logger, eh)
			r.Get("/model", ph.GetModelInfo)
			r.Post("/predict", ph.Predict)
		}
	})
	return r
}

func serve(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
