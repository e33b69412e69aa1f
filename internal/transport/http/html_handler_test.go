package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "retailsmart/internal/errors"
	"retailsmart/internal/services"
	"retailsmart/internal/shared/testutil"
	"retailsmart/pkg/contracts/domain"
)

func TestPageHandler_ServeDashboard(t *testing.T) {
	overview := domain.Overview{
		DataSource: "Datasets",
		Counts:     domain.TableCounts{Customers: 4, Sales: 6},
		Availability: domain.Availability{
			Predictions: true,
			Model:       true,
			Forecast:    true,
		},
		Warnings: []string{"Clustering results not found"},
		KPIs:     domain.KPISummary{TotalRevenue: 650, TotalOrders: 6, RevenueGrowth: 59.09},
		Quality:  []domain.TableQuality{{Table: "sales", Rows: 6, Columns: 5, NullCells: 1}},
	}

	jan := domain.DateRange{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	filtered := overview
	filtered.Range = jan
	filtered.Availability = domain.Availability{}

	tests := []struct {
		name         string
		target       string
		setupMock    func(*MockDashboardService)
		wantStatus   int
		wantContains []string
		wantAbsent   []string
	}{
		{
			name: "full dashboard",
			setupMock: func(m *MockDashboardService) {
				m.On("Overview", mock.Anything, domain.DateRange{}).Return(overview, nil)
				m.On("Churn", mock.Anything).Return(domain.ChurnGauge{
					HighRiskPct: 50, HighRisk: 2, Customers: 4, Band: "high",
					AxisMax: 50, Threshold: 30, BarColor: "#667eea", ThresholdColor: "red",
					Bands: []domain.GaugeBand{{Name: "low", From: 0, To: 15, Color: "#e8f5e9"}},
				}, nil)
				m.On("Forecast", mock.Anything, -1).Return(services.ForecastView{
					Head: []domain.ForecastPoint{{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), ForecastedRevenue: 123.5}},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantContains: []string{
				"width: 30.00%; background: #e8f5e9",
				"width: 100.00%; background: #667eea",
				"left: 60.00%; background: red",
				"$650.00",
				"+59.1%",
				"Clustering results not found",
				"50.00%",
				"2024-02-01",
				"/api/charts/trend.png",
				"predict-form",
				`id="range-form"`,
				"<td>Customers</td><td>4</td>",
				"<td>Sales</td><td>6</td>",
				"<td>Reviews</td><td>0</td>",
			},
			wantAbsent: []string{"trend.png?"},
		},
		{
			name:   "date range reaches the service",
			target: "/?from=2024-01-01&to=2024-01-31",
			setupMock: func(m *MockDashboardService) {
				m.On("Overview", mock.Anything, jan).Return(filtered, nil)
			},
			wantStatus: http.StatusOK,
			wantContains: []string{
				`name="from" type="date" value="2024-01-01"`,
				`name="to" type="date" value="2024-01-31"`,
				"/api/charts/trend.png?from=2024-01-01",
				"/api/export/kpis.csv?from=2024-01-01",
			},
		},
		{
			name:       "malformed date",
			target:     "/?from=01/02/2024",
			setupMock:  func(m *MockDashboardService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "inverted range",
			target:     "/?from=2024-02-01&to=2024-01-01",
			setupMock:  func(m *MockDashboardService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing dataset shows remediation",
			setupMock: func(m *MockDashboardService) {
				err := apierrors.NewStorageError("no tier", apierrors.ErrDatasetUnavailable).
					WithContext(apierrors.ContextRemediation, "Expected folder structure under /data")
				m.On("Overview", mock.Anything, domain.DateRange{}).Return(domain.Overview{}, err)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantContains: []string{
				"Cannot load data files",
				"Expected folder structure under /data",
			},
			wantAbsent: []string{"predict-form"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			svc := new(MockDashboardService)
			tt.setupMock(svc)

			h, err := NewPageHandler(svc, []string{"trend", "categories"}, logger, apierrors.NewErrorHandler(logger, false))
			require.NoError(t, err)

			target := tt.target
			if target == "" {
				target = "/"
			}
			rec := serve(h.ServeDashboard(), http.MethodGet, target, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusBadRequest {
				assert.Contains(t, rec.Header().Get("Content-Type"), apierrors.ContentTypeProblem)
				svc.AssertNotCalled(t, "Overview", mock.Anything, mock.Anything)
				return
			}
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			for _, s := range tt.wantContains {
				assert.Contains(t, rec.Body.String(), s)
			}
			for _, s := range tt.wantAbsent {
				assert.NotContains(t, rec.Body.String(), s)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestGaugePosition(t *testing.T) {
	tests := []struct {
		v, max float64
		want   string
	}{
		{15, 50, "30.00%"},
		{50, 50, "100.00%"},
		{75, 50, "100.00%"},
		{-5, 50, "0.00%"},
		{10, 0, "0%"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, gaugePosition(tt.v, tt.max), "v=%v max=%v", tt.v, tt.max)
	}
}
