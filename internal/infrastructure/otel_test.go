package infrastructure

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInitializeOTel_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "none",
	}, logger)
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	_, err := InitializeOTel(&OTelConfig{EnableTracing: true, TraceExporter: "zipkin"}, logger)
	assert.Error(t, err)
}

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	return totals
}

func TestBusinessMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.CacheLookup(ctx, "csv", true)
	m.CacheLookup(ctx, "csv", false)
	m.CacheLookup(ctx, "artifact", false)
	m.DatasetLoaded(ctx, "csv", 5*time.Millisecond, nil)
	m.RecordPrediction(ctx, "High Risk", time.Millisecond)
	m.RecordChartRender(ctx, "trend")
	m.RecordExport(ctx, "xlsx")

	totals := collectSums(t, reader)
	assert.Equal(t, int64(1), totals["dataset_cache_hits_total"])
	assert.Equal(t, int64(2), totals["dataset_cache_misses_total"])
	assert.Equal(t, int64(1), totals["dataset_loads_total"])
	assert.Equal(t, int64(1), totals["churn_predictions_total"])
	assert.Equal(t, int64(1), totals["chart_renders_total"])
	assert.Equal(t, int64(1), totals["report_exports_total"])
}

func TestBusinessMetrics_NilSafe(t *testing.T) {
	var m *BusinessMetrics
	assert.NotPanics(t, func() {
		m.CacheLookup(context.Background(), "csv", true)
		m.DatasetLoaded(context.Background(), "csv", time.Second, nil)
		m.RecordPrediction(context.Background(), "Low Risk", time.Second)
		m.RecordChartRender(context.Background(), "trend")
		m.RecordExport(context.Background(), "csv")
	})
}
