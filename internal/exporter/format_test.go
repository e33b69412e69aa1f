package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"retailsmart/pkg/contracts/domain"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"integer", 100, "100.00"},
		{"binary float truncates", 1.005, "1.00"},
		{"two decimals", 59.0909, "59.09"},
		{"negative", -12.5, "-12.50"},
		{"zero", 0, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "42", formatInt(42))
	assert.Equal(t, "true", formatBool(true))
	assert.Equal(t, "false", formatBool(false))
	assert.Equal(t, "2024-02-29", formatDate(time.Date(2024, 2, 29, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", formatDate(time.Time{}))
}

func TestReportSections(t *testing.T) {
	r := sampleReport()
	sections := r.Sections()

	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"Summary", "KPIs", "Monthly Trend", "Categories", "Segments"}, names)

	for _, s := range sections {
		for _, rec := range s.Records {
			assert.Len(t, rec, len(s.Headers), "section %s", s.Name)
		}
	}

	assert.Equal(t, []string{"total_revenue", "650.00", "59.09"}, sections[1].Records[0])
	assert.Equal(t, []string{"2024-01", "300.00", "3"}, sections[2].Records[0])
	assert.Contains(t, sections[0].Records, []string{"predictions_available", "true"})
	assert.Contains(t, sections[0].Records, []string{"model_available", "false"})
}

func TestReportSectionsOmitEmptyOptional(t *testing.T) {
	r := sampleReport()
	r.Segments = nil
	r.Forecast = []domain.ForecastPoint{{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ForecastedRevenue: 1200}}

	sections := r.Sections()
	last := sections[len(sections)-1]
	assert.Len(t, sections, 5)
	assert.Equal(t, "Forecast", last.Name)
	assert.Equal(t, []string{"2024-03-01", "1200.00"}, last.Records[0])
}
