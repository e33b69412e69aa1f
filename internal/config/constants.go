package config

// Application constants
const (
	AppName = "RetailSmart Analytics"

	// DefaultRiskThreshold separates high from low churn risk
	DefaultRiskThreshold = 0.5

	// Churn gauge geometry
	GaugeReference = 15.0
	GaugeThreshold = 30.0
	GaugeAxisMax   = 50.0

	// KPI comparison window length in days
	WindowDays = 30

	// Chart colors
	ColorTrend    = "#667eea"
	ColorForecast = "#764ba2"

	// Churn gauge colors
	ColorGaugeBar       = "#667eea"
	ColorGaugeThreshold = "red"
	ColorBandLow        = "#e8f5e9"
	ColorBandElevated   = "#fff9c4"
	ColorBandHigh       = "#ffcdd2"
)

// SegmentPalette is cycled across cluster bars
var SegmentPalette = []string{"#667eea", "#764ba2", "#f093fb", "#4facfe"}
