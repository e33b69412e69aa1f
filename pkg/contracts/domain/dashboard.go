package domain

import (
	"time"
)

// DateRange is an inclusive date filter. Zero values mean unbounded.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// IsZero reports whether neither bound is set
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// PeriodWindow describes one comparison window of the KPI aggregator
type PeriodWindow struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Revenue       float64   `json:"revenue"`
	Orders        int       `json:"orders"`
	AvgOrderValue float64   `json:"avg_order_value"`
}

// KPISummary holds the headline metrics and their period-over-period growth
type KPISummary struct {
	TotalRevenue   float64      `json:"total_revenue"`
	RevenueGrowth  float64      `json:"revenue_growth"`
	TotalOrders    int          `json:"total_orders"`
	OrdersGrowth   float64      `json:"orders_growth"`
	AvgOrderValue  float64      `json:"avg_order_value"`
	AOVGrowth      float64      `json:"aov_growth"`
	TotalCustomers int          `json:"total_customers"`
	LatestDate     time.Time    `json:"latest_date"`
	Recent         PeriodWindow `json:"recent_window"`
	Previous       PeriodWindow `json:"previous_window"`
}

// MonthlyRevenue is one point of the monthly revenue trend
type MonthlyRevenue struct {
	Month   time.Time `json:"month"`
	Revenue float64   `json:"revenue"`
	Orders  int       `json:"orders"`
}

// CategoryRevenue is the revenue attributed to one product category
type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Share    float64 `json:"share"` // Percentage of matched revenue
}

// GaugeBand is a colored range on the churn gauge
type GaugeBand struct {
	Name  string  `json:"name"`
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Color string  `json:"color"`
}

// ChurnGauge describes the high churn risk indicator
type ChurnGauge struct {
	Column           string      `json:"column"`
	Customers        int         `json:"customers"`
	HighRisk         int         `json:"high_risk"`
	HighRiskPct      float64     `json:"high_risk_pct"`
	Reference        float64     `json:"reference"`
	Delta            float64     `json:"delta"`
	AxisMax          float64     `json:"axis_max"`
	Threshold        float64     `json:"threshold"`
	ExceedsThreshold bool        `json:"exceeds_threshold"`
	Band             string      `json:"band"`
	Bands            []GaugeBand `json:"bands"`
	BarColor         string      `json:"bar_color"`
	ThresholdColor   string      `json:"threshold_color"`
}

// TableQuality is the null-cell count for one dataset table
type TableQuality struct {
	Table     string `json:"table"`
	Rows      int    `json:"rows"`
	Columns   int    `json:"columns"`
	NullCells int    `json:"null_cells"`
}

// Availability flags which optional artifacts were found
type Availability struct {
	Predictions bool `json:"predictions"`
	Model       bool `json:"model"`
	Clustering  bool `json:"clustering"`
	Forecast    bool `json:"forecast"`
}

// TableCounts are the row counts shown in the sidebar
type TableCounts struct {
	Customers int `json:"customers"`
	Sales     int `json:"sales"`
	Products  int `json:"products"`
	Marketing int `json:"marketing"`
	Reviews   int `json:"reviews"`
}

// Overview aggregates everything the dashboard header needs
type Overview struct {
	DataSource   string         `json:"data_source"`
	Counts       TableCounts    `json:"counts"`
	Availability Availability   `json:"availability"`
	Warnings     []string       `json:"warnings"`
	Range        DateRange      `json:"range"`
	KPIs         KPISummary     `json:"kpis"`
	Quality      []TableQuality `json:"quality"`
}

// ModelInfo describes the loaded churn classifier
type ModelInfo struct {
	Kind         string   `json:"kind"`
	NumFeatures  int      `json:"num_features"`
	FeatureNames []string `json:"feature_names,omitempty"`
	FillPolicy   string   `json:"fill_policy"`
	Threshold    float64  `json:"threshold"`
}

// Prediction is the result of a single-record churn inference
type Prediction struct {
	Probability float64   `json:"probability"`
	Label       string    `json:"label"`
	Class       int       `json:"class"`
	Features    []float64 `json:"features"`
	ModelKind   string    `json:"model_kind"`
}
