package exporter

import (
	"time"

	"retailsmart/pkg/contracts/domain"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatBoth = "both"
)

// Report is everything the KPI export contains
type Report struct {
	GeneratedAt  time.Time
	DataSource   string
	Range        domain.DateRange
	Availability domain.Availability
	KPIs         domain.KPISummary
	Trend        []domain.MonthlyRevenue
	Categories   []domain.CategoryRevenue
	Segments     []domain.ClusterSummary
	Forecast     []domain.ForecastPoint
}

// Section is one table of the report
type Section struct {
	Name    string
	Headers []string
	Records [][]string
}

// Sections flattens the report into tables in a fixed order.
// Segments and forecast are omitted when empty.
func (r Report) Sections() []Section {
	sections := []Section{r.summarySection(), r.kpiSection(), r.trendSection(), r.categorySection()}
	if len(r.Segments) > 0 {
		sections = append(sections, r.segmentSection())
	}
	if len(r.Forecast) > 0 {
		sections = append(sections, r.forecastSection())
	}
	return sections
}

func (r Report) summarySection() Section {
	generated := ""
	if !r.GeneratedAt.IsZero() {
		generated = r.GeneratedAt.UTC().Format(time.RFC3339)
	}
	return Section{
		Name:    "Summary",
		Headers: []string{"Field", "Value"},
		Records: [][]string{
			{"generated_at", generated},
			{"data_source", r.DataSource},
			{"from", formatDate(r.Range.From)},
			{"to", formatDate(r.Range.To)},
			{"predictions_available", formatBool(r.Availability.Predictions)},
			{"model_available", formatBool(r.Availability.Model)},
			{"clustering_available", formatBool(r.Availability.Clustering)},
			{"forecast_available", formatBool(r.Availability.Forecast)},
		},
	}
}

func (r Report) kpiSection() Section {
	k := r.KPIs
	return Section{
		Name:    "KPIs",
		Headers: []string{"Metric", "Value", "Growth %"},
		Records: [][]string{
			{"total_revenue", formatFloat(k.TotalRevenue), formatFloat(k.RevenueGrowth)},
			{"total_orders", formatInt(k.TotalOrders), formatFloat(k.OrdersGrowth)},
			{"avg_order_value", formatFloat(k.AvgOrderValue), formatFloat(k.AOVGrowth)},
			{"total_customers", formatInt(k.TotalCustomers), ""},
			{"latest_date", formatDate(k.LatestDate), ""},
			{"recent_revenue", formatFloat(k.Recent.Revenue), ""},
			{"previous_revenue", formatFloat(k.Previous.Revenue), ""},
		},
	}
}

func (r Report) trendSection() Section {
	s := Section{Name: "Monthly Trend", Headers: []string{"Month", "Revenue", "Orders"}}
	for _, p := range r.Trend {
		s.Records = append(s.Records, []string{p.Month.Format("2006-01"), formatFloat(p.Revenue), formatInt(p.Orders)})
	}
	return s
}

func (r Report) categorySection() Section {
	s := Section{Name: "Categories", Headers: []string{"Category", "Revenue", "Share %"}}
	for _, c := range r.Categories {
		s.Records = append(s.Records, []string{c.Category, formatFloat(c.Revenue), formatFloat(c.Share)})
	}
	return s
}

func (r Report) segmentSection() Section {
	s := Section{Name: "Segments", Headers: []string{"Cluster", "Customers"}}
	for _, seg := range r.Segments {
		s.Records = append(s.Records, []string{seg.Cluster, formatInt(seg.CustomerCount)})
	}
	return s
}

func (r Report) forecastSection() Section {
	s := Section{Name: "Forecast", Headers: []string{"Date", "Forecasted Revenue"}}
	for _, p := range r.Forecast {
		s.Records = append(s.Records, []string{formatDate(p.Date), formatFloat(p.ForecastedRevenue)})
	}
	return s
}
