package dataset

import (
	"fmt"
	"strconv"
	"strings"

	apierrors "retailsmart/internal/errors"
	"retailsmart/pkg/contracts/domain"
)

// Canonical column names produced by schema normalization
const (
	ColOrderID           = "order_id"
	ColOrderDate         = "order_date"
	ColOrderValue        = "order_value"
	ColProductID         = "product_id"
	ColCustomerID        = "customer_id"
	ColCategory          = "category"
	ColChurn             = "churn"
	ColCluster           = "cluster"
	ColCustomerCount     = "customer_count"
	ColDate              = "date"
	ColForecastedRevenue = "forecasted_revenue"
)

type column struct {
	canonical string
	aliases   []string
	required  bool
}

type schema struct {
	table   string
	columns []column
}

var (
	salesSchema = schema{table: "sales", columns: []column{
		{canonical: ColOrderID, aliases: []string{"OrderID", "order_id"}},
		{canonical: ColOrderDate, aliases: []string{"OrderDate", "order_date"}, required: true},
		{canonical: ColOrderValue, aliases: []string{"OrderValue", "order_value"}, required: true},
		{canonical: ColProductID, aliases: []string{"ProductID", "product_id"}},
		{canonical: ColCustomerID, aliases: []string{"CustomerID", "customer_id"}},
	}}
	customersSchema = schema{table: "customers", columns: []column{
		{canonical: ColCustomerID, aliases: []string{"CustomerID", "customer_id"}},
	}}
	productsSchema = schema{table: "products", columns: []column{
		{canonical: ColProductID, aliases: []string{"ProductID", "product_id"}, required: true},
		{canonical: ColCategory, aliases: []string{"ProductCategory", "category"}, required: true},
	}}
	churnSchema = schema{table: "churn_predictions", columns: []column{
		{canonical: ColCustomerID, aliases: []string{"CustomerID", "customer_id"}},
		{canonical: ColChurn, aliases: []string{"ChurnPrediction", "churn_prob"}, required: true},
	}}
	clusterSummarySchema = schema{table: "cluster_summary", columns: []column{
		{canonical: ColCluster, aliases: []string{"Cluster", "cluster"}, required: true},
		{canonical: ColCustomerCount, aliases: []string{"CustomerCount", "customer_count"}},
	}}
	assignmentsSchema = schema{table: "cluster_assignments", columns: []column{
		{canonical: ColCustomerID, aliases: []string{"CustomerID", "customer_id"}},
		{canonical: ColCluster, aliases: []string{"Cluster", "cluster"}, required: true},
	}}
	forecastSchema = schema{table: "forecast", columns: []column{
		{canonical: ColDate, aliases: []string{"Date", "date"}, required: true},
		{canonical: ColForecastedRevenue, aliases: []string{"ForecastedRevenue", "forecasted_revenue"}, required: true},
	}}
)

// columnIndex maps canonical names to header positions. Absent columns map to -1.
type columnIndex map[string]int

func (ci columnIndex) has(canonical string) bool {
	return ci[canonical] >= 0
}

// resolve matches each column's aliases against headers, first alias first
func (s schema) resolve(headers []string) (columnIndex, error) {
	idx := make(columnIndex, len(s.columns))
	for _, col := range s.columns {
		idx[col.canonical] = findHeader(headers, col.aliases)
		if idx[col.canonical] < 0 && col.required {
			return nil, apierrors.MissingColumnError(s.table, col.canonical, col.aliases)
		}
	}
	return idx, nil
}

func findHeader(headers []string, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range headers {
			if strings.EqualFold(cleanHeader(h), alias) {
				return i
			}
		}
	}
	return -1
}

// NormalizeSales maps a raw sales table to canonical sales rows.
// Null or unparseable values count as 0; unparseable dates clear DateValid.
func NormalizeSales(t *RawTable) ([]domain.Sale, error) {
	idx, err := salesSchema.resolve(t.Headers)
	if err != nil {
		return nil, err
	}

	sales := make([]domain.Sale, 0, len(t.Rows))
	for i := range t.Rows {
		value, _ := ParseFloat(t.Cell(i, idx[ColOrderValue]))
		date, ok := ParseDate(t.Cell(i, idx[ColOrderDate]))
		sales = append(sales, domain.Sale{
			OrderID:    textCell(t, i, idx[ColOrderID]),
			Date:       date,
			DateValid:  ok,
			Value:      value,
			ProductID:  textCell(t, i, idx[ColProductID]),
			CustomerID: textCell(t, i, idx[ColCustomerID]),
		})
	}
	return sales, nil
}

// NormalizeCustomers maps a raw customers table. hasID is false when the
// table carries no customer id column.
func NormalizeCustomers(t *RawTable) (customers []domain.Customer, hasID bool, err error) {
	idx, err := customersSchema.resolve(t.Headers)
	if err != nil {
		return nil, false, err
	}

	customers = make([]domain.Customer, 0, len(t.Rows))
	for i := range t.Rows {
		customers = append(customers, domain.Customer{CustomerID: textCell(t, i, idx[ColCustomerID])})
	}
	return customers, idx.has(ColCustomerID), nil
}

// NormalizeProducts maps a raw products table
func NormalizeProducts(t *RawTable) ([]domain.Product, error) {
	idx, err := productsSchema.resolve(t.Headers)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(t.Rows))
	for i := range t.Rows {
		products = append(products, domain.Product{
			ProductID: textCell(t, i, idx[ColProductID]),
			Category:  textCell(t, i, idx[ColCategory]),
		})
	}
	return products, nil
}

// NormalizeChurn maps churn predictions and reports the source column name.
// A null probability is kept as 0 so that the row still counts.
func NormalizeChurn(t *RawTable) ([]domain.ChurnScore, string, error) {
	idx, err := churnSchema.resolve(t.Headers)
	if err != nil {
		return nil, "", apierrors.NewParsingError(
			fmt.Sprintf("%s: no churn probability column", t.Name), apierrors.ErrNoChurnColumn).
			WithContext("table", churnSchema.table).
			WithContext("column", ColChurn)
	}

	scores := make([]domain.ChurnScore, 0, len(t.Rows))
	for i := range t.Rows {
		p, _ := ParseFloat(t.Cell(i, idx[ColChurn]))
		scores = append(scores, domain.ChurnScore{
			CustomerID:  textCell(t, i, idx[ColCustomerID]),
			Probability: p,
		})
	}
	return scores, t.Headers[idx[ColChurn]], nil
}

// NormalizeClusterSummary maps the cluster summary. hasCount is false when
// no customer count column is present.
func NormalizeClusterSummary(t *RawTable) (summary []domain.ClusterSummary, hasCount bool, err error) {
	idx, err := clusterSummarySchema.resolve(t.Headers)
	if err != nil {
		return nil, false, err
	}

	for i := range t.Rows {
		label := clusterLabel(t.Cell(i, idx[ColCluster]))
		if label == "" {
			continue
		}
		count, _ := ParseFloat(t.Cell(i, idx[ColCustomerCount]))
		summary = append(summary, domain.ClusterSummary{Cluster: label, CustomerCount: int(count)})
	}
	return summary, idx.has(ColCustomerCount), nil
}

// NormalizeAssignments maps customer-to-cluster assignments, skipping null labels
func NormalizeAssignments(t *RawTable) ([]domain.ClusterAssignment, error) {
	idx, err := assignmentsSchema.resolve(t.Headers)
	if err != nil {
		return nil, err
	}

	assignments := make([]domain.ClusterAssignment, 0, len(t.Rows))
	for i := range t.Rows {
		label := clusterLabel(t.Cell(i, idx[ColCluster]))
		if label == "" {
			continue
		}
		assignments = append(assignments, domain.ClusterAssignment{
			CustomerID: textCell(t, i, idx[ColCustomerID]),
			Cluster:    label,
		})
	}
	return assignments, nil
}

// NormalizeForecast maps forecast rows, skipping rows with unparseable dates
func NormalizeForecast(t *RawTable) ([]domain.ForecastPoint, error) {
	idx, err := forecastSchema.resolve(t.Headers)
	if err != nil {
		return nil, err
	}

	points := make([]domain.ForecastPoint, 0, len(t.Rows))
	for i := range t.Rows {
		date, ok := ParseDate(t.Cell(i, idx[ColDate]))
		if !ok {
			continue
		}
		value, _ := ParseFloat(t.Cell(i, idx[ColForecastedRevenue]))
		points = append(points, domain.ForecastPoint{Date: date, ForecastedRevenue: value})
	}
	return points, nil
}

// textCell returns a trimmed cell, or "" for null tokens
func textCell(t *RawTable, row, col int) string {
	v := strings.TrimSpace(t.Cell(row, col))
	if IsNull(v) {
		return ""
	}
	return v
}

// clusterLabel renders integral float labels such as "2.0" as "2"
func clusterLabel(s string) string {
	s = strings.TrimSpace(s)
	if IsNull(s) {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}
