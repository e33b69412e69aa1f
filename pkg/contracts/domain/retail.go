package domain

import (
	"time"
)

// Sale represents one order row after schema normalization
type Sale struct {
	OrderID    string    `json:"order_id,omitempty"`
	Date       time.Time `json:"order_date"`
	DateValid  bool      `json:"-"`
	Value      float64   `json:"order_value"`
	ProductID  string    `json:"product_id,omitempty"`
	CustomerID string    `json:"customer_id,omitempty"`
}

// Customer represents a customer row. Other attributes stay in the raw table.
type Customer struct {
	CustomerID string `json:"customer_id"`
}

// Product represents a product row with its category
type Product struct {
	ProductID string `json:"product_id"`
	Category  string `json:"category"`
}

// ChurnScore is one customer's churn probability or binary label
type ChurnScore struct {
	CustomerID  string  `json:"customer_id,omitempty"`
	Probability float64 `json:"probability"`
}

// ClusterSummary is one segment with its customer count
type ClusterSummary struct {
	Cluster       string `json:"cluster"`
	CustomerCount int    `json:"customer_count"`
}

// ClusterAssignment maps a customer to a segment label
type ClusterAssignment struct {
	CustomerID string `json:"customer_id,omitempty"`
	Cluster    string `json:"cluster"`
}

// ForecastPoint is a single forecasted revenue value
type ForecastPoint struct {
	Date              time.Time `json:"date"`
	ForecastedRevenue float64   `json:"forecasted_revenue"`
}
