// Package api contains API contract definitions for the RetailSmart dashboard.
// Version v1 represents the current stable API version.
package api

// DateRangeRequest represents a date range in requests
type DateRangeRequest struct {
	From string `json:"from" query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// PredictionRequest carries the six customer fields entered on the prediction form.
// Pointers distinguish a missing field from an explicit zero.
type PredictionRequest struct {
	Recency      *float64 `json:"recency" validate:"required,gte=0"`
	Frequency    *float64 `json:"frequency" validate:"required,gte=0"`
	Monetary     *float64 `json:"monetary" validate:"required,gte=0"`
	Age          *float64 `json:"age" validate:"required,gte=0,lte=120"`
	Tenure       *float64 `json:"tenure" validate:"required,gte=0"`
	Satisfaction *float64 `json:"satisfaction" validate:"required,gte=0,lte=10"`
}

// CacheInvalidateRequest selects a single cached path, or everything when empty
type CacheInvalidateRequest struct {
	Path string `json:"path,omitempty"`
}

// PreviewRequest selects a raw dataset table
type PreviewRequest struct {
	Table string `json:"table" validate:"required,dataset_table"`
}

// SaveReportRequest asks for a KPI report to be written to the export directory
type SaveReportRequest struct {
	From   string `json:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To     string `json:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Format string `json:"format" validate:"required,oneof=csv xlsx both"`
}
