package analytics

import (
	"testing"
	"time"

	"retailsmart/pkg/contracts/domain"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return d
}

func sale(t *testing.T, id, date string, value float64, product, customer string) domain.Sale {
	t.Helper()
	s := domain.Sale{OrderID: id, Value: value, ProductID: product, CustomerID: customer}
	if date != "" {
		s.Date = day(t, date)
		s.DateValid = true
	}
	return s
}

// fixtureSales mirrors the bundle written by testutil.NewProject
func fixtureSales(t *testing.T) []domain.Sale {
	return []domain.Sale{
		sale(t, "O1", "2023-11-15", 80, "P1", "C1"),
		sale(t, "O2", "2023-12-20", 120, "P2", "C2"),
		sale(t, "O3", "2024-01-01", 100, "P1", "C1"),
		sale(t, "O4", "2024-01-15", 200, "P3", "C3"),
		sale(t, "O5", "2024-01-31", 150, "P9", "C2"),
		sale(t, "O6", "2024-01-20", 0, "P2", "C4"),
	}
}

func fixtureProducts() []domain.Product {
	return []domain.Product{
		{ProductID: "P1", Category: "Electronics"},
		{ProductID: "P2", Category: "Apparel"},
		{ProductID: "P3", Category: "Electronics"},
	}
}
