package analytics

import (
	"time"

	"github.com/samber/lo"

	"retailsmart/pkg/contracts/domain"
)

// SalesRange returns the min and max valid sale dates
func SalesRange(sales []domain.Sale) domain.DateRange {
	valid := validSales(sales)
	if len(valid) == 0 {
		return domain.DateRange{}
	}
	return domain.DateRange{
		From: lo.MinBy(valid, func(a, b domain.Sale) bool { return a.Date.Before(b.Date) }).Date,
		To:   lo.MaxBy(valid, func(a, b domain.Sale) bool { return a.Date.After(b.Date) }).Date,
	}
}

// FilterByDate keeps sales whose date falls in the inclusive range.
// To covers its whole calendar day. A zero bound is open. An all-zero range
// returns sales unchanged; otherwise sales without a valid date are dropped.
func FilterByDate(sales []domain.Sale, r domain.DateRange) []domain.Sale {
	if r.IsZero() {
		return sales
	}

	from := truncateDay(r.From)
	var until time.Time
	if !r.To.IsZero() {
		until = truncateDay(r.To).AddDate(0, 0, 1)
	}

	return lo.Filter(sales, func(s domain.Sale, _ int) bool {
		if !s.DateValid {
			return false
		}
		if !r.From.IsZero() && s.Date.Before(from) {
			return false
		}
		if !until.IsZero() && !s.Date.Before(until) {
			return false
		}
		return true
	})
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
