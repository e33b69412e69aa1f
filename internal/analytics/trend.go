package analytics

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"retailsmart/pkg/contracts/domain"
)

// MonthlyTrend sums revenue and orders of valid sales per UTC calendar month,
// sorted ascending
func MonthlyTrend(sales []domain.Sale) []domain.MonthlyRevenue {
	byMonth := lo.GroupBy(validSales(sales), func(s domain.Sale) time.Time {
		d := s.Date.UTC()
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	})

	trend := make([]domain.MonthlyRevenue, 0, len(byMonth))
	for month, rows := range byMonth {
		trend = append(trend, domain.MonthlyRevenue{
			Month:   month,
			Revenue: lo.SumBy(rows, func(s domain.Sale) float64 { return s.Value }),
			Orders:  len(rows),
		})
	}

	sort.Slice(trend, func(i, j int) bool { return trend[i].Month.Before(trend[j].Month) })
	return trend
}
