package analytics

import (
	"time"

	"github.com/samber/lo"

	"retailsmart/internal/config"
	"retailsmart/pkg/contracts/domain"
)

// ComputeKPIs builds the headline metrics and the 30-day period comparison.
//
// The recent window is (latest-30d, latest] and the previous window is
// (latest-60d, latest-30d], where latest is the maximum valid sale date.
// Growth is (recent-previous)/previous*100, or 0 when previous is 0.
func ComputeKPIs(sales []domain.Sale, customers []domain.Customer, hasCustomerID bool) domain.KPISummary {
	revenue := lo.SumBy(sales, func(s domain.Sale) float64 { return s.Value })
	orders := len(sales)

	summary := domain.KPISummary{
		TotalRevenue:   revenue,
		TotalOrders:    orders,
		AvgOrderValue:  ratio(revenue, float64(orders)),
		TotalCustomers: CountCustomers(customers, hasCustomerID),
	}

	latest, ok := LatestDate(sales)
	if !ok {
		return summary
	}

	recentStart := latest.AddDate(0, 0, -config.WindowDays)
	previousStart := recentStart.AddDate(0, 0, -config.WindowDays)

	summary.LatestDate = latest
	summary.Recent = window(sales, recentStart, latest)
	summary.Previous = window(sales, previousStart, recentStart)

	summary.RevenueGrowth = growth(summary.Recent.Revenue, summary.Previous.Revenue)
	summary.OrdersGrowth = growth(float64(summary.Recent.Orders), float64(summary.Previous.Orders))
	summary.AOVGrowth = growth(summary.Recent.AvgOrderValue, summary.Previous.AvgOrderValue)

	return summary
}

// CountCustomers returns the distinct non-null customer ids, or the row
// count when the table has no id column
func CountCustomers(customers []domain.Customer, hasCustomerID bool) int {
	if !hasCustomerID {
		return len(customers)
	}
	ids := lo.FilterMap(customers, func(c domain.Customer, _ int) (string, bool) {
		return c.CustomerID, c.CustomerID != ""
	})
	return len(lo.Uniq(ids))
}

// LatestDate returns the maximum valid sale date
func LatestDate(sales []domain.Sale) (time.Time, bool) {
	valid := validSales(sales)
	if len(valid) == 0 {
		return time.Time{}, false
	}
	return lo.MaxBy(valid, func(a, b domain.Sale) bool { return a.Date.After(b.Date) }).Date, true
}

// window aggregates valid sales in the half-open interval (start, end]
func window(sales []domain.Sale, start, end time.Time) domain.PeriodWindow {
	in := lo.Filter(sales, func(s domain.Sale, _ int) bool {
		return s.DateValid && s.Date.After(start) && !s.Date.After(end)
	})
	revenue := lo.SumBy(in, func(s domain.Sale) float64 { return s.Value })

	return domain.PeriodWindow{
		Start:         start,
		End:           end,
		Revenue:       revenue,
		Orders:        len(in),
		AvgOrderValue: ratio(revenue, float64(len(in))),
	}
}

func validSales(sales []domain.Sale) []domain.Sale {
	return lo.Filter(sales, func(s domain.Sale, _ int) bool { return s.DateValid })
}

func growth(recent, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (recent - previous) / previous * 100
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
