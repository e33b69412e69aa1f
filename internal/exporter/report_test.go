package exporter

import (
	"time"

	"retailsmart/pkg/contracts/domain"
)

func sampleReport() Report {
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }
	return Report{
		GeneratedAt:  time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC),
		DataSource:   "cleaned",
		Range:        domain.DateRange{From: day(1, 1), To: day(2, 29)},
		Availability: domain.Availability{Predictions: true, Clustering: true},
		KPIs: domain.KPISummary{
			TotalRevenue:   650,
			RevenueGrowth:  59.09,
			TotalOrders:    6,
			AvgOrderValue:  108.33,
			TotalCustomers: 4,
			LatestDate:     day(2, 20),
		},
		Trend: []domain.MonthlyRevenue{
			{Month: day(1, 1), Revenue: 300, Orders: 3},
			{Month: day(2, 1), Revenue: 350, Orders: 3},
		},
		Categories: []domain.CategoryRevenue{
			{Category: "Electronics", Revenue: 400, Share: 61.54},
			{Category: "Apparel", Revenue: 250, Share: 38.46},
		},
		Segments: []domain.ClusterSummary{{Cluster: "0", CustomerCount: 2}},
	}
}
