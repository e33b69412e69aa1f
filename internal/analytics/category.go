package analytics

import (
	"sort"

	"github.com/samber/lo"

	"retailsmart/pkg/contracts/domain"
)

// CategoryMix left-joins sales to products on product id and sums revenue
// per category. Unmatched sales and null categories are dropped. Duplicate
// product ids resolve to their first occurrence.
func CategoryMix(sales []domain.Sale, products []domain.Product) []domain.CategoryRevenue {
	categories := make(map[string]string, len(products))
	for _, p := range products {
		if p.ProductID == "" {
			continue
		}
		if _, seen := categories[p.ProductID]; !seen {
			categories[p.ProductID] = p.Category
		}
	}

	totals := make(map[string]float64)
	for _, s := range sales {
		category, ok := categories[s.ProductID]
		if !ok || category == "" {
			continue
		}
		totals[category] += s.Value
	}

	matched := lo.Sum(lo.Values(totals))
	mix := make([]domain.CategoryRevenue, 0, len(totals))
	for category, revenue := range totals {
		mix = append(mix, domain.CategoryRevenue{
			Category: category,
			Revenue:  revenue,
			Share:    ratio(revenue, matched) * 100,
		})
	}

	sort.Slice(mix, func(i, j int) bool {
		if mix[i].Revenue != mix[j].Revenue {
			return mix[i].Revenue > mix[j].Revenue
		}
		return mix[i].Category < mix[j].Category
	})
	return mix
}
