package analytics

import (
	"retailsmart/internal/config"
	"retailsmart/internal/dataset"
	"retailsmart/pkg/contracts/domain"
)

// Quality reports row, column and null-cell counts for each bundle table
func Quality(tables map[string]*dataset.RawTable) []domain.TableQuality {
	out := make([]domain.TableQuality, 0, len(config.BundleTables))
	for _, name := range config.BundleTables {
		t, ok := tables[name]
		if !ok || t == nil {
			continue
		}
		out = append(out, domain.TableQuality{
			Table:     name,
			Rows:      t.Len(),
			Columns:   len(t.Headers),
			NullCells: t.NullCells(),
		})
	}
	return out
}

// ForecastHead returns the first limit points. A limit <= 0 returns every point.
func ForecastHead(points []domain.ForecastPoint, limit int) []domain.ForecastPoint {
	if limit <= 0 || limit >= len(points) {
		return points
	}
	return points[:limit]
}
