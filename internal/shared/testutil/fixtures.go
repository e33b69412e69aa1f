package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"retailsmart/internal/config"
)

// ProjectOptions selects which parts of a data root NewProject writes
type ProjectOptions struct {
	// Tier is config.SourceCleaned, config.SourceRaw or "" for no primary bundle
	Tier        string
	Predictions bool
	Model       bool
	Clustering  bool
	Forecast    bool
	// SnakeCase writes the alternate snake_case column names
	SnakeCase bool
}

// FullProject returns options for a data root with every artifact present
func FullProject() ProjectOptions {
	return ProjectOptions{
		Tier:        config.SourceCleaned,
		Predictions: true,
		Model:       true,
		Clustering:  true,
		Forecast:    true,
	}
}

// Known figures of the fixture bundle
const (
	FixtureTotalRevenue   = 650.0
	FixtureTotalOrders    = 6
	FixtureTotalCustomers = 4
	FixtureRecentRevenue  = 350.0
	FixturePrevRevenue    = 220.0
	FixtureForecastRows   = 12
)

// ScalerYAML is an eight-feature StandardScaler artifact
const ScalerYAML = `kind: StandardScaler
feature_names: [Recency, Frequency, Monetary, Age, Tenure, SatisfactionScore, AvgOrderValue, ReviewCount]
mean: [30, 5, 500, 40, 24, 7, 100, 3]
scale: [15, 2, 250, 12, 12, 2, 50, 2]
`

// ModelYAML is a LogisticRegression artifact matching ScalerYAML
const ModelYAML = `kind: LogisticRegression
classes: [0, 1]
feature_names: [Recency, Frequency, Monetary, Age, Tenure, SatisfactionScore, AvgOrderValue, ReviewCount]
coefficients: [0.8, -0.5, -0.3, 0.1, -0.4, -0.6, 0.2, 0.1]
intercept: -0.2
`

// ForestYAML is a two-tree RandomForestClassifier over eight features
const ForestYAML = `kind: RandomForestClassifier
classes: [0, 1]
trees:
  - nodes:
      - {feature: 0, threshold: 0.0, left: 1, right: 2}
      - {leaf: true, value: [8, 2]}
      - {leaf: true, value: [1, 9]}
  - nodes:
      - {feature: 5, threshold: 0.0, left: 1, right: 2}
      - {leaf: true, value: [0.3, 0.7]}
      - {leaf: true, value: [0.9, 0.1]}
`

// WriteCSV writes header and rows to path, creating parent directories
func WriteCSV(t *testing.T, path string, header []string, rows ...[]string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create dir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header %s: %v", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write rows %s: %v", path, err)
	}
}

// WriteFile writes content to path, creating parent directories
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// NewProject writes a data root into a temp dir and returns its path
func NewProject(t *testing.T, opts ProjectOptions) string {
	t.Helper()

	root := t.TempDir()
	layout := config.NewLayout(root)

	if opts.Tier != "" {
		for _, tier := range layout.Tiers() {
			if tier.Label == opts.Tier {
				WriteBundle(t, tier, opts.SnakeCase)
			}
		}
	}

	if opts.Predictions {
		col := "ChurnPrediction"
		if opts.SnakeCase {
			col = "churn_prob"
		}
		WriteCSV(t, layout.ChurnPredictionsCSV, []string{"CustomerID", col},
			[]string{"C1", "0.2"},
			[]string{"C2", "0.7"},
			[]string{"C3", "0.9"},
			[]string{"C4", "0.4"},
		)
		WriteCSV(t, layout.ModelInputCSV, []string{"CustomerID", "Recency", "Frequency", "Monetary"},
			[]string{"C1", "10", "6", "480"},
			[]string{"C2", "45", "2", "120"},
		)
	}

	if opts.Model {
		WriteFile(t, layout.ScalerArtifact, ScalerYAML)
		WriteFile(t, layout.ModelArtifact, ModelYAML)
	}

	if opts.Clustering {
		WriteCSV(t, layout.ClusterSummaryCSV, []string{"Cluster", "CustomerCount"},
			[]string{"0", "2"},
			[]string{"1", "1"},
			[]string{"2", "1"},
		)
		WriteCSV(t, layout.ClusterAssignmentsCSV, []string{"CustomerID", "Cluster"},
			[]string{"C1", "0"},
			[]string{"C2", "0"},
			[]string{"C3", "1"},
			[]string{"C4", "2"},
		)
	}

	if opts.Forecast {
		rows := make([][]string, 0, FixtureForecastRows)
		for i := 0; i < FixtureForecastRows; i++ {
			rows = append(rows, []string{
				fmt.Sprintf("2024-02-%02d", i+1),
				strconv.Itoa(1000 + i*10),
			})
		}
		WriteCSV(t, layout.ForecastCSV, []string{"Date", "ForecastedRevenue"}, rows...)
	}

	return root
}

// WriteBundle writes the five primary tables for tier
func WriteBundle(t *testing.T, tier config.Tier, snakeCase bool) {
	t.Helper()

	salesHeader := []string{"OrderID", "CustomerID", "ProductID", "OrderDate", "OrderValue"}
	productHeader := []string{"ProductID", "ProductCategory", "Price"}
	customerHeader := []string{"CustomerID", "Age", "Gender"}
	if snakeCase {
		salesHeader = []string{"order_id", "customer_id", "product_id", "order_date", "order_value"}
		productHeader = []string{"product_id", "category", "price"}
		customerHeader = []string{"customer_id", "age", "gender"}
	}

	WriteCSV(t, tier.Files["sales"], salesHeader,
		[]string{"O1", "C1", "P1", "2023-11-15", "80"},
		[]string{"O2", "C2", "P2", "2023-12-20", "120"},
		[]string{"O3", "C1", "P1", "2024-01-01", "100"},
		[]string{"O4", "C3", "P3", "2024-01-15", "200"},
		[]string{"O5", "C2", "P9", "2024-01-31", "150"},
		[]string{"O6", "C4", "P2", "2024-01-20", ""},
	)
	WriteCSV(t, tier.Files["customers"], customerHeader,
		[]string{"C1", "34", "F"},
		[]string{"C2", "", "M"},
		[]string{"C3", "51", "F"},
		[]string{"C4", "28", "M"},
	)
	WriteCSV(t, tier.Files["products"], productHeader,
		[]string{"P1", "Electronics", "80"},
		[]string{"P2", "Apparel", "40"},
		[]string{"P3", "Electronics", "200"},
	)
	WriteCSV(t, tier.Files["marketing"], []string{"CampaignID", "Channel", "Spend"},
		[]string{"M1", "Email", "500"},
		[]string{"M2", "Social", "750"},
	)
	WriteCSV(t, tier.Files["reviews"], []string{"ReviewID", "CustomerID", "Rating"},
		[]string{"R1", "C1", "5"},
		[]string{"R2", "C2", "3"},
		[]string{"R3", "C3", "4"},
	)
}
