package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Dataset tier labels surfaced to the user
const (
	SourceCleaned = "Phase 1 Cleaned Data"
	SourceRaw     = "Raw Dataset Files"
)

// BundleTables lists the primary dataset tables in display order
var BundleTables = []string{"customers", "sales", "products", "marketing", "reviews"}

// Tier is one candidate location of the primary dataset bundle
type Tier struct {
	Label string
	Files map[string]string // table name -> CSV path
}

// Layout contains every path the dashboard reads.
// This is the single source of truth for the folder structure under the data root.
type Layout struct {
	Root string

	CleanedDir string
	RawDir     string

	ChurnPredictionsCSV string
	ModelInputCSV       string
	ModelArtifact       string
	ScalerArtifact      string

	ClusterSummaryCSV     string
	ClusterAssignmentsCSV string
	ForecastCSV           string
}

// NewLayout builds the folder layout rooted at root
func NewLayout(root string) Layout {
	exported := filepath.Join(root, "Exported_files")
	phase2 := filepath.Join(exported, "Phase-2")
	phase3Out := filepath.Join(exported, "Phase-3", "data outputs")

	return Layout{
		Root:       root,
		CleanedDir: filepath.Join(exported, "Phase-1", "Cleaned Files"),
		RawDir:     filepath.Join(root, "Datasets"),

		ChurnPredictionsCSV: filepath.Join(phase2, "Models", "churn_predictions.csv"),
		ModelInputCSV:       filepath.Join(phase2, "data cleaned", "model_input.csv"),
		ModelArtifact:       filepath.Join(phase2, "Models", "clv_model.yaml"),
		ScalerArtifact:      filepath.Join(phase2, "Models", "scaler.yaml"),

		ClusterSummaryCSV:     filepath.Join(phase3Out, "cluster_summary.csv"),
		ClusterAssignmentsCSV: filepath.Join(phase3Out, "customers_with_clusters.csv"),
		ForecastCSV:           filepath.Join(phase3Out, "forecast_results.csv"),
	}
}

// Tiers returns the primary dataset locations in fallback order
func (l Layout) Tiers() []Tier {
	cleaned := Tier{Label: SourceCleaned, Files: make(map[string]string, len(BundleTables))}
	raw := Tier{Label: SourceRaw, Files: make(map[string]string, len(BundleTables))}
	for _, name := range BundleTables {
		cleaned.Files[name] = filepath.Join(l.CleanedDir, name+"_cleaned.csv")
		raw.Files[name] = filepath.Join(l.RawDir, name+".csv")
	}
	return []Tier{cleaned, raw}
}

// Remediation describes the expected folder structure for users whose
// primary dataset could not be found
func (l Layout) Remediation() string {
	return fmt.Sprintf(`Expected folder structure under %s:
Datasets/
  customers.csv
  sales.csv
  products.csv
  marketing.csv
  reviews.csv
Exported_files/
  Phase-1/Cleaned Files/  (cleaned data, *_cleaned.csv)
  Phase-2/                (models, predictions)
  Phase-3/data outputs/   (clustering, forecast)`, l.Root)
}

// LogPathResolution logs the resolved layout at debug level
func (l Layout) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved dataset layout",
		slog.String("root", l.Root),
		slog.String("cleaned_dir", l.CleanedDir),
		slog.String("raw_dir", l.RawDir),
		slog.String("model", l.ModelArtifact),
		slog.String("scaler", l.ScalerArtifact))
}

// EnsureDir creates dir if it doesn't exist
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %v", dir, err)
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// DirExists checks if path exists and is a directory
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
