package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayout(t *testing.T) {
	root := filepath.Join("srv", "capstone")
	l := NewLayout(root)

	assert.Equal(t, filepath.Join(root, "Exported_files", "Phase-1", "Cleaned Files"), l.CleanedDir)
	assert.Equal(t, filepath.Join(root, "Datasets"), l.RawDir)
	assert.Equal(t, filepath.Join(root, "Exported_files", "Phase-2", "Models", "clv_model.yaml"), l.ModelArtifact)
	assert.Equal(t, filepath.Join(root, "Exported_files", "Phase-2", "Models", "scaler.yaml"), l.ScalerArtifact)
	assert.Equal(t, filepath.Join(root, "Exported_files", "Phase-2", "data cleaned", "model_input.csv"), l.ModelInputCSV)
	assert.Equal(t, filepath.Join(root, "Exported_files", "Phase-3", "data outputs", "cluster_summary.csv"), l.ClusterSummaryCSV)
	assert.Equal(t, filepath.Join(root, "Exported_files", "Phase-3", "data outputs", "customers_with_clusters.csv"), l.ClusterAssignmentsCSV)
	assert.Equal(t, filepath.Join(root, "Exported_files", "Phase-3", "data outputs", "forecast_results.csv"), l.ForecastCSV)
}

func TestLayout_Tiers(t *testing.T) {
	l := NewLayout("root")
	tiers := l.Tiers()
	require.Len(t, tiers, 2)

	assert.Equal(t, SourceCleaned, tiers[0].Label)
	assert.Equal(t, SourceRaw, tiers[1].Label)

	for _, name := range BundleTables {
		assert.Equal(t, filepath.Join(l.CleanedDir, name+"_cleaned.csv"), tiers[0].Files[name])
		assert.Equal(t, filepath.Join(l.RawDir, name+".csv"), tiers[1].Files[name])
	}
}

func TestLayout_Remediation(t *testing.T) {
	text := NewLayout("/data").Remediation()
	assert.Contains(t, text, "/data")
	assert.Contains(t, text, "Datasets/")
	assert.Contains(t, text, "sales.csv")
	assert.Contains(t, text, "Phase-3")
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "missing.csv")))
	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(file))

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, EnsureDir(nested))
	assert.True(t, DirExists(nested))
}
