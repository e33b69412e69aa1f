package inference

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "retailsmart/internal/errors"
	"retailsmart/internal/shared/testutil"
)

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	testutil.WriteFile(t, path, content)
	return path
}

func TestLoadScaler(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		wantErr   bool
		wantInMsg string
	}{
		{name: "yaml", file: "scaler.yaml", content: testutil.ScalerYAML},
		{name: "json", file: "scaler.json", content: `{"kind":"StandardScaler","mean":[1,2,3],"scale":[1,1,1]}`},
		{name: "unknown kind", file: "s.yaml", content: "kind: MinMaxScaler\nmean: [1]\nscale: [1]\n", wantErr: true, wantInMsg: "MinMaxScaler"},
		{name: "length mismatch", file: "s.yaml", content: "kind: StandardScaler\nmean: [1, 2]\nscale: [1]\n", wantErr: true, wantInMsg: "scale has 1 values"},
		{name: "zero scale", file: "s.yaml", content: "kind: StandardScaler\nmean: [1, 2]\nscale: [1, 0]\n", wantErr: true, wantInMsg: "scale[1] is zero"},
		{name: "names mismatch", file: "s.yaml", content: "kind: StandardScaler\nfeature_names: [a]\nmean: [1, 2]\nscale: [1, 1]\n", wantErr: true, wantInMsg: "feature_names"},
		{name: "empty", file: "s.yaml", content: "kind: StandardScaler\n", wantErr: true, wantInMsg: "mean is empty"},
		{name: "bad yaml", file: "s.yaml", content: "kind: [\n", wantErr: true, wantInMsg: "invalid YAML"},
		{name: "bad json", file: "s.json", content: "{", wantErr: true, wantInMsg: "invalid JSON"},
		{name: "pickle", file: "scaler.pkl", content: "\x80\x04", wantErr: true, wantInMsg: "unsupported artifact format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scaler, err := LoadScaler(writeArtifact(t, tt.file, tt.content))
			if tt.wantErr {
				require.ErrorIs(t, err, apierrors.ErrInvalidArtifact)
				assert.Contains(t, err.Error(), tt.wantInMsg)
				return
			}
			require.NoError(t, err)
			assert.Greater(t, scaler.NumFeatures(), 0)
		})
	}
}

func TestLoadScaler_MissingFile(t *testing.T) {
	_, err := LoadScaler(filepath.Join(t.TempDir(), "scaler.yaml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, apierrors.ErrInvalidArtifact)
}

func TestLoadClassifier(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantKind  string
		wantInMsg string
	}{
		{name: "logistic", content: testutil.ModelYAML, wantKind: KindLogisticRegression},
		{name: "forest", content: testutil.ForestYAML, wantKind: KindRandomForestClassifier},
		{name: "unknown kind", content: "kind: SVC\n", wantInMsg: `unknown classifier kind "SVC"`},
		{name: "three classes", content: "kind: LogisticRegression\nclasses: [0, 1, 2]\ncoefficients: [1]\n", wantInMsg: "expected 2 classes"},
		{name: "empty coefficients", content: "kind: LogisticRegression\n", wantInMsg: "coefficients are empty"},
		{name: "coefficient names mismatch", content: "kind: LogisticRegression\nfeature_names: [a, b]\ncoefficients: [1]\n", wantInMsg: "coefficients has 1"},
		{name: "n_features mismatch", content: "kind: LogisticRegression\nn_features: 3\ncoefficients: [1]\n", wantInMsg: "n_features is 3"},
		{name: "no trees", content: "kind: RandomForestClassifier\n", wantInMsg: "trees are empty"},
		{name: "empty tree", content: "kind: RandomForestClassifier\ntrees:\n  - nodes: []\n", wantInMsg: "tree 0 has no nodes"},
		{
			name: "child out of range",
			content: `kind: RandomForestClassifier
trees:
  - nodes:
      - {feature: 0, threshold: 1, left: 1, right: 5}
      - {leaf: true, value: [1, 0]}
`,
			wantInMsg: "child index out of range",
		},
		{
			name: "cycle",
			content: `kind: RandomForestClassifier
trees:
  - nodes:
      - {feature: 0, threshold: 1, left: 0, right: 1}
      - {leaf: true, value: [1, 0]}
`,
			wantInMsg: "child index out of range",
		},
		{
			name: "leaf width",
			content: `kind: RandomForestClassifier
trees:
  - nodes:
      - {leaf: true, value: [1, 0, 0]}
`,
			wantInMsg: "leaf has 3 values",
		},
		{
			name: "leaf sums to zero",
			content: `kind: RandomForestClassifier
trees:
  - nodes:
      - {leaf: true, value: [0, 0]}
`,
			wantInMsg: "sum to zero",
		},
		{
			name: "feature beyond n_features",
			content: `kind: RandomForestClassifier
n_features: 2
trees:
  - nodes:
      - {feature: 4, threshold: 1, left: 1, right: 2}
      - {leaf: true, value: [1, 0]}
      - {leaf: true, value: [0, 1]}
`,
			wantInMsg: "feature index 4 out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf, err := LoadClassifier(writeArtifact(t, "clv_model.yaml", tt.content))
			if tt.wantInMsg != "" {
				require.ErrorIs(t, err, apierrors.ErrInvalidArtifact)
				assert.Contains(t, err.Error(), tt.wantInMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, clf.Kind())
		})
	}
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()
	scalerPath := filepath.Join(dir, "scaler.yaml")
	testutil.WriteFile(t, scalerPath, testutil.ScalerYAML)

	tests := []struct {
		name      string
		scaler    string
		model     string
		wantInMsg string
	}{
		{name: "logistic", model: testutil.ModelYAML},
		{name: "forest adopts scaler width", model: testutil.ForestYAML},
		{
			name:      "feature count mismatch",
			model:     "kind: LogisticRegression\ncoefficients: [1, 2, 3, 4, 5, 6, 7]\n",
			wantInMsg: "scaler expects 8 features, classifier expects 7",
		},
		{
			name:      "feature names differ",
			model:     "kind: LogisticRegression\nfeature_names: [a, b, c, d, e, f, g, h]\ncoefficients: [1, 2, 3, 4, 5, 6, 7, 8]\n",
			wantInMsg: "feature_names differ",
		},
		{
			name: "forest feature beyond scaler",
			model: `kind: RandomForestClassifier
trees:
  - nodes:
      - {feature: 9, threshold: 1, left: 1, right: 2}
      - {leaf: true, value: [1, 0]}
      - {leaf: true, value: [0, 1]}
`,
			wantInMsg: "reads feature 9",
		},
		{
			name:      "too few features",
			scaler:    "kind: StandardScaler\nmean: [1, 2, 3]\nscale: [1, 1, 1]\n",
			model:     "kind: LogisticRegression\ncoefficients: [1, 2, 3]\n",
			wantInMsg: "at least 6 are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := scalerPath
			if tt.scaler != "" {
				sp = writeArtifact(t, "scaler.yaml", tt.scaler)
			}
			model, err := LoadModel(sp, writeArtifact(t, "clv_model.yaml", tt.model))
			if tt.wantInMsg != "" {
				require.ErrorIs(t, err, apierrors.ErrInvalidArtifact)
				assert.Contains(t, err.Error(), tt.wantInMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 8, model.NumFeatures())
			assert.Len(t, model.FeatureNames, 8)
		})
	}
}
