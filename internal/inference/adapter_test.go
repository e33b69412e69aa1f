package inference

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailsmart/internal/config"
	apierrors "retailsmart/internal/errors"
	"retailsmart/internal/shared/testutil"
)

func loadFixtureModel(t *testing.T, classifierYAML string) *Model {
	t.Helper()
	model, err := LoadModel(
		writeArtifact(t, "scaler.yaml", testutil.ScalerYAML),
		writeArtifact(t, "clv_model.yaml", classifierYAML))
	require.NoError(t, err)
	return model
}

func meanInput() Input {
	return Input{Recency: 30, Frequency: 5, Monetary: 500, Age: 40, Tenure: 24, Satisfaction: 7}
}

func sigmoidOf(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

func TestAdapter_FeatureVector(t *testing.T) {
	model := loadFixtureModel(t, testutil.ModelYAML)

	tests := []struct {
		name   string
		policy string
		want   []float64
	}{
		{"zero fill", config.FillPolicyZero, []float64{30, 5, 500, 40, 24, 7, 0, 0}},
		{"mean fill", config.FillPolicyMean, []float64{30, 5, 500, 40, 24, 7, 100, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := NewAdapter(model, tt.policy, config.DefaultRiskThreshold)
			require.NoError(t, err)

			x := adapter.FeatureVector(meanInput())

			assert.Equal(t, tt.want, x)
			assert.Len(t, x, model.NumFeatures())
		})
	}
}

func TestAdapter_FeatureVectorByName(t *testing.T) {
	scaler, err := NewStandardScaler("scaler", ScalerArtifact{
		Kind:         KindStandardScaler,
		FeatureNames: []string{"Gender", "satisfactionscore", "Tenure", "Age", "Monetary", "Frequency", "Recency"},
		Mean:         []float64{9, 9, 9, 9, 9, 9, 9},
		Scale:        []float64{1, 1, 1, 1, 1, 1, 1},
	})
	require.NoError(t, err)
	clf, err := NewClassifier("clf", ClassifierArtifact{Kind: KindLogisticRegression, Coefficients: make([]float64, 7)})
	require.NoError(t, err)
	model, err := NewModel(scaler, clf)
	require.NoError(t, err)

	adapter, err := NewAdapter(model, config.FillPolicyZero, 0.5)
	require.NoError(t, err)

	x := adapter.FeatureVector(Input{Recency: 1, Frequency: 2, Monetary: 3, Age: 4, Tenure: 5, Satisfaction: 6})
	assert.Equal(t, []float64{0, 6, 5, 4, 3, 2, 1}, x)
}

func TestAdapter_FeatureVectorLengthMatchesArtifact(t *testing.T) {
	for n := 6; n <= 12; n++ {
		mean := make([]float64, n)
		scale := make([]float64, n)
		for i := range scale {
			scale[i] = 1
		}
		scaler, err := NewStandardScaler("scaler", ScalerArtifact{Kind: KindStandardScaler, Mean: mean, Scale: scale})
		require.NoError(t, err)
		clf, err := NewClassifier("clf", ClassifierArtifact{Kind: KindLogisticRegression, Coefficients: scale})
		require.NoError(t, err)
		model, err := NewModel(scaler, clf)
		require.NoError(t, err)

		for _, policy := range []string{config.FillPolicyZero, config.FillPolicyMean} {
			adapter, err := NewAdapter(model, policy, 0.5)
			require.NoError(t, err)
			assert.Len(t, adapter.FeatureVector(Input{Recency: 1, Age: 120, Satisfaction: 10}), n)
		}
	}
}

func TestAdapter_PredictLogistic(t *testing.T) {
	model := loadFixtureModel(t, testutil.ModelYAML)

	high := meanInput()
	high.Recency = 90

	tests := []struct {
		name      string
		policy    string
		input     Input
		wantProba float64
		wantLabel string
		wantClass int
	}{
		{"mean fill at means", config.FillPolicyMean, meanInput(), sigmoidOf(-0.2), LabelLowRisk, 0},
		{"zero fill skews the tail slots", config.FillPolicyZero, meanInput(), sigmoidOf(-0.75), LabelLowRisk, 0},
		{"recent inactivity is high risk", config.FillPolicyMean, high, sigmoidOf(3.0), LabelHighRisk, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := NewAdapter(model, tt.policy, config.DefaultRiskThreshold)
			require.NoError(t, err)

			got, err := adapter.Predict(tt.input)
			require.NoError(t, err)

			assert.InDelta(t, tt.wantProba, got.Probability, 1e-9)
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Equal(t, tt.wantClass, got.Class)
			assert.Equal(t, KindLogisticRegression, got.ModelKind)
			assert.Len(t, got.Features, 8)
		})
	}
}

func TestAdapter_PredictForest(t *testing.T) {
	model := loadFixtureModel(t, testutil.ForestYAML)
	adapter, err := NewAdapter(model, config.FillPolicyMean, config.DefaultRiskThreshold)
	require.NoError(t, err)

	got, err := adapter.Predict(meanInput())
	require.NoError(t, err)
	assert.InDelta(t, 0.45, got.Probability, 1e-9)
	assert.Equal(t, LabelLowRisk, got.Label)
	assert.Equal(t, 0, got.Class)

	risky := meanInput()
	risky.Recency = 90
	risky.Satisfaction = 2
	got, err = adapter.Predict(risky)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, got.Probability, 1e-9)
	assert.Equal(t, LabelHighRisk, got.Label)
	assert.Equal(t, 1, got.Class)
	assert.Equal(t, KindRandomForestClassifier, got.ModelKind)
}

func TestAdapter_ThresholdIsExclusive(t *testing.T) {
	scaler, err := NewStandardScaler("scaler", ScalerArtifact{Kind: KindStandardScaler, Mean: make([]float64, 6), Scale: []float64{1, 1, 1, 1, 1, 1}})
	require.NoError(t, err)
	clf, err := NewClassifier("clf", ClassifierArtifact{Kind: KindLogisticRegression, Coefficients: make([]float64, 6)})
	require.NoError(t, err)
	model, err := NewModel(scaler, clf)
	require.NoError(t, err)
	adapter, err := NewAdapter(model, config.FillPolicyZero, 0.5)
	require.NoError(t, err)

	got, err := adapter.Predict(Input{})
	require.NoError(t, err)

	assert.Equal(t, 0.5, got.Probability)
	assert.Equal(t, LabelLowRisk, got.Label)
}

func TestNewAdapter_Errors(t *testing.T) {
	model := loadFixtureModel(t, testutil.ModelYAML)

	_, err := NewAdapter(model, "median", 0.5)
	assert.Error(t, err)

	scaler, err := NewStandardScaler("scaler", ScalerArtifact{
		Kind:         KindStandardScaler,
		FeatureNames: []string{"Recency", "Frequency", "Monetary", "Age", "Tenure", "NPS"},
		Mean:         make([]float64, 6),
		Scale:        []float64{1, 1, 1, 1, 1, 1},
	})
	require.NoError(t, err)
	clf, err := NewClassifier("clf", ClassifierArtifact{Kind: KindLogisticRegression, Coefficients: make([]float64, 6)})
	require.NoError(t, err)
	named, err := NewModel(scaler, clf)
	require.NoError(t, err)

	_, err = NewAdapter(named, config.FillPolicyMean, 0.5)
	require.ErrorIs(t, err, apierrors.ErrInvalidArtifact)
	assert.Contains(t, err.Error(), "SatisfactionScore")
}

func TestAdapter_Info(t *testing.T) {
	adapter, err := NewAdapter(loadFixtureModel(t, testutil.ModelYAML), config.FillPolicyMean, 0.5)
	require.NoError(t, err)

	info := adapter.Info()

	assert.Equal(t, KindLogisticRegression, info.Kind)
	assert.Equal(t, 8, info.NumFeatures)
	assert.Equal(t, "Recency", info.FeatureNames[0])
	assert.Equal(t, config.FillPolicyMean, info.FillPolicy)
	assert.Equal(t, 0.5, info.Threshold)
}
