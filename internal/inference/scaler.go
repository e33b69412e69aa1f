package inference

import (
	"fmt"

	apierrors "retailsmart/internal/errors"
)

// Transformer maps a raw feature vector into model space
type Transformer interface {
	Transform(x []float64) ([]float64, error)
	NumFeatures() int
}

// StandardScaler standardizes features as (x - mean) / scale
type StandardScaler struct {
	names []string
	mean  []float64
	scale []float64
}

// NewStandardScaler validates a ScalerArtifact. name identifies the artifact in errors.
func NewStandardScaler(name string, a ScalerArtifact) (*StandardScaler, error) {
	if a.Kind != KindStandardScaler {
		return nil, apierrors.NewModelError(name, fmt.Sprintf("unknown scaler kind %q", a.Kind))
	}
	if len(a.Mean) == 0 {
		return nil, apierrors.NewModelError(name, "mean is empty")
	}
	if len(a.Scale) != len(a.Mean) {
		return nil, apierrors.NewModelError(name,
			fmt.Sprintf("scale has %d values, mean has %d", len(a.Scale), len(a.Mean)))
	}
	if len(a.FeatureNames) > 0 && len(a.FeatureNames) != len(a.Mean) {
		return nil, apierrors.NewModelError(name,
			fmt.Sprintf("feature_names has %d entries, mean has %d", len(a.FeatureNames), len(a.Mean)))
	}
	for i, s := range a.Scale {
		if s == 0 {
			return nil, apierrors.NewModelError(name, fmt.Sprintf("scale[%d] is zero", i))
		}
	}

	return &StandardScaler{names: a.FeatureNames, mean: a.Mean, scale: a.Scale}, nil
}

// Transform standardizes x
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.mean), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

// NumFeatures returns the expected vector length
func (s *StandardScaler) NumFeatures() int {
	return len(s.mean)
}

// FeatureNames returns the declared feature names, if any
func (s *StandardScaler) FeatureNames() []string {
	return s.names
}

// Means returns the per-feature training means
func (s *StandardScaler) Means() []float64 {
	return s.mean
}
