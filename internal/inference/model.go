package inference

import (
	"fmt"
	"strings"

	apierrors "retailsmart/internal/errors"
)

// Model pairs a scaler with the classifier trained on its output
type Model struct {
	Scaler       Transformer
	Classifier   Classifier
	FeatureNames []string
}

// NewModel checks that scaler and classifier agree on the feature vector.
// The vector must have room for every user field.
func NewModel(scaler Transformer, clf Classifier) (*Model, error) {
	n := scaler.NumFeatures()
	if n < len(UserFeatures) {
		return nil, apierrors.NewModelError("model",
			fmt.Sprintf("artifact expects %d features, at least %d are required", n, len(UserFeatures)))
	}
	if clf.NumFeatures() > 0 && clf.NumFeatures() != n {
		return nil, apierrors.NewModelError("model",
			fmt.Sprintf("scaler expects %d features, classifier expects %d", n, clf.NumFeatures()))
	}
	if forest, ok := clf.(*RandomForest); ok && forest.MaxFeature() >= n {
		return nil, apierrors.NewModelError("model",
			fmt.Sprintf("classifier reads feature %d, scaler has %d", forest.MaxFeature(), n))
	}

	scalerNames := featureNames(scaler)
	modelNames := featureNames(clf)
	if len(scalerNames) > 0 && len(modelNames) > 0 && !equalFoldAll(scalerNames, modelNames) {
		return nil, apierrors.NewModelError("model", "scaler and classifier feature_names differ")
	}

	names := scalerNames
	if len(names) == 0 {
		names = modelNames
	}
	return &Model{Scaler: scaler, Classifier: clf, FeatureNames: names}, nil
}

// LoadModel reads both artifacts and validates them together
func LoadModel(scalerPath, modelPath string) (*Model, error) {
	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, err
	}
	clf, err := LoadClassifier(modelPath)
	if err != nil {
		return nil, err
	}
	return NewModel(scaler, clf)
}

// NumFeatures returns the length of the model's input vector
func (m *Model) NumFeatures() int {
	return m.Scaler.NumFeatures()
}

func featureNames(v interface{}) []string {
	if n, ok := v.(FeatureNamer); ok {
		return n.FeatureNames()
	}
	return nil
}

func equalFoldAll(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
