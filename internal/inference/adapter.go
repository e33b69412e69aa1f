package inference

import (
	"fmt"
	"strings"

	"retailsmart/internal/config"
	apierrors "retailsmart/internal/errors"
	"retailsmart/pkg/contracts/domain"
)

// Risk labels
const (
	LabelHighRisk = "High Risk"
	LabelLowRisk  = "Low Risk"
)

// UserFeatures are the feature names of the six form fields, in form order
var UserFeatures = []string{"Recency", "Frequency", "Monetary", "Age", "Tenure", "SatisfactionScore"}

// Input is one customer as entered in the prediction form
type Input struct {
	Recency      float64
	Frequency    float64
	Monetary     float64
	Age          float64
	Tenure       float64
	Satisfaction float64
}

// Values returns the fields in UserFeatures order
func (in Input) Values() []float64 {
	return []float64{in.Recency, in.Frequency, in.Monetary, in.Age, in.Tenure, in.Satisfaction}
}

// Meaner is implemented by transformers that know their training means
type Meaner interface {
	Means() []float64
}

// Adapter turns form input into the model's feature vector and runs the prediction
type Adapter struct {
	model      *Model
	slots      []int
	fill       []float64
	fillPolicy string
	threshold  float64
}

// NewAdapter places the user fields by feature name when the model declares
// names, otherwise in slots 0-5. Other slots are filled per fillPolicy.
func NewAdapter(model *Model, fillPolicy string, threshold float64) (*Adapter, error) {
	n := model.NumFeatures()

	slots := make([]int, len(UserFeatures))
	for i := range UserFeatures {
		slots[i] = i
	}
	if len(model.FeatureNames) > 0 {
		for i, feature := range UserFeatures {
			slots[i] = indexFold(model.FeatureNames, feature)
			if slots[i] < 0 {
				return nil, apierrors.NewModelError("model",
					fmt.Sprintf("feature_names has no %s feature", feature))
			}
		}
	}

	fill := make([]float64, n)
	switch fillPolicy {
	case config.FillPolicyZero:
	case config.FillPolicyMean:
		m, ok := model.Scaler.(Meaner)
		if !ok {
			return nil, apierrors.NewModelError("model", "mean fill requires a scaler with training means")
		}
		copy(fill, m.Means())
	default:
		return nil, apierrors.NewConfigError(fmt.Sprintf("unknown fill policy %q", fillPolicy), nil)
	}

	return &Adapter{model: model, slots: slots, fill: fill, fillPolicy: fillPolicy, threshold: threshold}, nil
}

// FeatureVector builds the raw feature vector for in. Its length always
// equals the model's feature count.
func (a *Adapter) FeatureVector(in Input) []float64 {
	x := make([]float64, len(a.fill))
	copy(x, a.fill)
	for i, v := range in.Values() {
		x[a.slots[i]] = v
	}
	return x
}

// Predict scales the feature vector and returns the positive-class probability
func (a *Adapter) Predict(in Input) (domain.Prediction, error) {
	x := a.FeatureVector(in)

	scaled, err := a.model.Scaler.Transform(x)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("transform features: %w", err)
	}
	proba, err := a.model.Classifier.PredictProba(scaled)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("predict probability: %w", err)
	}
	class, err := a.model.Classifier.Predict(scaled)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("predict class: %w", err)
	}

	p := proba[len(proba)-1]
	label := LabelLowRisk
	if p > a.threshold {
		label = LabelHighRisk
	}

	return domain.Prediction{
		Probability: p,
		Label:       label,
		Class:       class,
		Features:    x,
		ModelKind:   a.model.Classifier.Kind(),
	}, nil
}

// Info describes the model behind the adapter
func (a *Adapter) Info() domain.ModelInfo {
	return domain.ModelInfo{
		Kind:         a.model.Classifier.Kind(),
		NumFeatures:  a.model.NumFeatures(),
		FeatureNames: a.model.FeatureNames,
		FillPolicy:   a.fillPolicy,
		Threshold:    a.threshold,
	}
}

func indexFold(names []string, target string) int {
	for i, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), target) {
			return i
		}
	}
	return -1
}
