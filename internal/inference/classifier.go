package inference

import (
	"fmt"
	"math"

	apierrors "retailsmart/internal/errors"
)

// Classifier is a pre-fit binary classifier
type Classifier interface {
	// Predict returns the most probable class label
	Predict(x []float64) (int, error)
	// PredictProba returns one probability per class, in class order
	PredictProba(x []float64) ([]float64, error)
	// NumFeatures returns the expected vector length, or 0 if the artifact does not declare one
	NumFeatures() int
	Kind() string
}

var defaultClasses = []int{0, 1}

// NewClassifier validates a ClassifierArtifact and returns the matching Classifier
func NewClassifier(name string, a ClassifierArtifact) (Classifier, error) {
	classes := a.Classes
	if len(classes) == 0 {
		classes = defaultClasses
	}
	if len(classes) != 2 {
		return nil, apierrors.NewModelError(name, fmt.Sprintf("expected 2 classes, got %d", len(classes)))
	}
	if len(a.FeatureNames) > 0 && a.NumFeatures > 0 && len(a.FeatureNames) != a.NumFeatures {
		return nil, apierrors.NewModelError(name,
			fmt.Sprintf("feature_names has %d entries, n_features is %d", len(a.FeatureNames), a.NumFeatures))
	}

	switch a.Kind {
	case KindLogisticRegression:
		return newLogisticRegression(name, a, classes)
	case KindRandomForestClassifier:
		return newRandomForest(name, a, classes)
	default:
		return nil, apierrors.NewModelError(name, fmt.Sprintf("unknown classifier kind %q", a.Kind))
	}
}

// FeatureNamer is implemented by classifiers whose artifact declares feature names
type FeatureNamer interface {
	FeatureNames() []string
}

// LogisticRegression computes sigmoid(w·x + b)
type LogisticRegression struct {
	names     []string
	classes   []int
	coef      []float64
	intercept float64
}

func newLogisticRegression(name string, a ClassifierArtifact, classes []int) (*LogisticRegression, error) {
	if len(a.Coefficients) == 0 {
		return nil, apierrors.NewModelError(name, "coefficients are empty")
	}
	if len(a.FeatureNames) > 0 && len(a.FeatureNames) != len(a.Coefficients) {
		return nil, apierrors.NewModelError(name,
			fmt.Sprintf("feature_names has %d entries, coefficients has %d", len(a.FeatureNames), len(a.Coefficients)))
	}
	if a.NumFeatures > 0 && a.NumFeatures != len(a.Coefficients) {
		return nil, apierrors.NewModelError(name,
			fmt.Sprintf("n_features is %d, coefficients has %d", a.NumFeatures, len(a.Coefficients)))
	}
	return &LogisticRegression{names: a.FeatureNames, classes: classes, coef: a.Coefficients, intercept: a.Intercept}, nil
}

// PredictProba returns [P(class 0), P(class 1)]
func (m *LogisticRegression) PredictProba(x []float64) ([]float64, error) {
	if len(x) != len(m.coef) {
		return nil, fmt.Errorf("model expects %d features, got %d", len(m.coef), len(x))
	}
	z := m.intercept
	for i, w := range m.coef {
		z += w * x[i]
	}
	p := sigmoid(z)
	return []float64{1 - p, p}, nil
}

// Predict returns the class with the higher probability
func (m *LogisticRegression) Predict(x []float64) (int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return m.classes[argmax(proba)], nil
}

func (m *LogisticRegression) NumFeatures() int       { return len(m.coef) }
func (m *LogisticRegression) Kind() string           { return KindLogisticRegression }
func (m *LogisticRegression) FeatureNames() []string { return m.names }

// RandomForest averages the normalized leaf distributions of its trees
type RandomForest struct {
	names       []string
	classes     []int
	numFeatures int
	trees       []TreeArtifact
	maxFeature  int
}

func newRandomForest(name string, a ClassifierArtifact, classes []int) (*RandomForest, error) {
	if len(a.Trees) == 0 {
		return nil, apierrors.NewModelError(name, "trees are empty")
	}

	maxFeature := -1
	trees := make([]TreeArtifact, len(a.Trees))
	for t, tree := range a.Trees {
		if len(tree.Nodes) == 0 {
			return nil, apierrors.NewModelError(name, fmt.Sprintf("tree %d has no nodes", t))
		}
		nodes := make([]NodeArtifact, len(tree.Nodes))
		for i, node := range tree.Nodes {
			if node.Leaf {
				dist, err := normalize(node.Value, len(classes))
				if err != nil {
					return nil, apierrors.NewModelError(name, fmt.Sprintf("tree %d node %d: %v", t, i, err))
				}
				node.Value = dist
				nodes[i] = node
				continue
			}
			// Children must follow their parent so that traversal terminates
			if node.Left <= i || node.Left >= len(tree.Nodes) || node.Right <= i || node.Right >= len(tree.Nodes) {
				return nil, apierrors.NewModelError(name,
					fmt.Sprintf("tree %d node %d: child index out of range (left %d, right %d, nodes %d)",
						t, i, node.Left, node.Right, len(tree.Nodes)))
			}
			if node.Feature < 0 {
				return nil, apierrors.NewModelError(name, fmt.Sprintf("tree %d node %d: negative feature index", t, i))
			}
			maxFeature = max(maxFeature, node.Feature)
			nodes[i] = node
		}
		trees[t] = TreeArtifact{Nodes: nodes}
	}

	numFeatures := a.NumFeatures
	if numFeatures == 0 {
		numFeatures = len(a.FeatureNames)
	}
	if numFeatures > 0 && maxFeature >= numFeatures {
		return nil, apierrors.NewModelError(name,
			fmt.Sprintf("feature index %d out of range for %d features", maxFeature, numFeatures))
	}

	return &RandomForest{
		names:       a.FeatureNames,
		classes:     classes,
		numFeatures: numFeatures,
		trees:       trees,
		maxFeature:  maxFeature,
	}, nil
}

// PredictProba returns the mean class distribution over all trees
func (m *RandomForest) PredictProba(x []float64) ([]float64, error) {
	if m.numFeatures > 0 && len(x) != m.numFeatures {
		return nil, fmt.Errorf("model expects %d features, got %d", m.numFeatures, len(x))
	}
	if m.maxFeature >= len(x) {
		return nil, fmt.Errorf("model reads feature %d, vector has %d", m.maxFeature, len(x))
	}

	proba := make([]float64, len(m.classes))
	for _, tree := range m.trees {
		leaf := route(tree, x)
		for c, v := range leaf.Value {
			proba[c] += v
		}
	}
	for c := range proba {
		proba[c] /= float64(len(m.trees))
	}
	return proba, nil
}

// Predict returns the class with the highest mean probability
func (m *RandomForest) Predict(x []float64) (int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return m.classes[argmax(proba)], nil
}

func (m *RandomForest) NumFeatures() int       { return m.numFeatures }
func (m *RandomForest) Kind() string           { return KindRandomForestClassifier }
func (m *RandomForest) FeatureNames() []string { return m.names }

// MaxFeature returns the highest feature index any split reads
func (m *RandomForest) MaxFeature() int { return m.maxFeature }

// route walks a validated tree from the root; x[feature] <= threshold goes left
func route(tree TreeArtifact, x []float64) NodeArtifact {
	i := 0
	for {
		node := tree.Nodes[i]
		if node.Leaf {
			return node
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

func normalize(value []float64, classes int) ([]float64, error) {
	if len(value) != classes {
		return nil, fmt.Errorf("leaf has %d values, expected %d", len(value), classes)
	}
	total := 0.0
	for _, v := range value {
		if v < 0 || math.IsNaN(v) {
			return nil, fmt.Errorf("leaf value %v is negative or NaN", v)
		}
		total += v
	}
	if total == 0 {
		return nil, fmt.Errorf("leaf values sum to zero")
	}
	dist := make([]float64, len(value))
	for i, v := range value {
		dist[i] = v / total
	}
	return dist, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func argmax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
