package inference

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	apierrors "retailsmart/internal/errors"
)

// Artifact kinds
const (
	KindStandardScaler         = "StandardScaler"
	KindLogisticRegression     = "LogisticRegression"
	KindRandomForestClassifier = "RandomForestClassifier"
)

// ScalerArtifact is the serialized form of a StandardScaler
type ScalerArtifact struct {
	Kind         string    `yaml:"kind" json:"kind"`
	FeatureNames []string  `yaml:"feature_names" json:"feature_names"`
	Mean         []float64 `yaml:"mean" json:"mean"`
	Scale        []float64 `yaml:"scale" json:"scale"`
}

// ClassifierArtifact is the serialized form of a binary classifier
type ClassifierArtifact struct {
	Kind         string         `yaml:"kind" json:"kind"`
	Classes      []int          `yaml:"classes" json:"classes"`
	FeatureNames []string       `yaml:"feature_names" json:"feature_names"`
	NumFeatures  int            `yaml:"n_features" json:"n_features"`
	Coefficients []float64      `yaml:"coefficients" json:"coefficients"`
	Intercept    float64        `yaml:"intercept" json:"intercept"`
	Trees        []TreeArtifact `yaml:"trees" json:"trees"`
}

// TreeArtifact is one decision tree stored as a flat node list rooted at 0
type TreeArtifact struct {
	Nodes []NodeArtifact `yaml:"nodes" json:"nodes"`
}

// NodeArtifact is a split node or, when Leaf is set, a class distribution
type NodeArtifact struct {
	Feature   int       `yaml:"feature" json:"feature"`
	Threshold float64   `yaml:"threshold" json:"threshold"`
	Left      int       `yaml:"left" json:"left"`
	Right     int       `yaml:"right" json:"right"`
	Leaf      bool      `yaml:"leaf" json:"leaf"`
	Value     []float64 `yaml:"value" json:"value"`
}

// decodeFile unmarshals a YAML or JSON artifact chosen by file extension
func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return apierrors.NewModelError(name, fmt.Sprintf("invalid YAML: %v", err))
		}
	case ".json":
		if err := json.Unmarshal(data, v); err != nil {
			return apierrors.NewModelError(name, fmt.Sprintf("invalid JSON: %v", err))
		}
	default:
		return apierrors.NewModelError(name, "unsupported artifact format, expected .yaml, .yml or .json")
	}
	return nil
}

// LoadScaler reads and validates a scaler artifact
func LoadScaler(path string) (*StandardScaler, error) {
	var a ScalerArtifact
	if err := decodeFile(path, &a); err != nil {
		return nil, err
	}
	return NewStandardScaler(filepath.Base(path), a)
}

// LoadClassifier reads and validates a classifier artifact
func LoadClassifier(path string) (Classifier, error) {
	var a ClassifierArtifact
	if err := decodeFile(path, &a); err != nil {
		return nil, err
	}
	return NewClassifier(filepath.Base(path), a)
}
