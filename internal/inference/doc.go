// Package inference runs single-record churn predictions against pre-fit
// model artifacts.
//
// Artifacts are YAML or JSON documents describing a StandardScaler and a
// LogisticRegression or RandomForestClassifier. They are validated when
// loaded and exposed through the Transformer and Classifier interfaces, so a
// malformed artifact fails at load time rather than at prediction time.
package inference
