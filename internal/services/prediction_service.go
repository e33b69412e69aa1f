package services

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"retailsmart/internal/config"
	"retailsmart/internal/dataset"
	apierrors "retailsmart/internal/errors"
	"retailsmart/internal/inference"
	"retailsmart/internal/infrastructure"
	v1 "retailsmart/pkg/contracts/api/v1"
	"retailsmart/pkg/contracts/domain"
)

// Cache kinds of the model artifacts
const (
	KindScaler     = "scaler"
	KindClassifier = "classifier"
)

// PredictionService runs single-record churn inference against the trained
// model artifacts
type PredictionService struct {
	cache      *dataset.Cache
	scalerPath string
	modelPath  string
	fillPolicy string
	threshold  float64
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
}

// NewPredictionService creates a prediction service reading the artifacts of
// layout through cache. metrics may be nil.
func NewPredictionService(layout config.Layout, cache *dataset.Cache, inf config.InferenceConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *PredictionService {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = dataset.NewCache(nil)
	}

	logger.Info("PredictionService initialized",
		slog.String("scaler", layout.ScalerArtifact),
		slog.String("model", layout.ModelArtifact),
		slog.String("fill_policy", inf.FillPolicy),
		slog.Float64("threshold", inf.Threshold))

	return &PredictionService{
		cache:      cache,
		scalerPath: layout.ScalerArtifact,
		modelPath:  layout.ModelArtifact,
		fillPolicy: inf.FillPolicy,
		threshold:  inf.Threshold,
		metrics:    metrics,
		logger:     logger,
	}
}

// adapter loads both artifacts through the cache and validates them together.
// Each artifact is re-read when its modification time changes.
func (s *PredictionService) adapter(ctx context.Context) (*inference.Adapter, error) {
	scaler, err := dataset.Fetch(ctx, s.cache, KindScaler, s.scalerPath, inference.LoadScaler)
	if err != nil {
		return nil, s.artifactError(s.scalerPath, err)
	}
	clf, err := dataset.Fetch(ctx, s.cache, KindClassifier, s.modelPath, inference.LoadClassifier)
	if err != nil {
		return nil, s.artifactError(s.modelPath, err)
	}

	model, err := inference.NewModel(scaler, clf)
	if err != nil {
		return nil, err
	}
	return inference.NewAdapter(model, s.fillPolicy, s.threshold)
}

func (s *PredictionService) artifactError(path string, err error) error {
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return apierrors.NewNotFoundError("model", apierrors.ErrArtifactUnavailable).
		WithContext("artifact", "model").
		WithContext("path", path)
}

// Available reports whether the model loads and validates
func (s *PredictionService) Available(ctx context.Context) bool {
	_, err := s.adapter(ctx)
	if err != nil && !errors.Is(err, apierrors.ErrArtifactUnavailable) {
		s.logger.WarnContext(ctx, "Churn model unusable", slog.String("error", err.Error()))
	}
	return err == nil
}

// Info describes the loaded model
func (s *PredictionService) Info(ctx context.Context) (domain.ModelInfo, error) {
	a, err := s.adapter(ctx)
	if err != nil {
		return domain.ModelInfo{}, err
	}
	return a.Info(), nil
}

// Predict returns the churn probability and risk label for one customer.
// The request must already be validated.
func (s *PredictionService) Predict(ctx context.Context, req v1.PredictionRequest) (domain.Prediction, error) {
	a, err := s.adapter(ctx)
	if err != nil {
		return domain.Prediction{}, err
	}

	in := inference.Input{
		Recency:      *req.Recency,
		Frequency:    *req.Frequency,
		Monetary:     *req.Monetary,
		Age:          *req.Age,
		Tenure:       *req.Tenure,
		Satisfaction: *req.Satisfaction,
	}

	start := time.Now()
	pred, err := a.Predict(in)
	if err != nil {
		return domain.Prediction{}, apierrors.NewAppError(apierrors.ErrTypeModel, "prediction failed", err)
	}
	duration := time.Since(start)
	s.metrics.RecordPrediction(ctx, pred.Label, duration)

	s.logger.InfoContext(ctx, "Churn prediction served",
		slog.Float64("probability", pred.Probability),
		slog.String("label", pred.Label),
		slog.String("model_kind", pred.ModelKind),
		slog.Duration("duration", duration))
	return pred, nil
}
