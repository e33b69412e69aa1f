package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	apierrors "retailsmart/internal/errors"
	apimw "retailsmart/internal/middleware"
	v1 "retailsmart/pkg/contracts/api/v1"
)

// PredictionHandler serves model metadata and single-record predictions
type PredictionHandler struct {
	service      PredictionServiceInterface
	validator    *apimw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(service PredictionServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PredictionHandler {
	return &PredictionHandler{
		service:      service,
		validator:    apimw.NewValidationMiddleware(logger, errorHandler),
		logger:       logger.With(slog.String("component", "prediction_handler")),
		errorHandler: errorHandler,
	}
}

// GetModelInfo handles GET /api/model
func (h *PredictionHandler) GetModelInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, info)
}

// Predict handles POST /api/predict
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req v1.PredictionRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	prediction, err := h.service.Predict(r.Context(), req)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Prediction failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, prediction)
}
