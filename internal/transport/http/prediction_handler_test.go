package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "retailsmart/internal/errors"
	v1 "retailsmart/pkg/contracts/api/v1"
	"retailsmart/pkg/contracts/domain"
)

const validPrediction = `{"recency":30,"frequency":5,"monetary":500,"age":35,"tenure":12,"satisfaction":7}`

func TestPredictionHandler_Predict(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockPredictionService)
		wantStatus int
		validate   func(*testing.T, map[string]interface{})
	}{
		{
			name: "valid request",
			body: validPrediction,
			setupMock: func(m *MockPredictionService) {
				m.On("Predict", mock.Anything, mock.MatchedBy(func(req v1.PredictionRequest) bool {
					return req.Recency != nil && *req.Recency == 30 && *req.Satisfaction == 7
				})).Return(domain.Prediction{Probability: 0.45, Label: "Low Risk", ModelKind: "logistic"}, nil)
			},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, body map[string]interface{}) {
				data := body["data"].(map[string]interface{})
				assert.Equal(t, "Low Risk", data["label"])
				assert.Equal(t, 0.45, data["probability"])
			},
		},
		{
			name:       "missing field",
			body:       `{"recency":30,"frequency":5,"monetary":500,"age":35,"tenure":12}`,
			setupMock:  func(m *MockPredictionService) {},
			wantStatus: http.StatusBadRequest,
			validate: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, apierrors.TypeValidation, body["type"])
				errs := body["errors"].([]interface{})
				require.Len(t, errs, 1)
				assert.Equal(t, "satisfaction", errs[0].(map[string]interface{})["field"])
			},
		},
		{
			name:       "out of range",
			body:       `{"recency":30,"frequency":5,"monetary":500,"age":200,"tenure":12,"satisfaction":7}`,
			setupMock:  func(m *MockPredictionService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"recency":`,
			setupMock:  func(m *MockPredictionService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "model missing",
			body: validPrediction,
			setupMock: func(m *MockPredictionService) {
				m.On("Predict", mock.Anything, mock.Anything).Return(domain.Prediction{},
					apierrors.NewNotFoundError("churn model", apierrors.ErrArtifactUnavailable))
			},
			wantStatus: http.StatusNotFound,
			validate: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, apierrors.TypeArtifactUnavailable, body["type"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockPredictionService)
			tt.setupMock(svc)

			rec := serve(newTestRouter(t, nil, svc), http.MethodPost, "/api/predict", strings.NewReader(tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.validate != nil {
				tt.validate(t, decodeBody(t, rec))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestPredictionHandler_GetModelInfo(t *testing.T) {
	svc := new(MockPredictionService)
	svc.On("Info", mock.Anything).Return(domain.ModelInfo{
		Kind:        "logistic",
		NumFeatures: 8,
		FillPolicy:  "mean",
		Threshold:   0.5,
	}, nil)

	rec := serve(newTestRouter(t, nil, svc), http.MethodGet, "/api/model", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, 8.0, data["num_features"])
	assert.Equal(t, "mean", data["fill_policy"])
}
