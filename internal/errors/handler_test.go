package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailsmart/internal/shared/testutil"
)

func TestNewErrorHandler(t *testing.T) {
	for _, includeStack := range []bool{true, false} {
		t.Run(fmt.Sprintf("includeStack=%v", includeStack), func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)

			handler := NewErrorHandler(logger, includeStack)

			require.NotNil(t, handler)
			assert.Equal(t, includeStack, handler.includeStack)
			assert.NotNil(t, handler.logger)
		})
	}
}

func TestErrorHandler_HandleError(t *testing.T) {
	unavailable := NewStorageError("no dataset tier could be loaded", ErrDatasetUnavailable).
		WithContext(ContextRemediation, "Expected folder structure").
		WithContext(ContextAttempts, []string{"Phase 1 Cleaned Data: missing", "Raw Dataset Files: missing"})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantExt    []string
	}{
		{
			name:       "deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "dataset unavailable",
			err:        fmt.Errorf("overview: %w", unavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDatasetUnavailable,
			wantExt:    []string{ContextRemediation, ContextAttempts},
		},
		{
			name:       "artifact unavailable",
			err:        NewNotFoundError("forecast", ErrArtifactUnavailable).WithContext("artifact", "forecast"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeArtifactUnavailable,
			wantExt:    []string{"artifact"},
		},
		{
			name:       "missing column",
			err:        MissingColumnError("sales", "order_date", []string{"OrderDate", "order_date"}),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeSchemaMismatch,
			wantExt:    []string{"table", "column"},
		},
		{
			name:       "no churn column",
			err:        fmt.Errorf("churn: %w", ErrNoChurnColumn),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeSchemaMismatch,
		},
		{
			name:       "invalid artifact",
			err:        NewModelError("scaler.yaml", "scale[0] is zero"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeInvalidArtifact,
		},
		{
			name:       "unknown table",
			err:        fmt.Errorf("preview orders: %w", ErrUnknownTable),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "app validation",
			err:        NewAppValidationError("from must not be after to"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "api validation errors",
			err:        ErrValidation("age", "must be at most 120"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantExt:    []string{"errors", "error_code"},
		},
		{
			name:       "rate limit",
			err:        ErrRateLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			wantType:   TypeRateLimit,
		},
		{
			name:       "unknown error",
			err:        fmt.Errorf("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/dashboard/overview", nil)

			handler.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, ContentTypeProblem, w.Header().Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/dashboard/overview", body["instance"])
			assert.Contains(t, body, "trace_id")
			assert.NotContains(t, body, "stack")
			for _, key := range tt.wantExt {
				assert.Contains(t, body, key)
			}
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)
	w := httptest.NewRecorder()

	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, w.Body.Len())
	assert.Equal(t, 0, logs.Count())
}

func TestErrorHandler_LogLevels(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)
	r := httptest.NewRequest(http.MethodGet, "/api/model", nil)

	handler.HandleError(httptest.NewRecorder(), r, ErrNotFound)
	handler.HandleError(httptest.NewRecorder(), r, fmt.Errorf("unexpected"))

	assert.Len(t, logs.GetRecordsByLevel(slog.LevelWarn), 1)
	assert.Len(t, logs.GetRecordsByLevel(slog.LevelError), 1)
	assert.True(t, logs.ContainsAttr("component", "error_handler"))
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)
	w := httptest.NewRecorder()

	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("boom"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "stack")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)
	w := httptest.NewRecorder()

	handler.HandlePanic(w, httptest.NewRequest(http.MethodPost, "/api/predict", nil), "nil map")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "nil map", body["panic"])
	testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	handler.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/model", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "DELETE")
}
