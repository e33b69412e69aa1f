package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"retailsmart/internal/services"
	"retailsmart/internal/shared/testutil"
)

func TestHealthHandler_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantStatus int
	}{
		{"ready", services.StatusReady, http.StatusOK},
		{"degraded still serves", services.StatusDegraded, http.StatusOK},
		{"not ready", services.StatusNotReady, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			svc := new(MockHealthService)
			svc.On("ReadinessCheck", mock.Anything).Return(services.HealthStatus{
				Status:    tt.status,
				Timestamp: time.Now(),
			})

			h := NewHealthHandler(svc, logger)
			rec := serve(http.HandlerFunc(h.ReadinessCheck), http.MethodGet, "/api/health/ready", nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.status, decodeBody(t, rec)["status"])
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := new(MockHealthService)
	svc.On("Version").Return(map[string]interface{}{"version": "2.0.0"})

	h := NewHealthHandler(svc, logger)
	rec := serve(http.HandlerFunc(h.Version), http.MethodGet, "/api/version", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2.0.0", decodeBody(t, rec)["version"])
}
