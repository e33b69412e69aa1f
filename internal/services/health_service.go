package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"retailsmart/internal/dataset"
)

// Service health states
const (
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusDegraded = "degraded"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	repoURL   string
	buildTime string
	buildID   string
	loader    *dataset.Loader
	model     ModelChecker
	exportDir string
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// HealthDeps are the components a readiness check probes. Any may be nil.
type HealthDeps struct {
	Loader    *dataset.Loader
	Model     ModelChecker
	ExportDir string
}

// NewHealthService creates a new health service with build information
func NewHealthService(version, repoURL, buildTime, buildID string, deps HealthDeps, logger *slog.Logger) *HealthService {
	// Ensure we have a logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("repo_url", repoURL),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID))

	return &HealthService{
		version:   version,
		repoURL:   repoURL,
		buildTime: buildTime,
		buildID:   buildID,
		loader:    deps.Loader,
		model:     deps.Model,
		exportDir: deps.ExportDir,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status. The primary dataset gates
// readiness; a missing model only degrades it.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	dataHealth := hs.checkDataHealth(ctx)
	status.Services["dataset"] = dataHealth
	status.Services["model"] = hs.checkModelHealth(ctx)
	status.Services["exports"] = hs.checkExportHealth()

	if dataHealth.Status != StatusReady {
		status.Status = StatusNotReady
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"repo_url":     hs.repoURL,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	// Include build info if available
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}

	return result
}

// checkDataHealth checks that a primary dataset tier loads
func (hs *HealthService) checkDataHealth(ctx context.Context) ServiceHealth {
	if hs.loader == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "dataset loader not initialized"}
	}

	bundle, err := hs.loader.Bundle(ctx)
	if err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("Dataset error: %v", err),
		}
	}

	stats := hs.loader.Cache().Stats()
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("Loaded from %s (%d cached files)", bundle.Source, stats.Entries),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

// checkModelHealth checks the churn model artifacts
func (hs *HealthService) checkModelHealth(ctx context.Context) ServiceHealth {
	if hs.model == nil || !hs.model.Available(ctx) {
		return ServiceHealth{Status: StatusDegraded, Message: "churn model unavailable"}
	}
	return ServiceHealth{Status: StatusReady, Message: "churn model loaded"}
}

// checkExportHealth checks that the export directory is writable
func (hs *HealthService) checkExportHealth() ServiceHealth {
	if hs.exportDir == "" {
		return ServiceHealth{Status: StatusDegraded, Message: "export directory not configured"}
	}

	if err := os.MkdirAll(hs.exportDir, 0755); err != nil {
		return ServiceHealth{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("Cannot create export directory: %v", err),
		}
	}

	probe, err := os.CreateTemp(hs.exportDir, ".probe-*")
	if err != nil {
		return ServiceHealth{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("Cannot write to export directory: %v", err),
		}
	}
	probe.Close()
	os.Remove(probe.Name())

	return ServiceHealth{Status: StatusReady, Message: filepath.Clean(hs.exportDir)}
}
