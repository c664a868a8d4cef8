package services

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"fishintel/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	dataset   *DatasetService
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

// NewHealthService creates a health service. dataset may be nil, in which
// case readiness reports the dataset as not ready.
func NewHealthService(dataset *DatasetService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		dataset:   dataset,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck reports ready once a dataset has been published
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services:  make(map[string]interface{}),
	}

	dataset := hs.checkDatasetHealth(ctx)
	status.Services["dataset"] = dataset
	if dataset.Status != "ready" {
		status.Status = "not_ready"
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":          info.Version,
		"manifest_version": info.ManifestVersion,
		"build_time":       info.BuildTime,
		"git_commit":       info.GitCommit,
		"go_version":       info.GoVersion,
		"os":               info.OS,
		"arch":             info.Architecture,
		"uptime":           time.Since(hs.startTime).Seconds(),
		"start_time":       hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDatasetHealth(ctx context.Context) ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: "not_ready", Message: "dataset service not initialized"}
	}

	m, err := hs.dataset.Manifest(ctx)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, ErrDataNotPublished) {
			msg = "no dataset has been published yet"
		}
		return ServiceHealth{Status: "not_ready", Message: msg}
	}

	health := ServiceHealth{
		Status:  "ready",
		Message: "manifest " + m.Version + " published",
	}
	if last, ok := hs.dataset.LastPublished(ctx); ok {
		health.Uptime = time.Since(last).Round(time.Second).String()
	}
	return health
}
