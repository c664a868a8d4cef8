package http

import (
	"net/http"

	apierrors "fishintel/internal/errors"
)

// MetricsHandler exposes the prometheus exporter, or a problem response
// when metrics are disabled
type MetricsHandler struct {
	exporter     http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler creates a new metrics handler; exporter may be nil
func NewMetricsHandler(exporter http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusServiceUnavailable,
			"SERVICE_UNAVAILABLE",
			"Metrics are disabled",
			"set FISH_TELEMETRY_ENABLED=true and FISH_TELEMETRY_METRIC_EXPORTER=prometheus",
		))
		return
	}
	h.exporter.ServeHTTP(w, r)
}
