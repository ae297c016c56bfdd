package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/pcdmatch/pkg/logger"
	"github.com/okian/pcdmatch/pkg/metrics"
)

const readinessTimeout = 2 * time.Second

// HealthHandler serves liveness, readiness and metrics.
type HealthHandler struct {
	metrics   http.Handler
	readiness ReadinessChecker
	logger    logger.Logger
}

// NewHealthHandler creates a new health handler. A nil readiness check
// always reports ready.
func NewHealthHandler(readiness ReadinessChecker, log logger.Logger) *HealthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &HealthHandler{
		metrics:   promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
		readiness: readiness,
		logger:    log,
	}
}

// HandleHealth handles GET /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReady handles GET /readyz.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if h.readiness != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := h.readiness.Ready(ctx); err != nil {
			h.logger.Warn(r.Context(), "not ready", logger.String("request_id", RequestIDFrom(r.Context())), logger.Error(err))
			writeError(w, http.StatusServiceUnavailable, "unavailable", errors.New("service not ready"))
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// HandleMetrics handles GET /metrics with the service's Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
