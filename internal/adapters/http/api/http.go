// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/pcdmatch/internal/apperr"
	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/internal/domain/types"
	"github.com/okian/pcdmatch/pkg/logger"
)

// Route patterns. They double as the endpoint label of HTTP metrics.
const (
	routeMatches = "GET /candidates/{candidateId}/matches"
	routeHealth  = "GET /healthz"
	routeReady   = "GET /readyz"
	routeMetrics = "GET /metrics"
	routeStats   = "GET /stats"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// MatchForCandidate ranks jobs for a candidate. A nil threshold means
	// the configured default.
	MatchForCandidate(ctx context.Context, id model.CandidateID, threshold *float64) ([]types.Match, error)
}

// ReadinessChecker reports whether the backing store can serve requests.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger used for failed requests.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReadiness sets the check behind /readyz. Without one the route
// always reports ready.
func WithReadiness(r ReadinessChecker) Option {
	return func(s *Server) {
		s.readiness = r
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	matchesHandler *MatchesHandler
	logger         logger.Logger
	readiness      ReadinessChecker
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler(s.readiness, s.logger)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.matchesHandler = NewMatchesHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc(routeMatches, chain(s.matchesHandler.HandleGetMatches, routeMatches))
	mux.HandleFunc(routeHealth, chain(s.healthHandler.HandleHealth, routeHealth))
	mux.HandleFunc(routeReady, chain(s.healthHandler.HandleReady, routeReady))
	mux.HandleFunc(routeMetrics, s.healthHandler.HandleMetrics)
	mux.HandleFunc(routeStats, chain(s.statsHandler.HandleStats, routeStats))
}

func chain(h http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(h, endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeAppError maps an error kind to a status. Server errors carry only the
// status text.
func writeAppError(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	fields := []logger.Field{logger.String("request_id", RequestIDFrom(ctx)), logger.Error(err)}

	switch apperr.KindOf(err) {
	case apperr.ErrValidation:
		log.Warn(ctx, "rejected request", fields...)
		writeError(w, http.StatusBadRequest, "bad_request", cause(err, ErrBadRequest))
	case apperr.ErrNotFound:
		log.Warn(ctx, "candidate not found", fields...)
		writeError(w, http.StatusNotFound, "not_found", errors.New("candidate not found"))
	case apperr.ErrForbidden:
		log.Warn(ctx, "candidate inactive", fields...)
		writeError(w, http.StatusForbidden, "forbidden", errors.New("candidate account is inactive"))
	default:
		if errors.Is(err, context.DeadlineExceeded) {
			log.Error(ctx, "match request timed out", fields...)
		} else {
			log.Error(ctx, "match request failed", fields...)
		}
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// cause returns the innermost error of an apperr chain, or fallback.
func cause(err, fallback error) error {
	var ae *apperr.Error
	for errors.As(err, &ae) {
		if ae.Err == nil {
			return fallback
		}
		err = ae.Err
	}
	if err == nil {
		return fallback
	}
	return err
}
