package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/pkg/logger"
)

// MatchesHandler serves a candidate's ranked job matches.
type MatchesHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies, log logger.Logger) *MatchesHandler {
	return &MatchesHandler{deps: deps, logger: log}
}

// HandleGetMatches handles GET /candidates/{candidateId}/matches?threshold=.
func (h *MatchesHandler) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	id, err := parseCandidateID(r.PathValue("candidateId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	var threshold *float64
	if raw, ok := r.URL.Query()["threshold"]; ok {
		v, err := parseThreshold(raw[0])
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		threshold = &v
	}

	matches, err := h.deps.MatchForCandidate(r.Context(), model.CandidateID(id), threshold)
	if err != nil {
		writeAppError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// parseCandidateID accepts only canonical positive decimals: no sign and no
// leading zeros.
func parseCandidateID(raw string) (int64, error) {
	if raw == "" || raw[0] < '1' || raw[0] > '9' {
		return 0, ErrInvalidCandidateID
	}
	for i := 1; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, ErrInvalidCandidateID
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidCandidateID
	}
	return id, nil
}

func parseThreshold(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 1 {
		return 0, ErrInvalidThreshold
	}
	return v, nil
}
