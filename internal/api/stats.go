package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kestrelvoice/callaudit/internal/trends"
)

// parseSince reads an optional RFC 3339 "since" query parameter.
func parseSince(r *http.Request) (*time.Time, bool) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// statsOverview handles GET /api/v1/stats/overview
func (s *Server) statsOverview(w http.ResponseWriter, r *http.Request) {
	since, ok := parseSince(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_since", "since must be an RFC 3339 timestamp")
		return
	}

	overview, err := s.store.ScoreOverview(r.Context(), since)
	if err != nil {
		s.logger.Error("score overview failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "could not compute overview")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// statsTrends handles GET /api/v1/stats/trends
func (s *Server) statsTrends(w http.ResponseWriter, r *http.Request) {
	since, ok := parseSince(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_since", "since must be an RFC 3339 timestamp")
		return
	}

	minRate := 0.0
	if raw := r.URL.Query().Get("min_rate"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			writeError(w, http.StatusBadRequest, "invalid_min_rate", "min_rate must be between 0 and 1")
			return
		}
		minRate = v
	}

	minCalls := 0
	if raw := r.URL.Query().Get("min_calls"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "invalid_min_calls", "min_calls must be a non-negative integer")
			return
		}
		minCalls = v
	}

	detector := trends.NewDetector(s.store)
	slipping, err := detector.FindSlippingRubrics(r.Context(), since, minRate, minCalls)
	if err != nil {
		s.logger.Error("trend scan failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "could not compute trends")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trends": slipping,
		"count":  len(slipping),
	})
}
