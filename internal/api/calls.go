package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kestrelvoice/callaudit/internal/analyzer"
	"github.com/kestrelvoice/callaudit/internal/verdict"
)

type feedbackResponse struct {
	CallID        uuid.UUID         `json:"call_id"`
	Score         int               `json:"score"`
	ScoreLabel    string            `json:"score_label"`
	Verdicts      []verdict.Verdict `json:"verdicts"`
	Positives     []string          `json:"positives"`
	Opportunities []string          `json:"opportunities"`
	CreatedAt     time.Time         `json:"created_at"`
}

// analyzeCall handles POST /api/v1/calls/{id}/analyze
func (s *Server) analyzeCall(w http.ResponseWriter, r *http.Request) {
	callID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_call_id", "call id must be a UUID")
		return
	}

	res, err := s.analyzer.AnalyzeCall(r.Context(), callID)
	switch {
	case errors.Is(err, analyzer.ErrCallNotFound):
		writeError(w, http.StatusNotFound, "call_not_found", "no call with that id")
		return
	case errors.Is(err, analyzer.ErrNoTranscript):
		writeError(w, http.StatusUnprocessableEntity, "no_transcript", "call has no transcript yet")
		return
	case errors.Is(err, analyzer.ErrNoActiveRubrics):
		writeError(w, http.StatusUnprocessableEntity, "no_active_rubrics", "no active rubrics configured")
		return
	case err != nil:
		s.logger.Error("analysis failed", "call_id", callID, "error", err)
		writeError(w, http.StatusInternalServerError, "analysis_failed", "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// getFeedback handles GET /api/v1/calls/{id}/feedback
func (s *Server) getFeedback(w http.ResponseWriter, r *http.Request) {
	callID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_call_id", "call id must be a UUID")
		return
	}

	row, err := s.store.GetFeedback(r.Context(), callID)
	if err != nil {
		s.logger.Error("get feedback failed", "call_id", callID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "could not load feedback")
		return
	}
	if row == nil {
		writeError(w, http.StatusNotFound, "feedback_not_found", "call has not been analyzed")
		return
	}

	writeJSON(w, http.StatusOK, feedbackResponse{
		CallID:        row.CallID,
		Score:         row.Score,
		ScoreLabel:    row.ScoreLabel,
		Verdicts:      row.Verdicts,
		Positives:     row.Positives,
		Opportunities: row.Opportunities,
		CreatedAt:     row.CreatedAt,
	})
}
