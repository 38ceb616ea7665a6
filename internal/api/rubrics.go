package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kestrelvoice/callaudit/internal/rubric"
	"github.com/kestrelvoice/callaudit/internal/store"
)

type createRubricRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Criteria    string `json:"criteria"`
}

type rubricResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Criteria    string    `json:"criteria"`
	Active      bool      `json:"active"`
}

func toRubricResponse(r rubric.Rubric) rubricResponse {
	return rubricResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Criteria:    r.Criteria,
		Active:      r.Active,
	}
}

// listRubrics handles GET /api/v1/rubrics
func (s *Server) listRubrics(w http.ResponseWriter, r *http.Request) {
	rubrics, err := s.store.ListActiveRubrics(r.Context())
	if err != nil {
		s.logger.Error("list rubrics failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "could not list rubrics")
		return
	}

	out := make([]rubricResponse, 0, len(rubrics))
	for _, rb := range rubrics {
		out = append(out, toRubricResponse(rb))
	}
	writeJSON(w, http.StatusOK, out)
}

// createRubric handles POST /api/v1/rubrics
func (s *Server) createRubric(w http.ResponseWriter, r *http.Request) {
	var req createRubricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Criteria = strings.TrimSpace(req.Criteria)
	if req.Name == "" || req.Criteria == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", "name and criteria are required")
		return
	}

	id, err := s.store.CreateRubric(r.Context(), req.Name, req.Description, req.Criteria)
	if err != nil {
		s.logger.Error("create rubric failed", "name", req.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "could not create rubric")
		return
	}

	writeJSON(w, http.StatusCreated, rubricResponse{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Criteria:    req.Criteria,
		Active:      true,
	})
}

// deactivateRubric handles DELETE /api/v1/rubrics/{id}. Rubrics are never
// deleted; existing verdicts keep referencing them.
func (s *Server) deactivateRubric(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_rubric_id", "rubric id must be a UUID")
		return
	}

	if err := s.store.DeactivateRubric(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrRubricNotFound) {
			writeError(w, http.StatusNotFound, "rubric_not_found", "no rubric with that id")
			return
		}
		s.logger.Error("deactivate rubric failed", "rubric_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "could not deactivate rubric")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
