package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kestrelvoice/callaudit/internal/analyzer"
	"github.com/kestrelvoice/callaudit/internal/rubric"
	"github.com/kestrelvoice/callaudit/internal/store"
)

// Store is the persistence surface the HTTP layer needs.
type Store interface {
	GetFeedback(ctx context.Context, callID uuid.UUID) (*store.FeedbackRow, error)
	ListActiveRubrics(ctx context.Context) ([]rubric.Rubric, error)
	CreateRubric(ctx context.Context, name, description, criteria string) (uuid.UUID, error)
	DeactivateRubric(ctx context.Context, id uuid.UUID) error
	ScoreOverview(ctx context.Context, since *time.Time) (*store.ScoreOverview, error)
	RubricFailureCounts(ctx context.Context, since *time.Time) ([]store.RubricFailureCount, error)
}

// CallAnalyzer runs the compliance pipeline for one call.
type CallAnalyzer interface {
	AnalyzeCall(ctx context.Context, callID uuid.UUID) (*analyzer.Result, error)
}

type Server struct {
	router   *chi.Mux
	port     int
	store    Store
	analyzer CallAnalyzer
	logger   *slog.Logger
}

func NewServer(port int, apiToken string, st Store, an CallAnalyzer, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		store:    st,
		analyzer: an,
		logger:   logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/status", s.status)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/calls/{id}/analyze", s.analyzeCall)
		r.Get("/calls/{id}/feedback", s.getFeedback)
		r.Get("/rubrics", s.listRubrics)
		r.Post("/rubrics", s.createRubric)
		r.Delete("/rubrics/{id}", s.deactivateRubric)
		r.Get("/stats/overview", s.statsOverview)
		r.Get("/stats/trends", s.statsTrends)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "callaudit",
		"status":  "running",
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": code, "message": msg})
}
