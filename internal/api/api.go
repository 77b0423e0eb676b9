// Package api exposes the session registry over HTTP+JSON. It is a thin
// adapter: all interview semantics live in the engine and registry.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mockboard/iv/internal/models"
	"github.com/mockboard/iv/internal/registry"
	"github.com/mockboard/iv/internal/roles"
	"github.com/mockboard/iv/internal/store"
)

// Server provides the REST API handlers.
type Server struct {
	registry *registry.Registry
	reports  store.Store
}

// NewServer creates a new API server. The reports store may be nil when
// persistence is not configured.
func NewServer(reg *registry.Registry, reports store.Store) *Server {
	return &Server{
		registry: reg,
		reports:  reports,
	}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/sessions", s.startSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}/question", s.currentQuestion)
	mux.HandleFunc("POST /api/v1/sessions/{id}/submit", s.submit)
	mux.HandleFunc("GET /api/v1/sessions/{id}/report", s.sessionReport)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", s.deleteSession)

	mux.HandleFunc("GET /api/v1/roles", s.listRoles)
	mux.HandleFunc("GET /api/v1/reports", s.listReports)
	mux.HandleFunc("GET /api/v1/reports/{id}", s.getReport)

	return corsMiddleware(logMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// startSessionRequest is the wire shape for creating a session.
type startSessionRequest struct {
	Category        string `json:"category"`
	Role            string `json:"role"`
	Difficulty      string `json:"difficulty"`
	NumQuestions    int    `json:"num_questions"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	category, err := roles.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	difficulty, err := roles.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := models.SessionConfig{
		Category:        category,
		Role:            req.Role,
		Difficulty:      difficulty,
		NumQuestions:    req.NumQuestions,
		DurationMinutes: req.DurationMinutes,
	}

	id, welcome, err := s.registry.Start(r.Context(), cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"session_id": id,
		"welcome":    welcome,
	})
}

func (s *Server) currentQuestion(w http.ResponseWriter, r *http.Request) {
	view, err := s.registry.Question(r.Context(), r.PathValue("id"))
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// submitRequest is the wire shape for a candidate action.
type submitRequest struct {
	Action string `json:"action"`
	Answer string `json:"answer"`
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	action, err := registry.ParseAction(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.registry.Submit(r.Context(), r.PathValue("id"), action, req.Answer)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) sessionReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.registry.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Remove(r.PathValue("id")); err != nil {
		writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, registry.ErrStillActive):
		writeError(w, http.StatusBadRequest, "interview still running")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// roleView is the wire shape of one category's roles.
type roleView struct {
	Category models.Category   `json:"category"`
	Roles    map[string]string `json:"roles"` // id -> display name
}

func (s *Server) listRoles(w http.ResponseWriter, _ *http.Request) {
	out := make([]roleView, 0, len(roles.Catalog))
	for _, category := range []models.Category{models.CategoryTechnical, models.CategoryNonTechnical} {
		view := roleView{Category: category, Roles: make(map[string]string)}
		for _, role := range roles.Catalog[category] {
			view.Roles[role] = roles.DisplayName(role)
		}
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeJSON(w, http.StatusOK, []*models.Report{})
		return
	}
	reports, err := s.reports.ListReports(r.Context(), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	rep, err := s.reports.GetReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
