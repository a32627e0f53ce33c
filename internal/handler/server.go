// Package handler implements the HTTP surface for Draftroom: a small JSON
// API for opening and persisting drafts, a command endpoint dispatching
// the collaborative mutations, and a websocket stream of outbound events.
// Handlers stay thin — every business rule lives in the draft engine.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mparedes/draftroom/internal/session"
)

// Server carries the handler dependencies. All endpoints are methods on it,
// split across files by concern (server.go, command.go, errors.go, ws.go).
type Server struct {
	manager *session.Manager
	log     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(manager *session.Manager, log *slog.Logger) *Server {
	return &Server{manager: manager, log: log}
}

// Routes returns the chi router for the full API surface.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.health)

	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", s.createDraft)
		r.Route("/{draftID}", func(r chi.Router) {
			r.Get("/", s.getDraft)
			r.Delete("/", s.deleteDraft)
			r.Post("/save", s.saveDraft)
			r.Post("/commands", s.command)
			r.Get("/events", s.events)
		})
	})

	return r
}

// createDraft handles POST /drafts. An explicit id in the body resumes or
// creates that draft; otherwise a fresh id is generated.
func (s *Server) createDraft(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	// An empty body is fine; only malformed JSON is rejected.
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}
	if body.ID == "" {
		body.ID = uuid.NewString()
	}

	sess, err := s.manager.Open(r.Context(), body.ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.Draft())
}

// getDraft handles GET /drafts/{draftID}, opening (or resuming) the
// session and returning its current snapshot.
func (s *Server) getDraft(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Open(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Draft())
}

// saveDraft handles POST /drafts/{draftID}/save, persisting the snapshot.
func (s *Server) saveDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Save(r.Context(), chi.URLParam(r, "draftID")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteDraft handles DELETE /drafts/{draftID}: the planning session is
// abandoned and its stored snapshot removed.
func (s *Server) deleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Drop(r.Context(), chi.URLParam(r, "draftID")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// health handles GET /healthz.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
