package handler

import (
	"errors"
	"net/http"

	"github.com/mparedes/draftroom/internal/domain"
)

// errorResponse is the JSON error body for every non-2xx response.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a structured error body with the given status.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// writeDomainError maps domain sentinels onto HTTP statuses. Business-rule
// rejections (locked, permission, empty lock) are expected, recoverable
// conditions — the draft stays in its last valid state and the client gets
// a reason, never a 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrPermission):
		writeError(w, http.StatusForbidden, "permission_denied", err.Error())
	case errors.Is(err, domain.ErrLocked):
		writeError(w, http.StatusConflict, "draft_locked", err.Error())
	case errors.Is(err, domain.ErrEmptyDraft):
		writeError(w, http.StatusUnprocessableEntity, "empty_draft", err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		s.log.ErrorContext(r.Context(), "internal error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
