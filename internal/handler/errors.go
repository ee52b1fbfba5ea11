package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/matchpoint/internal/domain"
)

const msgInternal = "An unexpected error occurred. Please try again."

// writeServiceError maps a service error to its HTTP status. Errors that
// match no sentinel are logged under op and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "An account with that email already exists.")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
	case errors.Is(err, domain.ErrMissingToken):
		writeError(w, http.StatusUnauthorized, "Authorization token required.")
	case errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusForbidden, "Invalid or expired token.")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found.")
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// validationMessage strips the sentinel prefix from a wrapped
// ErrInvalidInput, leaving the human-readable reason.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
	if msg == "" || msg == domain.ErrInvalidInput.Error() {
		return "Invalid input."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
