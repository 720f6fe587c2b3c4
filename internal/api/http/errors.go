package http

import (
	"errors"
	"net/http"

	"github.com/test-school/assessment-engine/internal/exam"
)

// writeError maps the engine's error taxonomy onto HTTP status codes.
// Anything unrecognized is a 500 (store failures are retryable by the
// caller).
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exam.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, exam.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, exam.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, exam.ErrAlreadySubmitted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, exam.ErrInsufficientPool):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
