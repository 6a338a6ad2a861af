package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-accounts-api/internal/domain"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrAlreadyVerified):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// httpError writes err with its mapped status. Server errors are logged and
// answered with a generic message.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg := "internal server error"
		if errors.Is(err, domain.ErrDelivery) {
			msg = "could not deliver verification"
		}
		writeError(w, status, msg)
		return
	}
	writeError(w, status, err.Error())
}
