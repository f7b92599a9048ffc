package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"tourbook/internal/auth"
	"tourbook/internal/core"
	"tourbook/internal/log"
	"tourbook/internal/settlement"
	"tourbook/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already sent, nothing left to do but log.
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondError maps a domain error to a status code and JSON body. Unknown
// errors become an opaque 500 so internals never leak to clients.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger := log.FromContext(r.Context())
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldError, err.Error(),
			log.FieldPath, r.URL.Path,
			log.FieldMethod, r.Method)
		msg = "internal server error"
	}
	respondJSON(w, status, errorResponse{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, settlement.ErrExpenseNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrSessionRevoked):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrEmailExists):
		return http.StatusConflict

	case errors.Is(err, auth.ErrPasswordTooWeak),
		errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, core.ErrEmptyTourName),
		errors.Is(err, core.ErrEmptyMemberName),
		errors.Is(err, core.ErrEmptyExpenseName),
		errors.Is(err, core.ErrTourNameTooLong),
		errors.Is(err, core.ErrExpenseNameTooLong),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrNegativePrice),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// errBadRequest wraps malformed request bodies.
var errBadRequest = errors.New("bad request")

func badRequest(detail string) error {
	return &badRequestError{detail: detail}
}

type badRequestError struct {
	detail string
}

func (e *badRequestError) Error() string { return e.detail }
func (e *badRequestError) Is(target error) bool {
	return target == errBadRequest
}

// decodeJSON parses the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid JSON body: " + err.Error())
	}
	return nil
}
