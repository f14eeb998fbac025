// Package httpx maps request failures onto the JSON error responses clients see.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"
)

// Sentinel errors shared by middleware and handlers.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrBadRequest      = errors.New("bad request")
)

// Messages returned to clients. Server errors never carry detail.
const (
	MsgUnauthorized = "unauthorized access"
	MsgForbidden    = "Forbidden access"
	MsgBadRequest   = "invalid request body"
	MsgServerError  = "Server Error"
)

// StatusOf returns the HTTP status and client message for err.
func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, MsgUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, MsgForbidden
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, MsgBadRequest
	default:
		return http.StatusInternalServerError, MsgServerError
	}
}

// RespondError writes the error response for err. Server errors are logged
// with their cause; the cause is not sent to the client.
func RespondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, msg := StatusOf(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	JSON(w, status, Message{Message: msg})
}
