package web

// errors.go provides unified error responses for the API.
//
// Every error is:
//   - Logged with full technical detail and the request id (server-side)
//   - Returned to the client as the user message, action and code from
//     core.MapError
//
// statusFor picks the HTTP status from the sentinel errors the lower layers
// wrap.

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/logging"
	"github.com/JonMunkholm/roster/internal/service"
	"github.com/JonMunkholm/roster/internal/storage"
)

var errRateLimit = errors.New("rate limit exceeded")

// ErrorResponse is the JSON body of every API error. Code is stable and
// machine-readable; Message and Action are meant for people.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// fail responds with the status statusFor derives from err.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrBusy) {
		w.Header().Set("Retry-After", "1")
	}
	respondError(w, r, err, statusFor(err))
}

// respondError logs the technical error and writes the user-facing one.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	writeJSON(w, r, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, errRateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrNotLoaded):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, storage.ErrHeaderNotFound),
		errors.Is(err, storage.ErrNoSheets),
		errors.Is(err, storage.ErrEmptyFile),
		errors.Is(err, core.ErrMalformedRow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidInput):
		if core.MapError(err).Code == "ROS002" {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, os.ErrNotExist):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
