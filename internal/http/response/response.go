// Package response writes JSON error bodies for requests rejected before
// they reach an API operation, in the same shape the operations use.
package response

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	domainerrors "github.com/listenupapp/listenup-library/internal/errors"
)

// ErrorBody is the JSON error shape shared with API operations.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// Error writes a domain error with its mapped status.
func Error(w http.ResponseWriter, err *domainerrors.Error, logger *slog.Logger) {
	JSON(w, err.HTTPStatus(), ErrorBody{
		Code:    string(err.Code),
		Message: err.Message,
		Details: err.Details,
	}, logger)
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, domainerrors.Unauthorized(message), logger)
}

// TooManyRequests writes a 429 response asking the client to retry after
// the given number of seconds.
func TooManyRequests(w http.ResponseWriter, retryAfter int, logger *slog.Logger) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	Error(w, domainerrors.ErrRateLimited, logger)
}

// InternalError writes a 500 response without leaking the cause.
func InternalError(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, domainerrors.Internal("internal server error"), logger)
}
