// Package respond writes JSON responses and maps errors to HTTP statuses
// without leaking internal details.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker"

	"reviewhub/internal/common/pagination"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// headers are already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes {"error": msg} with the given status code.
func Error(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, ErrorBody{Error: msg})
}

// FromError maps err onto a response and returns the status it wrote:
//   - *pagination.RequestError: 400 with its message and machine-readable code
//   - open circuit breaker: 503
//   - anything else: 500 "internal server error", details logged sanitized
func FromError(w http.ResponseWriter, logger *slog.Logger, err error) int {
	if err == nil {
		return 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	var reqErr *pagination.RequestError
	switch {
	case errors.As(err, &reqErr):
		JSON(w, http.StatusBadRequest, ErrorBody{Error: reqErr.Message, Code: reqErr.Code})
		return http.StatusBadRequest
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		logger.Warn("data source unavailable", slog.String("error", SanitizeError(err)))
		w.Header().Set("Retry-After", "30")
		Error(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error("request timed out", slog.String("error", SanitizeError(err)))
		Error(w, http.StatusGatewayTimeout, "request timed out")
		return http.StatusGatewayTimeout
	default:
		logger.Error("internal server error", slog.String("error", SanitizeError(err)))
		Error(w, http.StatusInternalServerError, "internal server error")
		return http.StatusInternalServerError
	}
}
