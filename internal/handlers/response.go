// Package handlers implements the HTTP handlers of the recommendation API.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/service"
)

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(ctx context.Context, w http.ResponseWriter, statusCode int, message string) {
	writeJSON(ctx, w, statusCode, ErrorResponse{Error: message})
}

// writeServiceError maps component errors to HTTP status codes.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		logger.WarnContext(ctx, "invalid request", "field", validationErr.Field, "error", err)
		writeError(ctx, w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, service.ErrInvalidInput):
		logger.WarnContext(ctx, "invalid request", "error", err)
		writeError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrExternalService):
		logger.ErrorContext(ctx, "external service error", "error", err)
		writeError(ctx, w, http.StatusBadGateway, "External service error")
	default:
		logger.ErrorContext(ctx, defaultMsg, "error", err)
		writeError(ctx, w, http.StatusInternalServerError, defaultMsg)
	}
}

// queryFloat parses an optional float query parameter. ok is false when absent.
func queryFloat(r *http.Request, name string) (v float64, ok bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, &service.ValidationError{Field: name, Message: "must be a number"}
	}
	return v, true, nil
}

// formFloat parses an optional float form value into a pointer.
func formFloat(r *http.Request, name string) (*float64, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &service.ValidationError{Field: name, Message: "must be a number"}
	}
	return &v, nil
}
