package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
	}); err != nil {
		// Use context logger if encoding fails
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", code)
	}
}

func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classify(r.Context(), err)
	h.WriteError(w, r, status, code, message)
}

// WriteRefreshError answers a failed refresh with the refresh payload shape;
// its error field carries the reason.
func (h *responseHandler) WriteRefreshError(w http.ResponseWriter, r *http.Request, err error) {
	status, _, message := classify(r.Context(), err)
	h.WriteJSON(w, r, status, dto.RefreshResponse{
		Status: dto.RefreshStatusError,
		Error:  message,
	})
}

// classify maps an error to its HTTP status, error code and public message,
// logging it at the level it deserves.
func classify(ctx context.Context, err error) (int, string, string) {
	log := logger.FromContext(ctx)

	var (
		notFound   *errs.NotFoundError
		validation *errs.ValidationError
		conflict   *errs.ConflictError
		database   *errs.DatabaseError
		external   *errs.ExternalServiceError
	)
	switch {
	case errors.As(err, &notFound):
		log.Warn("resource not found", "error", notFound.Message)
		return http.StatusNotFound, "not_found", notFound.Message

	case errors.As(err, &validation):
		log.Warn("validation failed", "error", validation.Message)
		return http.StatusBadRequest, "invalid_input", validation.Message

	case errors.As(err, &conflict):
		log.Warn("request conflict", "error", conflict.Message)
		return http.StatusConflict, "conflict", conflict.Message

	case errors.As(err, &database):
		log.Error("database error",
			"operation", database.Operation,
			"error", database.Message,
			"cause", database.Err)
		return http.StatusInternalServerError, "internal_error", "An error occurred"

	case errors.As(err, &external):
		level := slog.LevelError
		if external.Transient {
			level = slog.LevelWarn
		}
		log.Log(ctx, level, "external service error",
			"service", external.Service,
			"transient", external.Transient,
			"error", external.Message)

		status := http.StatusBadGateway
		if external.Transient {
			status = http.StatusServiceUnavailable
		}
		return status, "service_unavailable", "Service temporarily unavailable"

	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("request timed out", "error", err)
		return http.StatusGatewayTimeout, "timeout", "The widget query timed out"

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		return http.StatusInternalServerError, "internal_error", "An unexpected error occurred"
	}
}
