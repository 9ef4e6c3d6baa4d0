// Package response writes API bodies: the {success, data} envelope, bare
// widget-store payloads and the {code, message} error body.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

type ResponseHandler interface {
	WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any)
	WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any)
	WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string)
	HandleError(w http.ResponseWriter, r *http.Request, err error)
	WriteRefreshError(w http.ResponseWriter, r *http.Request, err error)
}

// responseHandler logs through the request's context logger.
type responseHandler struct{}

func New() *responseHandler {
	return &responseHandler{}
}

type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func (h *responseHandler) WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	h.WriteJSON(w, r, status, SuccessEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSON writes v as the bare body. Used where the wire shape is fixed by
// the widget store contract rather than the success envelope.
func (h *responseHandler) WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response", "error", err, "status", status)
	}
}
