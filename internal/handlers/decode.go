package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/GregMSThompson/finance-widgets/internal/errs"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into v. Malformed bodies are the caller's
// fault and come back as a ValidationError.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errs.NewValidationError(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
