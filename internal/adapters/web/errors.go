package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"crm-console/internal/app"
	"crm-console/internal/forms"
)

type errorResponse struct {
	Error     string             `json:"error"`
	Code      string             `json:"code"`
	Fields    []forms.FieldError `json:"fields,omitempty"`
	RequestID string             `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeSaveError maps a failed save to 422 with per-field detail when the
// cause is validation, 404 when the target row is gone, and 500 otherwise.
func writeSaveError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *app.ValidationError
	if errors.As(err, &ve) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(errorResponse{
			Error:     ve.Error(),
			Code:      "VALIDATION_FAILED",
			Fields:    ve.Fields,
			RequestID: requestIDFromContext(r.Context()),
		})
		return
	}
	writeServiceError(w, r, err)
}

// writeServiceError distinguishes not-found from everything else by the
// service error text; row identity errors are produced in one place.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil && strings.Contains(err.Error(), "not found") {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
