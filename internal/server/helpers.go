package server

import (
	"encoding/json"
	"net/http"
	"tokbarr/internal/logging"
	"tokbarr/internal/models"
)

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.E("Failed to encode JSON response: %v", err)
	}
}

// writeError sends a JSON error detail to the caller.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorResponse{Detail: detail})
}
