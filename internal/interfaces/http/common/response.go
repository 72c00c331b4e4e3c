package common

import (
	"encoding/json"
	"net/http"

	"github.com/sngm3741/restaurant-graph/api/internal/common/logger"
)

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(log logger.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && log != nil {
		log.Error("failed to encode JSON response", map[string]interface{}{"error": err.Error()})
	}
}
