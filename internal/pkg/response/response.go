package response

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error body shape for every non-streaming endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes data as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already on the wire, nothing more to do
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Error writes `{"error": message}` with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// Success writes a 200 OK JSON response.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}
