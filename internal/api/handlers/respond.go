package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/folio/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps engine errors to HTTP status codes
func statusFor(err error) int {
	if contracts.IsClientError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
