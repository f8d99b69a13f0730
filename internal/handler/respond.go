package handler

import (
	"encoding/json"
	"net/http"

	appErr "github.com/samims/notifier/internal/errors"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// inline error responder
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps a service error to its HTTP status
func statusFor(err error) int {
	switch {
	case appErr.IsValidation(err):
		return http.StatusBadRequest
	case appErr.IsNotFound(err):
		return http.StatusNotFound
	case appErr.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
