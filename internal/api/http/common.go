package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// API errors are {"message": "..."} bodies with the HTTP status carrying
// the taxonomy.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"message": msg})
}

func respondMessage(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": msg})
}
