// Package handlers implements the HTTP handlers for the landpress admin
// and public APIs. All responses are JSON.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// respond writes v as a JSON response with the given status code.
func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// respondError writes a JSON error body {"error": message}.
func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}

// Shared error responses. Handlers never leak internal error details to
// clients; the real cause goes to the log.
func respondInternal(w http.ResponseWriter) {
	respondError(w, http.StatusInternalServerError, "internal server error")
}

func respondNotFound(w http.ResponseWriter) {
	respondError(w, http.StatusNotFound, "not found")
}

func respondInvalid(w http.ResponseWriter, message string) {
	respondError(w, http.StatusBadRequest, message)
}

// Conflicts (duplicate slug or email, guarded deletion) answer 400 like
// other invalid requests; the message carries the distinction.
func respondConflict(w http.ResponseWriter, message string) {
	respondError(w, http.StatusBadRequest, message)
}
