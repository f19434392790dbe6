// Package common provides shared helpers for UI features.
package common

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"
)

// IsJSONBody reports whether the request body is JSON.
func IsJSONBody(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/json"
}

// WantsJSON reports whether the request body or the caller speaks JSON.
func WantsJSON(r *http.Request) bool {
	return IsJSONBody(r) || strings.Contains(r.Header.Get("Accept"), "application/json")
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Debug("failed to write json response", "error", err)
	}
}
