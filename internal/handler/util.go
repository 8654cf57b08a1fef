// Package handler implements the HTTP surface of the creative console.
package handler

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// confirmed reports whether the request carries the confirm=true guard
// required by destructive operations.
func confirmed(r *http.Request) bool {
	return r.URL.Query().Get("confirm") == "true"
}
