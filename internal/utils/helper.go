package utils

import (
	"encoding/json"
	"net/http"
	"strings"
)

// TrimmedPtr returns nil for blank input so optional filters stay unset.
func TrimmedPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// WriteJSONError writes {"error": message}. Middleware uses it before a
// handler's own response helpers are in play.
func WriteJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
