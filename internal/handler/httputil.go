// Package handler implements the HTTP surface of the portal: entity CRUD,
// the request workflow, layout editor sessions, server-side view state and
// the activity feed.
package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/assetdesk/assetdesk/internal/types"
)

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON encode error: %v", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// Viewer identifies the caller, taken from headers set by the front end.
// The role gates cost visibility and the admin-only operations.
type Viewer struct {
	UserID string
	Role   types.Role
}

func viewer(r *http.Request) Viewer {
	v := Viewer{
		UserID: r.Header.Get("X-User-ID"),
		Role:   types.Role(r.Header.Get("X-Role")),
	}
	if v.Role != types.RoleAdmin {
		v.Role = types.RoleUser
	}
	return v
}

// requireAdmin rejects non-admin callers. Reports whether the caller may
// proceed.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if viewer(r).Role != types.RoleAdmin {
		writeError(w, http.StatusForbidden, "ADMIN_ONLY", "this operation requires the admin role")
		return false
	}
	return true
}
