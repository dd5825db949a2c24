package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/assetdesk/assetdesk/internal/store"
	"github.com/assetdesk/assetdesk/internal/types"
)

// UserHandler serves user profiles.
type UserHandler struct {
	store *store.Store
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(s *store.Store) *UserHandler {
	return &UserHandler{store: s}
}

// redactUser hides contact details from non-admin viewers looking at
// someone else's profile.
func redactUser(u types.User, v Viewer) types.User {
	if v.Role == types.RoleAdmin || v.UserID == u.ID {
		return u
	}
	u.Phone = ""
	u.SocialLinks = nil
	u.PlatformAccounts = nil
	u.History = nil
	return u
}

// List returns all users.
// GET /v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	users := h.store.Users()
	out := make([]types.User, len(users))
	for i, u := range users {
		out[i] = redactUser(u, v)
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns one user.
// GET /v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.FindUser(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such user")
		return
	}
	writeJSON(w, http.StatusOK, redactUser(u, viewer(r)))
}

// Assets returns the assets assigned to one user: single-owner matches,
// multi-owner membership and active usage.
// GET /v1/users/{id}/assets
func (h *UserHandler) Assets(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.store.FindUser(id); !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such user")
		return
	}
	assigned := []types.Asset{}
	active := []types.Asset{}
	for _, a := range h.store.Assets() {
		if a.AssignedUser == id || containsID(a.AssignedUsers, id) {
			assigned = append(assigned, a)
		}
		if containsID(a.ActiveUsers, id) {
			active = append(active, a)
		}
	}
	v := viewer(r)
	writeJSON(w, http.StatusOK, map[string][]types.Asset{
		"assigned": redactAssets(assigned, v),
		"active":   redactAssets(active, v),
	})
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Save creates or updates a user. Admin only.
// POST /v1/users
func (h *UserHandler) Save(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var u types.User
	if err := decodeJSON(r, &u); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	created := u.ID == ""
	saved, err := h.store.SaveUser(u)
	if err != nil {
		writeError(w, http.StatusBadRequest, "SAVE_FAILED", err.Error())
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}
