package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/assetdesk/assetdesk/internal/store"
	"github.com/assetdesk/assetdesk/internal/types"
)

// FamilyHandler serves asset family CRUD.
type FamilyHandler struct {
	store *store.Store
}

// NewFamilyHandler creates a FamilyHandler.
func NewFamilyHandler(s *store.Store) *FamilyHandler {
	return &FamilyHandler{store: s}
}

// List returns families, optionally filtered by type.
// GET /v1/families?type=software|hardware
func (h *FamilyHandler) List(w http.ResponseWriter, r *http.Request) {
	families := h.store.Families()
	if t := r.URL.Query().Get("type"); t != "" {
		filtered := families[:0:0]
		for _, f := range families {
			if f.Type == types.AssetType(t) {
				filtered = append(filtered, f)
			}
		}
		families = filtered
	}
	if families == nil {
		families = []types.AssetFamily{}
	}
	writeJSON(w, http.StatusOK, families)
}

// Get returns one family.
// GET /v1/families/{id}
func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, ok := h.store.FindFamily(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such family")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Save creates or updates a family. Admin only.
// POST /v1/families
func (h *FamilyHandler) Save(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var f types.AssetFamily
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	created := f.ID() == ""
	saved, err := h.store.SaveFamily(f)
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

// Assets returns the units belonging to one family.
// GET /v1/families/{id}/assets
func (h *FamilyHandler) Assets(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.store.FindFamily(id); !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such family")
		return
	}
	units := []types.Asset{}
	for _, a := range h.store.Assets() {
		if a.FamilyID == id {
			units = append(units, a)
		}
	}
	writeJSON(w, http.StatusOK, redactAssets(units, viewer(r)))
}
