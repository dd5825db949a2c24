package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/assetdesk/assetdesk/internal/store"
	"github.com/assetdesk/assetdesk/internal/types"
)

// TaskHandler serves fulfillment tasks. Tasks are created only by request
// approval; this surface is read-only apart from status updates.
type TaskHandler struct {
	store *store.Store
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(s *store.Store) *TaskHandler {
	return &TaskHandler{store: s}
}

// List returns all tasks. Admin only.
// GET /v1/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	tasks := h.store.Tasks()
	if tasks == nil {
		tasks = []types.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Get returns one task. Admin only.
// GET /v1/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	t, ok := h.store.FindTask(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such task")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// VendorHandler serves the vendor collection.
type VendorHandler struct {
	store *store.Store
}

// NewVendorHandler creates a VendorHandler.
func NewVendorHandler(s *store.Store) *VendorHandler {
	return &VendorHandler{store: s}
}

// List returns all vendors.
// GET /v1/vendors
func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
	vendors := h.store.Vendors()
	if vendors == nil {
		vendors = []types.Vendor{}
	}
	writeJSON(w, http.StatusOK, vendors)
}
