package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/assetdesk/assetdesk/internal/export"
	"github.com/assetdesk/assetdesk/internal/persist"
	"github.com/assetdesk/assetdesk/internal/store"
)

// ExportHandler serves full-state snapshot exports.
type ExportHandler struct {
	store   *store.Store
	persist *persist.Store // nil when persistence is disabled
	dir     string
}

// NewExportHandler creates an ExportHandler writing files into dir.
func NewExportHandler(s *store.Store, p *persist.Store, dir string) *ExportHandler {
	return &ExportHandler{store: s, persist: p, dir: dir}
}

// Download streams the current snapshot as a JSON attachment. Admin only.
// GET /v1/export
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	snap := h.store.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(snap)+`"`)
	if err := export.Write(w, snap); err != nil {
		log.Printf("export: %v", err)
	}
}

// Save writes the snapshot to the export directory and records it in the
// database. Admin only.
// POST /v1/export
func (h *ExportHandler) Save(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	snap := h.store.Snapshot()
	path, err := export.WriteFile(h.dir, snap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EXPORT_FAILED", err.Error())
		return
	}
	if h.persist != nil {
		if err := h.persist.SaveSnapshot(r.Context(), snap); err != nil {
			log.Printf("export: recording snapshot: %v", err)
		}
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"path":        path,
		"exported_at": snap.ExportedAt.UTC().Format(time.RFC3339),
	})
}
