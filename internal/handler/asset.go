package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/assetdesk/assetdesk/internal/importer"
	"github.com/assetdesk/assetdesk/internal/lifecycle"
	"github.com/assetdesk/assetdesk/internal/store"
	"github.com/assetdesk/assetdesk/internal/types"
)

// AssetHandler serves asset unit CRUD, bulk creation and bulk import.
type AssetHandler struct {
	store *store.Store
}

// NewAssetHandler creates an AssetHandler.
func NewAssetHandler(s *store.Store) *AssetHandler {
	return &AssetHandler{store: s}
}

// redactAssets blanks cost figures for non-admin viewers.
func redactAssets(assets []types.Asset, v Viewer) []types.Asset {
	if v.Role == types.RoleAdmin {
		return assets
	}
	out := make([]types.Asset, len(assets))
	for i, a := range assets {
		a.Cost = 0
		out[i] = a
	}
	return out
}

// List returns assets, optionally filtered by type or status.
// GET /v1/assets?type=&status=
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	assets := h.store.Assets()
	q := r.URL.Query()
	if t := q.Get("type"); t != "" {
		filtered := assets[:0:0]
		for _, a := range assets {
			if a.Type == types.AssetType(t) {
				filtered = append(filtered, a)
			}
		}
		assets = filtered
	}
	if s := q.Get("status"); s != "" {
		filtered := assets[:0:0]
		for _, a := range assets {
			if a.Status == types.AssetStatus(s) {
				filtered = append(filtered, a)
			}
		}
		assets = filtered
	}
	if assets == nil {
		assets = []types.Asset{}
	}
	writeJSON(w, http.StatusOK, redactAssets(assets, viewer(r)))
}

// Get returns one asset by its business identifier.
// GET /v1/assets/{id}
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := h.store.FindAsset(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such asset")
		return
	}
	writeJSON(w, http.StatusOK, redactAssets([]types.Asset{a}, viewer(r))[0])
}

// Save runs the create-or-edit lifecycle for a draft. Admin only. History
// entries and generated identifiers come out of the lifecycle engine, so
// callers never post history directly.
// POST /v1/assets
func (h *AssetHandler) Save(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var draft types.Asset
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	created := draft.ID == ""
	saved, err := h.store.SaveAsset(draft)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "SAVE_FAILED", err.Error())
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}

// Bulk creates a batch of units under one family. Admin only.
// POST /v1/families/{id}/assets/bulk
func (h *AssetHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var req struct {
		VariantName string                 `json:"variant_name,omitempty"`
		Quantity    int                    `json:"quantity"`
		Common      lifecycle.CommonFields `json:"common"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	created, err := h.store.BulkCreateAssets(chi.URLParam(r, "id"), req.VariantName, req.Quantity, req.Common)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "BULK_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type importRequest struct {
	FamilyID string            `json:"family_id"`
	Text     string            `json:"text"`
	Mapping  map[string]string `json:"mapping,omitempty"` // header -> field key overrides
}

func (h *AssetHandler) parseImport(w http.ResponseWriter, r *http.Request) (importRequest, importer.Document, importer.Mapping, bool) {
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return req, importer.Document{}, nil, false
	}
	doc, err := importer.Parse(req.Text)
	if err != nil {
		writeError(w, http.StatusBadRequest, "PARSE_FAILED", err.Error())
		return req, importer.Document{}, nil, false
	}
	mapping := importer.AutoMap(doc.Headers, importer.DefaultTargets())
	for i, header := range doc.Headers {
		if key, ok := req.Mapping[header]; ok {
			mapping[i] = key
		}
	}
	return req, doc, mapping, true
}

// ImportPreview parses pasted delimited text, auto-maps its columns and
// returns the mapped rows for review. Admin only.
// POST /v1/assets/import/preview
func (h *AssetHandler) ImportPreview(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	_, doc, mapping, ok := h.parseImport(w, r)
	if !ok {
		return
	}
	mapped := map[string]string{}
	for i, key := range mapping {
		mapped[doc.Headers[i]] = key
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"headers": doc.Headers,
		"mapping": mapped,
		"rows":    doc.Preview(mapping, 20),
		"total":   len(doc.Rows),
	})
}

// Import commits an import: every mapped row becomes an asset under the
// target family via the normal save path. Admin only.
// POST /v1/assets/import
func (h *AssetHandler) Import(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	req, doc, mapping, ok := h.parseImport(w, r)
	if !ok {
		return
	}
	family, found := h.store.FindFamily(req.FamilyID)
	if !found {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such family")
		return
	}
	res := importer.Commit(doc.Records(mapping), &family, h.store.SaveAsset)

	rowErrors := []map[string]any{}
	for _, re := range res.Errors {
		rowErrors = append(rowErrors, map[string]any{"row": re.Row, "error": re.Err.Error()})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"created": res.Created,
		"errors":  rowErrors,
	})
}
