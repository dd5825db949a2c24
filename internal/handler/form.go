package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/assetdesk/assetdesk/internal/form"
	"github.com/assetdesk/assetdesk/internal/layout"
	"github.com/assetdesk/assetdesk/internal/registry"
	"github.com/assetdesk/assetdesk/internal/store"
	"github.com/assetdesk/assetdesk/internal/types"
)

// FormHandler serves the generic CRUD forms: rendering a context's layout
// over a draft, and submitting drafts through validation into the store.
type FormHandler struct {
	store *store.Store
	reg   *registry.Registry
}

// NewFormHandler creates a FormHandler.
func NewFormHandler(s *store.Store, reg *registry.Registry) *FormHandler {
	return &FormHandler{store: s, reg: reg}
}

func (h *FormHandler) peers() form.Peers {
	return form.Peers{
		Users:    h.store.Users(),
		Families: h.store.Families(),
		Vendors:  h.store.Vendors(),
	}
}

// open builds a form for a context: edit mode over the identified entity,
// create mode (with optional defaults) otherwise.
func (h *FormHandler) open(ctx layout.ContextKey, entityID string, values map[string]any) (*form.Form, error) {
	var entity map[string]any
	if entityID != "" {
		var (
			v  any
			ok bool
		)
		switch ctx {
		case layout.ContextLicenseFamily, layout.ContextHardwareFamily:
			// Family drafts are the flat variant shape; the embedded core
			// fields inline under the registry's attribute paths.
			var fam types.AssetFamily
			fam, ok = h.store.FindFamily(entityID)
			if ok {
				if fam.Software != nil {
					v = fam.Software
				} else {
					v = fam.Hardware
				}
			}
		case layout.ContextLicenseInstance, layout.ContextHardwareInstance:
			v, ok = h.store.FindAsset(entityID)
		case layout.ContextUserProfile:
			v, ok = h.store.FindUser(entityID)
		}
		if !ok || v == nil {
			return nil, store.ErrNotFound
		}
		draft, err := form.Draftify(v)
		if err != nil {
			return nil, err
		}
		entity = draft
	}

	f, err := form.New(h.reg, h.store.LayoutConfig(), ctx, entity, h.defaults(ctx), h.peers())
	if err != nil {
		return nil, err
	}
	for k, v := range values {
		f.Set(k, v)
	}
	return f, nil
}

// defaults supplies the create-mode pre-population per context.
func (h *FormHandler) defaults(ctx layout.ContextKey) map[string]any {
	switch ctx {
	case layout.ContextLicenseFamily:
		return map[string]any{"type": string(types.AssetSoftware), "assignment_model": string(types.AssignSingle)}
	case layout.ContextHardwareFamily:
		return map[string]any{"type": string(types.AssetHardware), "assignment_model": string(types.AssignSingle)}
	case layout.ContextLicenseInstance:
		return map[string]any{"type": string(types.AssetSoftware), "status": string(types.StatusAvailable)}
	case layout.ContextHardwareInstance:
		return map[string]any{"type": string(types.AssetHardware), "status": string(types.StatusAvailable)}
	case layout.ContextUserProfile:
		return map[string]any{"role": string(types.RoleUser)}
	default:
		return nil
	}
}

type formRequest struct {
	EntityID string         `json:"entity_id,omitempty"`
	Values   map[string]any `json:"values,omitempty"`
}

// Render returns the rendered tabs for a context's form over a draft.
// POST /v1/forms/{context}/render
func (h *FormHandler) Render(w http.ResponseWriter, r *http.Request) {
	ctx := layout.ContextKey(chi.URLParam(r, "context"))
	var req formRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	f, err := h.open(ctx, req.EntityID, req.Values)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "no such entity")
			return
		}
		writeError(w, http.StatusBadRequest, "RENDER_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":  f.Mode,
		"tabs":  f.Render(),
		"draft": f.Draft(),
	})
}

// Submit validates a draft against the current layout and, when clean,
// saves it through the matching store transition. Admin only.
// POST /v1/forms/{context}/submit
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	ctx := layout.ContextKey(chi.URLParam(r, "context"))
	var req formRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	f, err := h.open(ctx, req.EntityID, req.Values)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "no such entity")
			return
		}
		writeError(w, http.StatusBadRequest, "SUBMIT_FAILED", err.Error())
		return
	}

	var saved any
	err = f.Submit(func(draft map[string]any) error {
		var saveErr error
		saved, saveErr = h.save(ctx, draft)
		return saveErr
	})
	if err != nil {
		if strings.Contains(err.Error(), "invalid fields") {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "SUBMIT_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// save routes a clean draft to the store transition for its context.
func (h *FormHandler) save(ctx layout.ContextKey, draft map[string]any) (any, error) {
	raw, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	switch ctx {
	case layout.ContextLicenseFamily:
		var sp types.SoftwareProfile
		if err := json.Unmarshal(raw, &sp); err != nil {
			return nil, err
		}
		return h.store.SaveFamily(types.AssetFamily{Type: types.AssetSoftware, Software: &sp})
	case layout.ContextHardwareFamily:
		var hp types.HardwareProduct
		if err := json.Unmarshal(raw, &hp); err != nil {
			return nil, err
		}
		return h.store.SaveFamily(types.AssetFamily{Type: types.AssetHardware, Hardware: &hp})
	case layout.ContextLicenseInstance, layout.ContextHardwareInstance:
		var a types.Asset
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		return h.store.SaveAsset(a)
	case layout.ContextUserProfile:
		var u types.User
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, err
		}
		return h.store.SaveUser(u)
	default:
		return nil, store.ErrNotFound
	}
}
