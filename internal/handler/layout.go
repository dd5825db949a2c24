package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/assetdesk/assetdesk/internal/layout"
	"github.com/assetdesk/assetdesk/internal/persist"
	"github.com/assetdesk/assetdesk/internal/registry"
	"github.com/assetdesk/assetdesk/internal/store"
)

// LayoutHandler serves the layout configuration and the admin editor
// sessions over it. Sessions live server-side; nothing touches the
// committed configuration until an explicit commit.
type LayoutHandler struct {
	store   *store.Store
	reg     *registry.Registry
	persist *persist.Store // nil when persistence is disabled

	mu       sync.Mutex
	sessions map[string]*layout.Session
}

// NewLayoutHandler creates a LayoutHandler. p may be nil.
func NewLayoutHandler(s *store.Store, reg *registry.Registry, p *persist.Store) *LayoutHandler {
	return &LayoutHandler{
		store:    s,
		reg:      reg,
		persist:  p,
		sessions: make(map[string]*layout.Session),
	}
}

// Config returns the committed layout for every context.
// GET /v1/layouts
func (h *LayoutHandler) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.LayoutConfig())
}

// Get returns the committed layout for one context.
// GET /v1/layouts/{context}
func (h *LayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, ok := h.store.Layout(layout.ContextKey(chi.URLParam(r, "context")))
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such layout context")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// Fields returns the full field pool for a context, in registry order.
// GET /v1/layouts/{context}/fields
func (h *LayoutHandler) Fields(w http.ResponseWriter, r *http.Request) {
	ctx := layout.ContextKey(chi.URLParam(r, "context"))
	keys := h.reg.Keys(ctx)
	if keys == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such layout context")
		return
	}
	specs := make([]registry.FieldSpec, 0, len(keys))
	for _, k := range keys {
		if spec := h.reg.Resolve(k, ctx); spec != nil {
			specs = append(specs, *spec)
		}
	}
	writeJSON(w, http.StatusOK, specs)
}

// Validate checks a raw layout document against the schema without
// installing it.
// POST /v1/layouts/validate
func (h *LayoutHandler) Validate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := layout.ValidateDocument(body); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

// OpenSession starts an editor session over a clone of a context's
// committed layout. Admin only.
// POST /v1/layouts/{context}/session
func (h *LayoutHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	ctx := layout.ContextKey(chi.URLParam(r, "context"))
	l, ok := h.store.Layout(ctx)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such layout context")
		return
	}
	sess := layout.NewSession(l, h.reg.Keys(ctx))
	id := uuid.New().String()

	h.mu.Lock()
	h.sessions[id] = sess
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, h.sessionState(id, sess))
}

func (h *LayoutHandler) session(w http.ResponseWriter, r *http.Request) (string, *layout.Session, bool) {
	id := chi.URLParam(r, "session")
	h.mu.Lock()
	sess, ok := h.sessions[id]
	h.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such editor session")
		return "", nil, false
	}
	return id, sess, true
}

func (h *LayoutHandler) sessionState(id string, sess *layout.Session) map[string]any {
	available := sess.AvailableFields()
	if available == nil {
		available = []string{}
	}
	return map[string]any{
		"session":   id,
		"layout":    sess.Layout(),
		"available": available,
	}
}

// sessionOp is one editor operation. Op selects the mutation; the other
// fields are its arguments.
type sessionOp struct {
	Op        string `json:"op"`
	TabID     string `json:"tab_id,omitempty"`
	SectionID string `json:"section_id,omitempty"`
	Title     string `json:"title,omitempty"`
	Columns   int    `json:"columns,omitempty"`
	Field     string `json:"field,omitempty"`
	Index     int    `json:"index,omitempty"`
	Direction int    `json:"direction,omitempty"`
}

// Op applies one editor operation to a session and returns the updated
// working state. Admin only.
// POST /v1/layout-sessions/{session}/ops
func (h *LayoutHandler) Op(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	id, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var op sessionOp
	if err := decodeJSON(r, &op); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	var err error
	switch op.Op {
	case "add_tab":
		sess.AddTab(op.TabID, op.Title)
	case "remove_tab":
		err = sess.RemoveTab(op.TabID)
	case "rename_tab":
		err = sess.RenameTab(op.TabID, op.Title)
	case "add_section":
		err = sess.AddSection(op.TabID, op.SectionID, op.Title, op.Columns)
	case "remove_section":
		err = sess.RemoveSection(op.TabID, op.SectionID)
	case "move_section":
		err = sess.MoveSection(op.TabID, op.SectionID, op.Direction)
	case "set_columns":
		err = sess.SetColumns(op.TabID, op.SectionID, op.Columns)
	case "assign_field":
		err = sess.AssignField(op.TabID, op.SectionID, op.Field, op.Index)
	case "unassign_field":
		sess.UnassignField(op.Field)
	default:
		writeError(w, http.StatusBadRequest, "UNKNOWN_OP", "unknown editor operation: "+op.Op)
		return
	}
	if err != nil {
		if errors.Is(err, layout.ErrNoSuchTab) || errors.Is(err, layout.ErrNoSuchSection) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "OP_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.sessionState(id, sess))
}

// Commit validates the session's working layout and installs it as the
// committed configuration, then persists. The session is closed. Admin only.
// POST /v1/layout-sessions/{session}/commit
func (h *LayoutHandler) Commit(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	id, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.store.CommitLayout(sess.Layout()); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_LAYOUT", err.Error())
		return
	}

	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()

	if h.persist != nil {
		if err := h.persist.SaveLayoutConfig(context.Background(), h.store.LayoutConfig()); err != nil {
			log.Printf("layout: persisting configuration: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, h.store.LayoutConfig())
}

// Discard closes a session without committing; all edits are dropped.
// DELETE /v1/layout-sessions/{session}
func (h *LayoutHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	id, _, ok := h.session(w, r)
	if !ok {
		return
	}
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
