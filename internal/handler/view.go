package handler

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/assetdesk/assetdesk/internal/form"
	"github.com/assetdesk/assetdesk/internal/store"
	"github.com/assetdesk/assetdesk/internal/table"
	"github.com/assetdesk/assetdesk/internal/types"
)

// ViewHandler holds one grid per list view and serves its render plus the
// view-state mutations (sort toggles, filters, column settings). The grids
// persist across requests, so the tri-state sort cycle and customized
// columns behave as they do in the UI.
type ViewHandler struct {
	store *store.Store

	mu    sync.Mutex
	grids map[string]*table.Table
}

// NewViewHandler creates the standard set of views.
func NewViewHandler(s *store.Store) *ViewHandler {
	h := &ViewHandler{store: s, grids: make(map[string]*table.Table)}
	h.grids["assets"] = table.New(assetColumns(s))
	h.grids["users"] = table.New(userColumns())
	h.grids["requests"] = table.New(requestColumns())
	h.grids["tasks"] = table.New(taskColumns())
	return h
}

func assetColumns(s *store.Store) []table.Column {
	return []table.Column{
		{Key: "id", Label: "Asset ID"},
		{Key: "title", Label: "Title"},
		{Key: "type", Label: "Type"},
		{Key: "status", Label: "Status"},
		{Key: "cost", Label: "Cost"},
		{Key: "assigned_user", Label: "Assigned To", Render: func(r table.Row) string {
			id, _ := table.Resolve(r, "assigned_user").(string)
			if id == "" {
				return ""
			}
			if u, ok := s.FindUser(id); ok {
				return u.FullName()
			}
			return id
		}},
		{Key: "purchase_date", Label: "Purchase Date"},
	}
}

func userColumns() []table.Column {
	return []table.Column{
		{Key: "first_name", Label: "First Name"},
		{Key: "last_name", Label: "Last Name"},
		{Key: "email", Label: "Email"},
		{Key: "department", Label: "Department"},
		{Key: "site", Label: "Site"},
		{Key: "role", Label: "Role"},
	}
}

func requestColumns() []table.Column {
	return []table.Column{
		{Key: "item", Label: "Item"},
		{Key: "type", Label: "Type"},
		{Key: "requested_by.full_name", Label: "Requested By"},
		{Key: "status", Label: "Status"},
		{Key: "request_date", Label: "Requested"},
	}
}

func taskColumns() []table.Column {
	return []table.Column{
		{Key: "description", Label: "Description"},
		{Key: "priority", Label: "Priority"},
		{Key: "status", Label: "Status"},
		{Key: "due_date", Label: "Due"},
	}
}

func (h *ViewHandler) grid(w http.ResponseWriter, r *http.Request) (*table.Table, string, bool) {
	name := chi.URLParam(r, "view")
	h.mu.Lock()
	g, ok := h.grids[name]
	h.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such view")
		return nil, "", false
	}
	return g, name, true
}

// rows converts the view's backing collection into grid rows.
func (h *ViewHandler) rows(name string, v Viewer) []table.Row {
	var entities []any
	switch name {
	case "assets":
		for _, a := range redactAssets(h.store.Assets(), v) {
			entities = append(entities, a)
		}
	case "users":
		for _, u := range h.store.Users() {
			entities = append(entities, redactUser(u, v))
		}
	case "requests":
		for _, req := range h.store.Requests() {
			entities = append(entities, req)
		}
	case "tasks":
		for _, t := range h.store.Tasks() {
			entities = append(entities, t)
		}
	}
	rows := make([]table.Row, 0, len(entities))
	for _, e := range entities {
		if row, err := form.Draftify(e); err == nil {
			rows = append(rows, row)
		}
	}
	return rows
}

// Render evaluates the view over current data.
// GET /v1/views/{view}
func (h *ViewHandler) Render(w http.ResponseWriter, r *http.Request) {
	g, name, ok := h.grid(w, r)
	if !ok {
		return
	}
	if name == "tasks" && !requireAdmin(w, r) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	rows := g.Render(h.rows(name, viewer(r)))
	sortKey, sortDir := g.Sort()
	writeJSON(w, http.StatusOK, map[string]any{
		"columns":  g.VisibleColumns(),
		"settings": g.Settings(),
		"rows":     rows,
		"sort":     map[string]any{"key": sortKey, "direction": sortDir},
	})
}

// Sort advances the tri-state sort cycle for a column.
// POST /v1/views/{view}/sort
func (h *ViewHandler) Sort(w http.ResponseWriter, r *http.Request) {
	g, _, ok := h.grid(w, r)
	if !ok {
		return
	}
	var body struct {
		Key string `json:"key"`
	}
	if err := decodeJSON(r, &body); err != nil || body.Key == "" {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "sort key is required")
		return
	}
	h.mu.Lock()
	g.ToggleSort(body.Key)
	key, dir := g.Sort()
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "direction": dir})
}

// Filter sets the global filter or one per-column filter.
// POST /v1/views/{view}/filter
func (h *ViewHandler) Filter(w http.ResponseWriter, r *http.Request) {
	g, _, ok := h.grid(w, r)
	if !ok {
		return
	}
	var body struct {
		Global *string `json:"global,omitempty"`
		Column string  `json:"column,omitempty"`
		Value  string  `json:"value,omitempty"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	h.mu.Lock()
	if body.Global != nil {
		g.SetGlobalFilter(strings.TrimSpace(*body.Global))
	}
	if body.Column != "" {
		g.SetColumnFilter(body.Column, body.Value)
	}
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// Columns adjusts per-column view settings: visibility, width, order.
// POST /v1/views/{view}/columns
func (h *ViewHandler) Columns(w http.ResponseWriter, r *http.Request) {
	g, _, ok := h.grid(w, r)
	if !ok {
		return
	}
	var body struct {
		Key       string `json:"key"`
		Visible   *bool  `json:"visible,omitempty"`
		Width     *int   `json:"width,omitempty"`
		Direction int    `json:"direction,omitempty"` // -1 left, +1 right
	}
	if err := decodeJSON(r, &body); err != nil || body.Key == "" {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "column key is required")
		return
	}
	h.mu.Lock()
	if body.Visible != nil {
		g.SetVisible(body.Key, *body.Visible)
	}
	if body.Width != nil {
		g.SetWidth(body.Key, *body.Width)
	}
	if body.Direction != 0 {
		g.MoveColumn(body.Key, body.Direction)
	}
	settings := g.Settings()
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, settings)
}

// expiringSoon reports assets whose renewal or warranty date falls within
// the window. Used by the dashboard.
func expiringSoon(assets []types.Asset, now time.Time, window time.Duration) []types.Asset {
	var out []types.Asset
	cutoff := now.Add(window)
	for _, a := range assets {
		for _, d := range []*time.Time{a.RenewalDate, a.WarrantyUntil} {
			if d != nil && d.After(now) && d.Before(cutoff) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// Dashboard returns the portal landing summary: counts by status and type
// plus upcoming renewals.
// GET /v1/dashboard
func (h *ViewHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	assets := redactAssets(h.store.Assets(), viewer(r))
	byStatus := map[types.AssetStatus]int{}
	byType := map[types.AssetType]int{}
	for _, a := range assets {
		byStatus[a.Status]++
		byType[a.Type]++
	}
	pending := 0
	for _, req := range h.store.Requests() {
		if req.Status == types.RequestPending {
			pending++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"assets_by_status": byStatus,
		"assets_by_type":   byType,
		"pending_requests": pending,
		"expiring_soon":    expiringSoon(assets, time.Now(), 30*24*time.Hour),
	})
}
