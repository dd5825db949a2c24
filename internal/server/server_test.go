package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetdesk/assetdesk/internal/activity"
	"github.com/assetdesk/assetdesk/internal/config"
	"github.com/assetdesk/assetdesk/internal/event"
	"github.com/assetdesk/assetdesk/internal/lifecycle"
	"github.com/assetdesk/assetdesk/internal/registry"
	"github.com/assetdesk/assetdesk/internal/store"
	"github.com/assetdesk/assetdesk/internal/types"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	feed := activity.NewMemoryStore()
	indexer := activity.NewIndexer(feed)
	s := store.New(&lifecycle.Engine{Separator: "-"}, store.WithPublisher(func(evt event.DomainEvent) {
		_ = indexer.HandleEvent(context.Background(), evt)
	}))
	s.Load(
		[]types.User{
			{ID: "u-1", FirstName: "Dana", LastName: "Whitfield", Email: "dana@example.com", Role: types.RoleAdmin},
			{ID: "u-2", FirstName: "Marcus", LastName: "Okafor", Email: "marcus@example.com", Role: types.RoleUser},
			{ID: "u-3", FirstName: "Priya", LastName: "Raman", Email: "priya@example.com", Role: types.RoleUser},
		},
		[]types.AssetFamily{
			{Type: types.AssetSoftware, Software: &types.SoftwareProfile{FamilyCore: types.FamilyCore{
				ID: "f-1", Name: "Widget Pro", ProductCode: "WID", AssignmentModel: types.AssignSingle,
			}}},
		},
		[]types.Asset{
			{ID: "SOFT-WID-0001", FamilyID: "f-1", Type: types.AssetSoftware, Title: "Widget Pro", Status: types.StatusActive, Cost: 49, AssignedUser: "u-2"},
			{ID: "SOFT-WID-0002", FamilyID: "f-1", Type: types.AssetSoftware, Title: "Widget Pro", Status: types.StatusAvailable, Cost: 199},
		},
		nil, nil,
	)

	srv := httptest.NewServer(Router(Config{
		Store:     s,
		Registry:  registry.New(config.DefaultPicklists()),
		Activity:  feed,
		ExportDir: t.TempDir(),
	}))
	t.Cleanup(srv.Close)
	return srv, s
}

// call runs one request with the viewer headers set and decodes the JSON
// response into out (when out is non-nil).
func call(t *testing.T, srv *httptest.Server, method, path, userID string, role types.Role, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	req.Header.Set("X-Role", string(role))

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func asAdmin(t *testing.T, srv *httptest.Server, method, path string, body, out any) int {
	return call(t, srv, method, path, "u-1", types.RoleAdmin, body, out)
}

func asUser(t *testing.T, srv *httptest.Server, method, path string, body, out any) int {
	return call(t, srv, method, path, "u-2", types.RoleUser, body, out)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/healthz", "", "", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAssetCostRedaction(t *testing.T) {
	srv, _ := newTestServer(t)

	var assets []map[string]any
	require.Equal(t, http.StatusOK, asUser(t, srv, http.MethodGet, "/v1/assets", nil, &assets))
	require.Len(t, assets, 2)
	for _, a := range assets {
		_, ok := a["cost"]
		assert.False(t, ok, "non-admin response must omit cost for %v", a["id"])
	}

	assets = nil
	require.Equal(t, http.StatusOK, asAdmin(t, srv, http.MethodGet, "/v1/assets", nil, &assets))
	assert.Equal(t, 49.0, assets[0]["cost"])
}

func TestAdminOnlyOperations(t *testing.T) {
	srv, _ := newTestServer(t)

	var errBody map[string]string
	status := asUser(t, srv, http.MethodPost, "/v1/families", map[string]any{}, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ADMIN_ONLY", errBody["code"])

	assert.Equal(t, http.StatusForbidden, asUser(t, srv, http.MethodGet, "/v1/views/tasks", nil, nil))
	assert.Equal(t, http.StatusForbidden, asUser(t, srv, http.MethodGet, "/v1/tasks", nil, nil))
	assert.Equal(t, http.StatusForbidden, asUser(t, srv, http.MethodPost, "/v1/layouts/userProfile/session", nil, nil))
}

func TestRequestWorkflowOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	var req map[string]any
	status := asUser(t, srv, http.MethodPost, "/v1/requests", map[string]any{"family_id": "f-1", "notes": "need a seat"}, &req)
	require.Equal(t, http.StatusCreated, status)
	reqID := req["id"].(string)
	assert.Equal(t, "Pending", req["status"])
	assert.Equal(t, "Widget Pro", req["item"])

	// The requester sees their own request; another user does not.
	var listed []map[string]any
	require.Equal(t, http.StatusOK, asUser(t, srv, http.MethodGet, "/v1/requests", nil, &listed))
	assert.Len(t, listed, 1)
	listed = nil
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/v1/requests", "u-3", types.RoleUser, nil, &listed))
	assert.Empty(t, listed)

	// Approval dialog defaults to the first admin.
	var form map[string]any
	require.Equal(t, http.StatusOK, asAdmin(t, srv, http.MethodGet, "/v1/requests/"+reqID+"/task-form", nil, &form))
	assert.Equal(t, "u-1", form["assignee_id"])
	assert.Equal(t, "Medium", form["priority"])

	var approved struct {
		Request types.Request `json:"request"`
		Task    types.Task    `json:"task"`
	}
	require.Equal(t, http.StatusOK, asAdmin(t, srv, http.MethodPost, "/v1/requests/"+reqID+"/approve",
		map[string]any{"description": "provision a seat"}, &approved))
	assert.Equal(t, types.RequestInProgress, approved.Request.Status)
	assert.Equal(t, approved.Task.ID, approved.Request.LinkedTaskID)
	assert.Equal(t, types.TaskToDo, approved.Task.Status)

	// A second approval conflicts; the task is not duplicated.
	var errBody map[string]string
	assert.Equal(t, http.StatusConflict, asAdmin(t, srv, http.MethodPost, "/v1/requests/"+reqID+"/approve", map[string]any{}, &errBody))
	var tasks []map[string]any
	require.Equal(t, http.StatusOK, asAdmin(t, srv, http.MethodGet, "/v1/tasks", nil, &tasks))
	assert.Len(t, tasks, 1)

	var fulfilled map[string]any
	require.Equal(t, http.StatusOK, asAdmin(t, srv, http.MethodPost, "/v1/requests/"+reqID+"/fulfill", nil, &fulfilled))
	assert.Equal(t, "Fulfilled", fulfilled["status"])

	// The feed recorded the workflow on the request entity.
	var feed struct {
		Activities []types.ActivityEntry `json:"activities"`
	}
	require.Equal(t, http.StatusOK, asAdmin(t, srv, http.MethodGet, "/v1/activity/entity/request/"+reqID, nil, &feed))
	seen := map[string]bool{}
	for _, e := range feed.Activities {
		seen[e.EventType] = true
	}
	assert.True(t, seen["request_submitted"])
	assert.True(t, seen["request_fulfilled"])
}

func TestRejectUnknownRequest(t *testing.T) {
	srv, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, asAdmin(t, srv, http.MethodPost, "/v1/requests/r-999/reject", nil, nil))
}

func TestLayoutSessionFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	var opened struct {
		Session   string         `json:"session"`
		Available []string       `json:"available"`
		Layout    map[string]any `json:"layout"`
	}
	require.Equal(t, http.StatusCreated, asAdmin(t, srv, http.MethodPost, "/v1/layouts/userProfile/session", nil, &opened))
	require.NotEmpty(t, opened.Session)

	opsPath := "/v1/layout-sessions/" + opened.Session + "/ops"
	require.Equal(t, http.StatusOK, asAdmin(t, srv, http.MethodPost, opsPath,
		map[string]any{"op": "add_tab", "tab_id": "extra", "title": "Extra"}, nil))
	require.Equal(t, http.StatusOK, asAdmin(t, srv, http.MethodPost, opsPath,
		map[string]any{"op": "add_section", "tab_id": "extra", "section_id": "misc", "title": "Misc", "columns": 1}, nil))

	var state struct {
		Available []string `json:"available"`
	}
	require.Equal(t, http.StatusOK, asAdmin(t, srv, http.MethodPost, opsPath,
		map[string]any{"op": "assign_field", "tab_id": "extra", "section_id": "misc", "field": "phone", "index": 0}, &state))
	assert.NotContains(t, state.Available, "phone")

	require.Equal(t, http.StatusOK, asAdmin(t, srv, http.MethodPost, "/v1/layout-sessions/"+opened.Session+"/commit", nil, nil))

	// The committed layout now carries the new tab, and phone moved out of
	// its original section.
	var committed struct {
		Tabs []struct {
			ID       string `json:"id"`
			Sections []struct {
				ID     string   `json:"id"`
				Fields []string `json:"fields"`
			} `json:"sections"`
		} `json:"tabs"`
	}
	require.Equal(t, http.StatusOK, asUser(t, srv, http.MethodGet, "/v1/layouts/userProfile", nil, &committed))
	require.Len(t, committed.Tabs, 3)
	for _, tab := range committed.Tabs {
		for _, sec := range tab.Sections {
			if sec.ID == "contact" {
				assert.NotContains(t, sec.Fields, "phone")
			}
			if sec.ID == "misc" {
				assert.Equal(t, []string{"phone"}, sec.Fields)
			}
		}
	}

	// The session is gone after commit.
	assert.Equal(t, http.StatusNotFound, asAdmin(t, srv, http.MethodPost, opsPath,
		map[string]any{"op": "add_tab", "tab_id": "t2", "title": "T2"}, nil))
}

func TestLayoutOpOnUnknownTab(t *testing.T) {
	srv, _ := newTestServer(t)

	var opened struct {
		Session string `json:"session"`
	}
	require.Equal(t, http.StatusCreated, asAdmin(t, srv, http.MethodPost, "/v1/layouts/licenseInstance/session", nil, &opened))

	status := asAdmin(t, srv, http.MethodPost, "/v1/layout-sessions/"+opened.Session+"/ops",
		map[string]any{"op": "remove_tab", "tab_id": "nope"}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLayoutValidateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var res map[string]any
	doc := map[string]any{"context": "userProfile", "tabs": []any{}}
	require.Equal(t, http.StatusOK, asUser(t, srv, http.MethodPost, "/v1/layouts/validate", doc, &res))
	assert.Equal(t, true, res["valid"])

	res = nil
	bad := map[string]any{"context": "bogus", "tabs": []any{}}
	require.Equal(t, http.StatusOK, asUser(t, srv, http.MethodPost, "/v1/layouts/validate", bad, &res))
	assert.Equal(t, false, res["valid"])
	assert.NotEmpty(t, res["error"])
}

func TestFormRenderAndSubmit(t *testing.T) {
	srv, s := newTestServer(t)

	var rendered struct {
		Mode  string         `json:"mode"`
		Draft map[string]any `json:"draft"`
		Tabs  []any          `json:"tabs"`
	}
	require.Equal(t, http.StatusOK, asUser(t, srv, http.MethodPost, "/v1/forms/userProfile/render",
		map[string]any{"entity_id": "u-2"}, &rendered))
	assert.Equal(t, "edit", rendered.Mode)
	assert.Equal(t, "Marcus", rendered.Draft["first_name"])
	assert.NotEmpty(t, rendered.Tabs)

	// Blanking a required field fails validation.
	var errBody map[string]string
	status := asAdmin(t, srv, http.MethodPost, "/v1/forms/userProfile/submit",
		map[string]any{"entity_id": "u-2", "values": map[string]any{"first_name": ""}}, &errBody)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])

	require.Equal(t, http.StatusOK, asAdmin(t, srv, http.MethodPost, "/v1/forms/userProfile/submit",
		map[string]any{"entity_id": "u-2", "values": map[string]any{"department": "Engineering"}}, nil))
	updated, ok := s.FindUser("u-2")
	require.True(t, ok)
	assert.Equal(t, "Engineering", updated.Department)

	assert.Equal(t, http.StatusNotFound, asUser(t, srv, http.MethodPost, "/v1/forms/userProfile/render",
		map[string]any{"entity_id": "u-999"}, nil))
}

func TestFormCreateAssetGeneratesID(t *testing.T) {
	srv, s := newTestServer(t)

	var saved types.Asset
	require.Equal(t, http.StatusOK, asAdmin(t, srv, http.MethodPost, "/v1/forms/licenseInstance/submit",
		map[string]any{"values": map[string]any{
			"family": "f-1",
			"title":  "Widget Pro Standard",
			"status": "Available",
		}}, &saved))

	assert.Equal(t, "SOFT-WID-0003", saved.ID)
	_, ok := s.FindAsset("SOFT-WID-0003")
	assert.True(t, ok)
}

func TestViewSortStatePersists(t *testing.T) {
	srv, _ := newTestServer(t)

	var sorted map[string]any
	require.Equal(t, http.StatusOK, asUser(t, srv, http.MethodPost, "/v1/views/assets/sort", map[string]any{"key": "id"}, &sorted))
	assert.Equal(t, "id", sorted["key"])
	assert.Equal(t, 1.0, sorted["direction"])

	var view struct {
		Rows []map[string]any `json:"rows"`
		Sort map[string]any   `json:"sort"`
	}
	require.Equal(t, http.StatusOK, asUser(t, srv, http.MethodGet, "/v1/views/assets", nil, &view))
	assert.Equal(t, "id", view.Sort["key"])
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "SOFT-WID-0001", view.Rows[0]["id"])

	// Second toggle flips to descending, and the state survives between
	// requests.
	require.Equal(t, http.StatusOK, asUser(t, srv, http.MethodPost, "/v1/views/assets/sort", map[string]any{"key": "id"}, &sorted))
	assert.Equal(t, 2.0, sorted["direction"])
	require.Equal(t, http.StatusOK, asUser(t, srv, http.MethodGet, "/v1/views/assets", nil, &view))
	assert.Equal(t, "SOFT-WID-0002", view.Rows[0]["id"])
}

func TestViewFilter(t *testing.T) {
	srv, _ := newTestServer(t)

	require.Equal(t, http.StatusNoContent, asUser(t, srv, http.MethodPost, "/v1/views/assets/filter",
		map[string]any{"global": "0002"}, nil))

	var view struct {
		Rows []map[string]any `json:"rows"`
	}
	require.Equal(t, http.StatusOK, asUser(t, srv, http.MethodGet, "/v1/views/assets", nil, &view))
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "SOFT-WID-0002", view.Rows[0]["id"])
}

func TestDashboard(t *testing.T) {
	srv, _ := newTestServer(t)

	var dash struct {
		AssetsByStatus  map[string]int `json:"assets_by_status"`
		PendingRequests int            `json:"pending_requests"`
	}
	require.Equal(t, http.StatusOK, asUser(t, srv, http.MethodGet, "/v1/dashboard", nil, &dash))
	assert.Equal(t, 1, dash.AssetsByStatus["Active"])
	assert.Equal(t, 1, dash.AssetsByStatus["Available"])
	assert.Equal(t, 0, dash.PendingRequests)
}

func TestBulkCreateEndpoint(t *testing.T) {
	srv, s := newTestServer(t)

	var created []types.Asset
	require.Equal(t, http.StatusCreated, asAdmin(t, srv, http.MethodPost, "/v1/families/f-1/assets/bulk",
		map[string]any{"variant_name": "Standard", "quantity": 2, "common": map[string]any{"Cost": 49}}, &created))
	require.Len(t, created, 2)
	assert.Equal(t, "SOFT-WID-0003", created[0].ID)
	assert.Equal(t, "SOFT-WID-0004", created[1].ID)
	assert.Len(t, s.Assets(), 4)
}

func TestExportDownload(t *testing.T) {
	srv, _ := newTestServer(t)

	var snap struct {
		Users  []types.User  `json:"users"`
		Assets []types.Asset `json:"assets"`
	}
	require.Equal(t, http.StatusOK, asAdmin(t, srv, http.MethodGet, "/v1/export", nil, &snap))
	assert.Len(t, snap.Users, 3)
	assert.Len(t, snap.Assets, 2)
}
