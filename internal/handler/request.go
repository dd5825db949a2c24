package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/assetdesk/assetdesk/internal/lifecycle"
	"github.com/assetdesk/assetdesk/internal/store"
	"github.com/assetdesk/assetdesk/internal/types"
)

// RequestHandler serves the asset request workflow.
type RequestHandler struct {
	store *store.Store
}

// NewRequestHandler creates a RequestHandler.
func NewRequestHandler(s *store.Store) *RequestHandler {
	return &RequestHandler{store: s}
}

// List returns requests. Non-admin callers see only their own.
// GET /v1/requests
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	requests := h.store.Requests()
	if v.Role != types.RoleAdmin {
		own := requests[:0:0]
		for _, req := range requests {
			if req.RequestedBy.ID == v.UserID {
				own = append(own, req)
			}
		}
		requests = own
	}
	if requests == nil {
		requests = []types.Request{}
	}
	writeJSON(w, http.StatusOK, requests)
}

// Submit files a request for a family on behalf of the caller.
// POST /v1/requests
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FamilyID string `json:"family_id"`
		UserID   string `json:"user_id,omitempty"` // admins may file for others
		Notes    string `json:"notes,omitempty"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	v := viewer(r)
	userID := v.UserID
	if body.UserID != "" && v.Role == types.RoleAdmin {
		userID = body.UserID
	}
	req, err := h.store.SubmitRequest(body.FamilyID, userID, body.Notes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "SUBMIT_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// TaskForm returns the pre-populated approval dialog values for a request.
// Admin only.
// GET /v1/requests/{id}/task-form
func (h *RequestHandler) TaskForm(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	req, ok := h.store.FindRequest(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such request")
		return
	}
	if req.Status != types.RequestPending {
		writeError(w, http.StatusConflict, "NOT_PENDING", "request is not pending")
		return
	}
	form := h.store.DefaultTaskForm()
	writeJSON(w, http.StatusOK, map[string]any{
		"assignee_id": form.AssigneeID,
		"priority":    form.Priority,
		"due_date":    form.DueDate,
		"description": form.Description,
	})
}

// Approve completes an approval: the submitted task form creates the
// fulfillment task and moves the request to In Progress. Admin only.
// POST /v1/requests/{id}/approve
func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var body struct {
		AssigneeID  string             `json:"assignee_id"`
		Priority    types.TaskPriority `json:"priority"`
		DueDate     time.Time          `json:"due_date"`
		Description string             `json:"description,omitempty"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	form := h.store.DefaultTaskForm()
	if body.AssigneeID != "" {
		form.AssigneeID = body.AssigneeID
	}
	if body.Priority != "" {
		form.Priority = body.Priority
	}
	if !body.DueDate.IsZero() {
		form.DueDate = body.DueDate
	}
	form.Description = body.Description

	req, task, err := h.store.ApproveRequest(chi.URLParam(r, "id"), form)
	if err != nil {
		h.workflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request": req, "task": task})
}

// Reject moves a pending request directly to Rejected. Admin only.
// POST /v1/requests/{id}/reject
func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	req, err := h.store.RejectRequest(chi.URLParam(r, "id"))
	if err != nil {
		h.workflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// Fulfill moves an in-progress request to Fulfilled. Admin only.
// POST /v1/requests/{id}/fulfill
func (h *RequestHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	req, err := h.store.FulfillRequest(chi.URLParam(r, "id"))
	if err != nil {
		h.workflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *RequestHandler) workflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, lifecycle.ErrNotPending), errors.Is(err, lifecycle.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, lifecycle.ErrAssigneeNotAdmin):
		writeError(w, http.StatusBadRequest, "ASSIGNEE_NOT_ADMIN", err.Error())
	default:
		writeError(w, http.StatusBadRequest, "WORKFLOW_ERROR", err.Error())
	}
}
