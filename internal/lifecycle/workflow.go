package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/assetdesk/assetdesk/internal/types"
)

// ValidRequestTransitions is the request state machine. "Approved" never
// appears as a reachable target: approving a pending request runs through
// task creation, whose completion moves the request straight to In Progress.
// In Progress → Fulfilled exists but nothing in scope triggers it
// automatically. Rejected and Fulfilled are terminal.
var ValidRequestTransitions = map[types.RequestStatus][]types.RequestStatus{
	types.RequestPending:    {types.RequestRejected, types.RequestInProgress},
	types.RequestInProgress: {types.RequestFulfilled},
	types.RequestRejected:   {},
	types.RequestFulfilled:  {},
}

// ValidateRequestTransition checks whether moving a request from current to
// target is allowed, returning a descriptive error otherwise.
func ValidateRequestTransition(current, target types.RequestStatus) error {
	allowed, ok := ValidRequestTransitions[current]
	if !ok {
		return fmt.Errorf("%w: unknown current status %q", ErrInvalidTransition, current)
	}
	for _, s := range allowed {
		if s == target {
			return nil
		}
	}
	return fmt.Errorf("%w: %q to %q is not allowed", ErrInvalidTransition, current, target)
}

// Workflow errors. ErrUnresolved covers the "no-op with diagnostic" policy:
// callers log it and abort without mutating anything.
var (
	ErrUnresolved        = errors.New("lifecycle: reference could not be resolved")
	ErrNotPending        = errors.New("lifecycle: request is not pending")
	ErrAssigneeNotAdmin  = errors.New("lifecycle: task assignee must be an admin")
	ErrInvalidTransition = errors.New("lifecycle: invalid request transition")
)

// SubmitRequest builds a new pending request for a family on behalf of a
// user. A nil family or user aborts with ErrUnresolved; no request is
// created.
func SubmitRequest(family *types.AssetFamily, requester *types.User, notes string, now time.Time) (types.Request, error) {
	if family == nil || requester == nil {
		return types.Request{}, ErrUnresolved
	}
	core := family.Core()
	if core == nil {
		return types.Request{}, ErrUnresolved
	}
	return types.Request{
		ID:       uuid.New().String(),
		Type:     family.Type,
		FamilyID: core.ID,
		Item:     core.Name,
		RequestedBy: types.RequestUser{
			ID:       requester.ID,
			FullName: requester.FullName(),
			Email:    requester.Email,
		},
		Status:      types.RequestPending,
		Notes:       notes,
		RequestDate: now,
	}, nil
}

// TaskForm is the task-creation step that completes an approval. Submitting
// it is what actually transitions the request; cancelling it leaves the
// request Pending.
type TaskForm struct {
	AssigneeID  string
	Priority    types.TaskPriority
	DueDate     time.Time
	Description string
}

// DefaultTaskForm pre-populates the approval dialog: first admin in the set,
// due three days out, Medium priority.
func DefaultTaskForm(admins []types.User, now time.Time) TaskForm {
	f := TaskForm{
		Priority: types.PriorityMedium,
		DueDate:  now.Add(72 * time.Hour),
	}
	if len(admins) > 0 {
		f.AssigneeID = admins[0].ID
	}
	return f
}

// ApproveRequest completes an approval: it creates the fulfillment task and
// atomically flips the request to In Progress with the task linked. The
// assignee must be an admin-role user from the given set. The request value
// is returned updated; the caller persists both.
func ApproveRequest(req types.Request, form TaskForm, admins []types.User, now time.Time) (types.Request, types.Task, error) {
	if req.Status != types.RequestPending {
		return req, types.Task{}, fmt.Errorf("%w: %s is %s", ErrNotPending, req.ID, req.Status)
	}
	assigneeOK := false
	for _, a := range admins {
		if a.ID == form.AssigneeID && a.Role == types.RoleAdmin {
			assigneeOK = true
			break
		}
	}
	if !assigneeOK {
		return req, types.Task{}, fmt.Errorf("%w: %s", ErrAssigneeNotAdmin, form.AssigneeID)
	}

	task := types.Task{
		ID:          uuid.New().String(),
		RequestID:   req.ID,
		AssigneeID:  form.AssigneeID,
		Priority:    form.Priority,
		DueDate:     form.DueDate,
		Status:      types.TaskToDo,
		Description: form.Description,
		CreatedAt:   now,
	}
	if task.Priority == "" {
		task.Priority = types.PriorityMedium
	}

	req.Status = types.RequestInProgress
	req.LinkedTaskID = task.ID
	return req, task, nil
}

// RejectRequest is a direct status mutation with no side effects beyond it.
func RejectRequest(req types.Request) (types.Request, error) {
	if err := ValidateRequestTransition(req.Status, types.RequestRejected); err != nil {
		return req, err
	}
	req.Status = types.RequestRejected
	return req, nil
}

// FulfillRequest moves an in-progress request to Fulfilled. The transition
// exists in the machine; no operation in scope triggers it automatically.
func FulfillRequest(req types.Request) (types.Request, error) {
	if err := ValidateRequestTransition(req.Status, types.RequestFulfilled); err != nil {
		return req, err
	}
	req.Status = types.RequestFulfilled
	return req, nil
}
