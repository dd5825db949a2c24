// Package event defines the domain events emitted by store transitions.
// Events feed the activity feed and the live websocket stream; they are
// observability records, not the source of truth for any entity state.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/assetdesk/assetdesk/internal/types"
)

// DomainEvent is the canonical shape of every domain event.
type DomainEvent struct {
	ID         string
	EventType  string
	OccurredAt time.Time
	EntityType string // "asset", "family", "request", "task", "user", "layout"
	EntityID   string
	Summary    string
	Category   string // "asset", "workflow", "config", "profile"
	Payload    json.RawMessage
}

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// ── Asset events ─────────────────────────────────────────────────────────────

// AssetSavedPayload carries the identity fields of a created or edited asset.
type AssetSavedPayload struct {
	AssetID      string `json:"asset_id"`
	FamilyID     string `json:"family_id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	HistoryDelta int    `json:"history_delta"` // entries appended by this save
}

func NewAssetCreated(a types.Asset) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  "asset_created",
		OccurredAt: time.Now(),
		EntityType: "asset",
		EntityID:   a.ID,
		Summary:    fmt.Sprintf("Asset %s created", a.ID),
		Category:   "asset",
		Payload: mustJSON(AssetSavedPayload{
			AssetID: a.ID, FamilyID: a.FamilyID, Title: a.Title,
			Status: string(a.Status), HistoryDelta: len(a.AssignmentHistory),
		}),
	}
}

func NewAssetUpdated(a types.Asset, appended int) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  "asset_updated",
		OccurredAt: time.Now(),
		EntityType: "asset",
		EntityID:   a.ID,
		Summary:    fmt.Sprintf("Asset %s updated", a.ID),
		Category:   "asset",
		Payload: mustJSON(AssetSavedPayload{
			AssetID: a.ID, FamilyID: a.FamilyID, Title: a.Title,
			Status: string(a.Status), HistoryDelta: appended,
		}),
	}
}

// BulkCreatedPayload summarizes one bulk creation.
type BulkCreatedPayload struct {
	FamilyID string `json:"family_id"`
	Variant  string `json:"variant,omitempty"`
	Count    int    `json:"count"`
	FirstID  string `json:"first_id,omitempty"`
	LastID   string `json:"last_id,omitempty"`
}

func NewAssetsBulkCreated(familyID, variant string, created []types.Asset) DomainEvent {
	p := BulkCreatedPayload{FamilyID: familyID, Variant: variant, Count: len(created)}
	if len(created) > 0 {
		p.FirstID = created[0].ID
		p.LastID = created[len(created)-1].ID
	}
	return DomainEvent{
		ID:         newID(),
		EventType:  "assets_bulk_created",
		OccurredAt: time.Now(),
		EntityType: "family",
		EntityID:   familyID,
		Summary:    fmt.Sprintf("%d assets created under family %s", len(created), familyID),
		Category:   "asset",
		Payload:    mustJSON(p),
	}
}

// ── Family and user events ───────────────────────────────────────────────────

func NewFamilySaved(f types.AssetFamily, created bool) DomainEvent {
	verb := "updated"
	evt := "family_updated"
	if created {
		verb = "created"
		evt = "family_created"
	}
	core := f.Core()
	name, id := "", ""
	if core != nil {
		name, id = core.Name, core.ID
	}
	return DomainEvent{
		ID:         newID(),
		EventType:  evt,
		OccurredAt: time.Now(),
		EntityType: "family",
		EntityID:   id,
		Summary:    fmt.Sprintf("Family %q %s", name, verb),
		Category:   "asset",
		Payload:    mustJSON(map[string]string{"family_id": id, "name": name, "type": string(f.Type)}),
	}
}

func NewUserSaved(u types.User, created bool) DomainEvent {
	verb := "updated"
	evt := "user_updated"
	if created {
		verb = "created"
		evt = "user_created"
	}
	return DomainEvent{
		ID:         newID(),
		EventType:  evt,
		OccurredAt: time.Now(),
		EntityType: "user",
		EntityID:   u.ID,
		Summary:    fmt.Sprintf("User %s %s", u.FullName(), verb),
		Category:   "profile",
		Payload:    mustJSON(map[string]string{"user_id": u.ID, "name": u.FullName()}),
	}
}

// ── Workflow events ──────────────────────────────────────────────────────────

// RequestPayload carries request workflow context.
type RequestPayload struct {
	RequestID    string `json:"request_id"`
	FamilyID     string `json:"family_id"`
	Item         string `json:"item"`
	RequestedBy  string `json:"requested_by"`
	Status       string `json:"status"`
	LinkedTaskID string `json:"linked_task_id,omitempty"`
}

func requestPayload(r types.Request) RequestPayload {
	return RequestPayload{
		RequestID: r.ID, FamilyID: r.FamilyID, Item: r.Item,
		RequestedBy: r.RequestedBy.FullName, Status: string(r.Status),
		LinkedTaskID: r.LinkedTaskID,
	}
}

func NewRequestSubmitted(r types.Request) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  "request_submitted",
		OccurredAt: time.Now(),
		EntityType: "request",
		EntityID:   r.ID,
		Summary:    fmt.Sprintf("%s requested %q", r.RequestedBy.FullName, r.Item),
		Category:   "workflow",
		Payload:    mustJSON(requestPayload(r)),
	}
}

func NewRequestRejected(r types.Request) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  "request_rejected",
		OccurredAt: time.Now(),
		EntityType: "request",
		EntityID:   r.ID,
		Summary:    fmt.Sprintf("Request for %q rejected", r.Item),
		Category:   "workflow",
		Payload:    mustJSON(requestPayload(r)),
	}
}

func NewRequestFulfilled(r types.Request) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  "request_fulfilled",
		OccurredAt: time.Now(),
		EntityType: "request",
		EntityID:   r.ID,
		Summary:    fmt.Sprintf("Request for %q fulfilled", r.Item),
		Category:   "workflow",
		Payload:    mustJSON(requestPayload(r)),
	}
}

// TaskCreatedPayload links the new task to its approving request.
type TaskCreatedPayload struct {
	TaskID     string    `json:"task_id"`
	RequestID  string    `json:"request_id"`
	AssigneeID string    `json:"assignee_id"`
	Priority   string    `json:"priority"`
	DueDate    time.Time `json:"due_date"`
}

// NewTaskCreated records the approval side effect: task persisted, request
// now In Progress.
func NewTaskCreated(t types.Task, r types.Request) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  "task_created",
		OccurredAt: time.Now(),
		EntityType: "task",
		EntityID:   t.ID,
		Summary:    fmt.Sprintf("Task created for request %q", r.Item),
		Category:   "workflow",
		Payload: mustJSON(TaskCreatedPayload{
			TaskID: t.ID, RequestID: t.RequestID, AssigneeID: t.AssigneeID,
			Priority: string(t.Priority), DueDate: t.DueDate,
		}),
	}
}

// ── Configuration events ─────────────────────────────────────────────────────

func NewLayoutCommitted(context string) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  "layout_committed",
		OccurredAt: time.Now(),
		EntityType: "layout",
		EntityID:   context,
		Summary:    fmt.Sprintf("Layout for %s updated", context),
		Category:   "config",
		Payload:    mustJSON(map[string]string{"context": context}),
	}
}
