// Package types provides the canonical entity and value types shared across
// the asset management engine. Entities are plain structs held in the
// in-memory application store; JSON tags define both the API shape and the
// snapshot export format.
package types

import (
	"encoding/json"
	"time"
)

// AssetType distinguishes the two product lines tracked by the system.
type AssetType string

const (
	AssetSoftware AssetType = "software"
	AssetHardware AssetType = "hardware"
)

// TypePrefix returns the instance-level identifier prefix for the asset type.
func (t AssetType) TypePrefix() string {
	if t == AssetHardware {
		return "HARD"
	}
	return "SOFT"
}

// AssignmentModel is the per-family policy of whether instances take one
// owner or many.
type AssignmentModel string

const (
	AssignSingle   AssignmentModel = "single"
	AssignMultiple AssignmentModel = "multiple"
)

// AssetStatus enumerates the instance lifecycle states.
type AssetStatus string

const (
	StatusActive    AssetStatus = "Active"
	StatusAvailable AssetStatus = "Available"
	StatusExpired   AssetStatus = "Expired"
	StatusPending   AssetStatus = "Pending"
	StatusSuspended AssetStatus = "Suspended"
	StatusInRepair  AssetStatus = "In Repair"
	StatusRetired   AssetStatus = "Retired"
	StatusInStorage AssetStatus = "In Storage"
	StatusInactive  AssetStatus = "Inactive"
)

// Role gates authorization for profile visibility, cost figures and the
// admin-only views.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is a person record. PlatformAccounts and History are independent of
// asset assignment bookkeeping.
type User struct {
	ID               string            `json:"id"`
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone,omitempty"`
	Department       string            `json:"department,omitempty"`
	Site             string            `json:"site,omitempty"`
	Role             Role              `json:"role"`
	SocialLinks      map[string]string `json:"social_links,omitempty"`
	PlatformAccounts []PlatformAccount `json:"platform_accounts,omitempty"`
	History          []HistoryEntry    `json:"history,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// FullName returns "First Last" for display and history snapshots.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// PlatformAccount is an external account tied to a user profile.
type PlatformAccount struct {
	Platform string `json:"platform"`
	Username string `json:"username"`
	URL      string `json:"url,omitempty"`
}

// Vendor is a manufacturer or software vendor referenced by families.
type Vendor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// LicenseVariant is a purchasable tier within a software profile.
type LicenseVariant struct {
	Name        string  `json:"name"`
	LicenseType string  `json:"license_type"` // "subscription", "perpetual", "volume"
	Cost        float64 `json:"cost"`
}

// FamilyCore carries the fields shared by both family variants. The
// software/hardware split is a proper tagged union: AssetType is the
// discriminator and variant-only fields live on the variant structs.
type FamilyCore struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	ProductCode     string          `json:"product_code"`
	Category        string          `json:"category,omitempty"`
	VendorID        string          `json:"vendor_id,omitempty"`
	AssignmentModel AssignmentModel `json:"assignment_model"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SoftwareProfile is the software family variant; it owns an ordered list
// of license variants.
type SoftwareProfile struct {
	FamilyCore
	Variants []LicenseVariant `json:"variants,omitempty"`
}

// HardwareProduct is the hardware family variant.
type HardwareProduct struct {
	FamilyCore
	Model        string `json:"model,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

// AssetFamily is the union of the two family variants. Exactly one variant
// pointer is non-nil; Type is the discriminator.
type AssetFamily struct {
	Type     AssetType        `json:"type"`
	Software *SoftwareProfile `json:"software,omitempty"`
	Hardware *HardwareProduct `json:"hardware,omitempty"`
}

// Core returns the shared fields regardless of variant, or nil for a
// malformed family with no variant set.
func (f *AssetFamily) Core() *FamilyCore {
	switch {
	case f.Software != nil:
		return &f.Software.FamilyCore
	case f.Hardware != nil:
		return &f.Hardware.FamilyCore
	default:
		return nil
	}
}

// ID returns the family identifier, or "" for a malformed family.
func (f *AssetFamily) ID() string {
	if c := f.Core(); c != nil {
		return c.ID
	}
	return ""
}

// HistoryEntryType enumerates the append-only assignment log record kinds.
type HistoryEntryType string

const (
	HistoryAssigned    HistoryEntryType = "Assigned"
	HistoryReturned    HistoryEntryType = "Returned"
	HistoryLost        HistoryEntryType = "Lost"
	HistoryReassigned  HistoryEntryType = "Reassigned"
	HistoryUsageUpdate HistoryEntryType = "Usage Update"
)

// HistoryEntry is an immutable assignment log record. AssignedTo and
// AssignedFrom are name snapshots, not live references.
type HistoryEntry struct {
	Date         time.Time        `json:"date"`
	Type         HistoryEntryType `json:"type"`
	AssignedTo   string           `json:"assigned_to,omitempty"`
	AssignedFrom string           `json:"assigned_from,omitempty"`
	Notes        string           `json:"notes,omitempty"`
}

// Asset is one concrete trackable unit (a license seat or a device).
// AssignedUser and AssignedUsers are mutually exclusive depending on the
// owning family's assignment model. ActiveUsers tracks usage independently
// of ownership.
type Asset struct {
	ID                string         `json:"id"` // business identifier, e.g. SOFT-WID-0001
	FamilyID          string         `json:"family_id"`
	Type              AssetType      `json:"type"`
	Title             string         `json:"title"`
	Status            AssetStatus    `json:"status"`
	VariantName       string         `json:"variant_name,omitempty"`
	Cost              float64        `json:"cost,omitempty"`
	PurchaseDate      *time.Time     `json:"purchase_date,omitempty"`
	RenewalDate       *time.Time     `json:"renewal_date,omitempty"`
	WarrantyUntil     *time.Time     `json:"warranty_until,omitempty"`
	SerialNumber      string         `json:"serial_number,omitempty"`
	AssignedUser      string         `json:"assigned_user,omitempty"`
	AssignedUsers     []string       `json:"assigned_users,omitempty"`
	ActiveUsers       []string       `json:"active_users,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	AssignmentHistory []HistoryEntry `json:"assignment_history,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// RequestStatus enumerates the request workflow states.
type RequestStatus string

const (
	RequestPending    RequestStatus = "Pending"
	RequestApproved   RequestStatus = "Approved"
	RequestRejected   RequestStatus = "Rejected"
	RequestInProgress RequestStatus = "In Progress"
	RequestFulfilled  RequestStatus = "Fulfilled"
)

// Request is a user's ask for an asset family. RequestedBy is an embedded
// snapshot of the requester resolved at submission time.
type Request struct {
	ID           string        `json:"id"`
	Type         AssetType     `json:"type"`
	FamilyID     string        `json:"family_id"`
	Item         string        `json:"item"` // family display name at submission
	RequestedBy  RequestUser   `json:"requested_by"`
	Status       RequestStatus `json:"status"`
	Notes        string        `json:"notes,omitempty"`
	RequestDate  time.Time     `json:"request_date"`
	LinkedTaskID string        `json:"linked_task_id,omitempty"`
}

// RequestUser is the requester snapshot embedded in a request.
type RequestUser struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
}

// TaskStatus enumerates fulfillment task states.
type TaskStatus string

const (
	TaskToDo       TaskStatus = "To Do"
	TaskInProgress TaskStatus = "In Progress"
	TaskDone       TaskStatus = "Done"
)

// TaskPriority enumerates fulfillment task priorities.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "High"
	PriorityMedium TaskPriority = "Medium"
	PriorityLow    TaskPriority = "Low"
)

// Task is a fulfillment work item created exactly once per request approval.
// AssigneeID must refer to an admin-role user.
type Task struct {
	ID          string       `json:"id"`
	RequestID   string       `json:"request_id"`
	AssigneeID  string       `json:"assignee_id"`
	Priority    TaskPriority `json:"priority"`
	DueDate     time.Time    `json:"due_date"`
	Status      TaskStatus   `json:"status"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ActivityEntry is one record in the activity feed derived from domain
// events. It is an observability projection, separate from the per-asset
// assignment history.
type ActivityEntry struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Summary    string          `json:"summary"`
	Category   string          `json:"category"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}
