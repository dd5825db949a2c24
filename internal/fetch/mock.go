package fetch

import (
	"context"
	"log"

	"github.com/assetdesk/assetdesk/internal/types"
)

// MockSource serves a built-in demo dataset. Records are kept in the raw
// wire shape and run through the same mappers as a real backing store, so
// demo mode exercises the full load path.
type MockSource struct{}

// NewMockSource creates the demo source.
func NewMockSource() *MockSource {
	log.Printf("fetch: using built-in demo dataset")
	return &MockSource{}
}

func (m *MockSource) ListUsers(ctx context.Context) ([]types.User, error) {
	out := make([]types.User, 0, len(demoUsers))
	for _, rec := range demoUsers {
		out = append(out, MapUser(rec))
	}
	return out, nil
}

func (m *MockSource) ListFamilies(ctx context.Context) ([]types.AssetFamily, error) {
	out := make([]types.AssetFamily, 0, len(demoFamilies))
	for _, rec := range demoFamilies {
		out = append(out, MapFamily(rec))
	}
	return out, nil
}

func (m *MockSource) ListAssets(ctx context.Context) ([]types.Asset, error) {
	out := make([]types.Asset, 0, len(demoAssets))
	for _, rec := range demoAssets {
		out = append(out, MapAsset(rec))
	}
	return out, nil
}

func (m *MockSource) ListRequests(ctx context.Context) ([]types.Request, error) {
	out := make([]types.Request, 0, len(demoRequests))
	for _, rec := range demoRequests {
		out = append(out, MapRequest(rec))
	}
	return out, nil
}

func (m *MockSource) ListVendors(ctx context.Context) ([]types.Vendor, error) {
	out := make([]types.Vendor, 0, len(demoVendors))
	for _, rec := range demoVendors {
		out = append(out, MapVendor(rec))
	}
	return out, nil
}

var demoUsers = []map[string]any{
	{
		"id": "u-001", "first_name": "Dana", "last_name": "Whitfield",
		"email": "dana.whitfield@example.com", "department": "IT",
		"site": "Headquarters", "role": "admin",
		"created_at": "2024-02-01T09:00:00Z", "updated_at": "2024-02-01T09:00:00Z",
	},
	{
		"id": "u-002", "first_name": "Marcus", "last_name": "Okafor",
		"email": "marcus.okafor@example.com", "department": "Engineering",
		"site": "Headquarters", "role": "user",
		"created_at": "2024-03-12T09:00:00Z", "updated_at": "2024-03-12T09:00:00Z",
	},
	{
		"id": "u-003", "first_name": "Priya", "last_name": "Raman",
		"email": "priya.raman@example.com", "department": "Design",
		"site": "Remote", "role": "user",
		"created_at": "2024-05-20T09:00:00Z", "updated_at": "2024-05-20T09:00:00Z",
	},
	{
		"id": "u-004", "first_name": "Tom", "last_name": "Beranek",
		"email": "tom.beranek@example.com", "department": "Finance",
		"site": "Branch Office", "role": "user",
		"created_at": "2024-06-02T09:00:00Z", "updated_at": "2024-06-02T09:00:00Z",
	},
}

var demoVendors = []map[string]any{
	{"id": "v-001", "name": "Widgetsoft", "website": "https://widgetsoft.example.com"},
	{"id": "v-002", "name": "Lapland Computers", "website": "https://lapland.example.com", "contact": "sales@lapland.example.com"},
}

var demoFamilies = []map[string]any{
	{
		"id": "f-001", "type": "software", "name": "Widget Pro",
		"product_code": "WID", "category": "Productivity", "vendor_id": "v-001",
		"assignment_model": "single",
		"variants": []any{
			map[string]any{"name": "Standard", "license_type": "subscription", "cost": 12.0},
			map[string]any{"name": "Enterprise", "license_type": "subscription", "cost": 29.0},
		},
		"created_at": "2024-02-15T10:00:00Z", "updated_at": "2024-02-15T10:00:00Z",
	},
	{
		"id": "f-002", "type": "software", "name": "TeamBoard",
		"product_code": "TBD", "category": "Collaboration", "vendor_id": "v-001",
		"assignment_model": "multiple",
		"variants": []any{
			map[string]any{"name": "Team", "license_type": "volume", "cost": 99.0},
		},
		"created_at": "2024-03-01T10:00:00Z", "updated_at": "2024-03-01T10:00:00Z",
	},
	{
		"id": "f-003", "type": "hardware", "name": "Laptop 14",
		"product_code": "LAP", "category": "Computers", "vendor_id": "v-002",
		"assignment_model": "single",
		"model": "L14 Gen 5", "manufacturer": "Lapland Computers",
		"created_at": "2024-02-20T10:00:00Z", "updated_at": "2024-02-20T10:00:00Z",
	},
}

var demoAssets = []map[string]any{
	{
		"id": "SOFT-WID-0001", "family_id": "f-001", "type": "software",
		"title": "Widget Pro Standard", "status": "Active",
		"variant_name": "Standard", "cost": 12.0,
		"purchase_date": "2024-03-01T00:00:00Z", "renewal_date": "2025-03-01T00:00:00Z",
		"assigned_user": "u-002",
		"assignment_history": []any{
			map[string]any{
				"date": "2024-03-01T10:30:00Z", "type": "Assigned",
				"assigned_to": "Marcus Okafor", "notes": "Initial assignment",
			},
		},
		"created_at": "2024-03-01T10:30:00Z", "updated_at": "2024-03-01T10:30:00Z",
	},
	{
		"id": "SOFT-WID-0002", "family_id": "f-001", "type": "software",
		"title": "Widget Pro Enterprise", "status": "Available",
		"variant_name": "Enterprise", "cost": 29.0,
		"purchase_date": "2024-03-01T00:00:00Z", "renewal_date": "2025-03-01T00:00:00Z",
		"created_at": "2024-03-01T10:31:00Z", "updated_at": "2024-03-01T10:31:00Z",
	},
	{
		"id": "SOFT-TBD-0001", "family_id": "f-002", "type": "software",
		"title": "TeamBoard Team", "status": "Active",
		"variant_name": "Team", "cost": 99.0,
		"assigned_users": []any{"u-002", "u-003"},
		"active_users": []any{"u-002"},
		"assignment_history": []any{
			map[string]any{
				"date": "2024-04-10T09:00:00Z", "type": "Assigned",
				"notes": "Assigned to 2 users",
			},
		},
		"created_at": "2024-04-10T09:00:00Z", "updated_at": "2024-04-10T09:00:00Z",
	},
	{
		"id": "HARD-LAP-0001", "family_id": "f-003", "type": "hardware",
		"title": "Laptop 14", "status": "Active",
		"cost": 1450.0, "serial_number": "L14-88213",
		"purchase_date": "2024-03-05T00:00:00Z", "warranty_until": "2027-03-05T00:00:00Z",
		"assigned_user": "u-003",
		"assignment_history": []any{
			map[string]any{
				"date": "2024-03-06T14:00:00Z", "type": "Assigned",
				"assigned_to": "Priya Raman", "notes": "Initial assignment",
			},
		},
		"created_at": "2024-03-05T12:00:00Z", "updated_at": "2024-03-06T14:00:00Z",
	},
	{
		"id": "HARD-LAP-0002", "family_id": "f-003", "type": "hardware",
		"title": "Laptop 14", "status": "In Repair",
		"cost": 1450.0, "serial_number": "L14-88214",
		"purchase_date": "2024-03-05T00:00:00Z", "warranty_until": "2027-03-05T00:00:00Z",
		"notes":      "Screen flicker, sent to vendor 2025-06-11",
		"created_at": "2024-03-05T12:00:00Z", "updated_at": "2025-06-11T08:00:00Z",
	},
}

var demoRequests = []map[string]any{
	{
		"id": "r-001", "type": "software", "family_id": "f-001",
		"item": "Widget Pro", "status": "Pending",
		"requested_by": map[string]any{
			"id": "u-004", "full_name": "Tom Beranek", "email": "tom.beranek@example.com",
		},
		"notes":        "Need it for quarterly reporting",
		"request_date": "2025-06-02T11:15:00Z",
	},
}
