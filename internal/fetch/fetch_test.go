package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/assetdesk/assetdesk/internal/types"
)

// flakySource wraps the mock source and fails chosen collections.
type flakySource struct {
	Source
	failUsers    bool
	failAssets   bool
	failRequests bool
}

var errBackend = errors.New("backend unavailable")

func (f *flakySource) ListUsers(ctx context.Context) ([]types.User, error) {
	if f.failUsers {
		return nil, errBackend
	}
	return f.Source.ListUsers(ctx)
}

func (f *flakySource) ListAssets(ctx context.Context) ([]types.Asset, error) {
	if f.failAssets {
		return nil, errBackend
	}
	return f.Source.ListAssets(ctx)
}

func (f *flakySource) ListRequests(ctx context.Context) ([]types.Request, error) {
	if f.failRequests {
		return nil, errBackend
	}
	return f.Source.ListRequests(ctx)
}

func TestLoadMockDataset(t *testing.T) {
	res, err := Load(context.Background(), NewMockSource())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Users) == 0 || len(res.Families) == 0 || len(res.Assets) == 0 {
		t.Fatalf("demo dataset incomplete: %d users, %d families, %d assets",
			len(res.Users), len(res.Families), len(res.Assets))
	}

	// Every asset must reference a loaded family.
	fams := map[string]bool{}
	for _, f := range res.Families {
		fams[f.ID()] = true
	}
	for _, a := range res.Assets {
		if !fams[a.FamilyID] {
			t.Errorf("asset %s references unknown family %s", a.ID, a.FamilyID)
		}
	}

	admins := 0
	for _, u := range res.Users {
		if u.Role == types.RoleAdmin {
			admins++
		}
	}
	if admins == 0 {
		t.Error("demo dataset has no admin user")
	}
}

func TestLoadFailsHardOnUsers(t *testing.T) {
	_, err := Load(context.Background(), &flakySource{Source: NewMockSource(), failUsers: true})
	if !errors.Is(err, errBackend) {
		t.Fatalf("expected user load failure, got %v", err)
	}
}

func TestLoadDegradesPerCollection(t *testing.T) {
	res, err := Load(context.Background(), &flakySource{
		Source:       NewMockSource(),
		failAssets:   true,
		failRequests: true,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Assets == nil || len(res.Assets) != 0 {
		t.Errorf("assets should degrade to empty, got %v", res.Assets)
	}
	if res.Requests == nil || len(res.Requests) != 0 {
		t.Errorf("requests should degrade to empty, got %v", res.Requests)
	}
	if len(res.Families) == 0 || len(res.Vendors) == 0 {
		t.Error("healthy collections should still load")
	}
}

func TestMapUserDefaults(t *testing.T) {
	u := MapUser(map[string]any{"id": "u-9", "first_name": "Sam", "last_name": "Lee"})
	if u.Role != types.RoleUser {
		t.Errorf("missing role should default to user, got %q", u.Role)
	}
	u = MapUser(map[string]any{"id": "u-9", "role": "superuser"})
	if u.Role != types.RoleUser {
		t.Errorf("unknown role should default to user, got %q", u.Role)
	}
	u = MapUser(map[string]any{"id": "u-9", "role": "admin"})
	if u.Role != types.RoleAdmin {
		t.Errorf("admin role lost: %q", u.Role)
	}
}

func TestMapAssetDefaults(t *testing.T) {
	a := MapAsset(map[string]any{
		"id":        "SOFT-WID-0009",
		"family_id": "f-1",
		"cost":      float64(49),
		"assignment_history": []any{
			map[string]any{"type": "Assigned", "assigned_to": "Dana Whitfield", "date": "2025-01-15T09:00:00Z"},
		},
	})
	if a.Status != types.StatusAvailable {
		t.Errorf("missing status should default to Available, got %q", a.Status)
	}
	if a.Type != types.AssetSoftware {
		t.Errorf("missing type should default to software, got %q", a.Type)
	}
	if a.PurchaseDate != nil {
		t.Error("missing purchase_date should map to nil")
	}
	if len(a.AssignmentHistory) != 1 || a.AssignmentHistory[0].AssignedTo != "Dana Whitfield" {
		t.Errorf("history not mapped: %+v", a.AssignmentHistory)
	}
}

func TestMapFamilyVariants(t *testing.T) {
	hw := MapFamily(map[string]any{
		"id": "f-2", "name": "Laptop 14", "type": "hardware", "manufacturer": "Framework",
	})
	if hw.Hardware == nil || hw.Software != nil {
		t.Fatalf("hardware record must map to the hardware variant: %+v", hw)
	}
	if hw.Hardware.Manufacturer != "Framework" {
		t.Errorf("manufacturer lost: %q", hw.Hardware.Manufacturer)
	}
	if hw.Hardware.AssignmentModel != types.AssignSingle {
		t.Errorf("assignment model should default to single, got %q", hw.Hardware.AssignmentModel)
	}

	sw := MapFamily(map[string]any{
		"id": "f-1", "name": "Widget Pro", "assignment_model": "multiple",
		"variants": []any{
			map[string]any{"name": "Standard", "license_type": "subscription", "cost": float64(49)},
		},
	})
	if sw.Software == nil {
		t.Fatal("software record must map to the software variant")
	}
	if sw.Software.AssignmentModel != types.AssignMultiple {
		t.Errorf("explicit assignment model lost: %q", sw.Software.AssignmentModel)
	}
	if len(sw.Software.Variants) != 1 || sw.Software.Variants[0].Cost != 49 {
		t.Errorf("variants not mapped: %+v", sw.Software.Variants)
	}
}

func TestMapRequestDefaults(t *testing.T) {
	r := MapRequest(map[string]any{
		"id": "r-9", "family_id": "f-1", "item": "Widget Pro",
		"requested_by": map[string]any{"id": "u-2", "full_name": "Marcus Okafor"},
	})
	if r.Status != types.RequestPending {
		t.Errorf("missing status should default to Pending, got %q", r.Status)
	}
	if r.RequestedBy.FullName != "Marcus Okafor" {
		t.Errorf("requester snapshot lost: %+v", r.RequestedBy)
	}
}
