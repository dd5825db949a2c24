package fetch

import (
	"time"

	"github.com/assetdesk/assetdesk/internal/types"
)

// Mappers convert raw backing-store records (decoded JSON objects) into
// typed entities. Missing or mistyped optional fields fall back to zero
// defaults; a mapper never fails on a partial record.

func mapString(rec map[string]any, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

func mapFloat(rec map[string]any, key string) float64 {
	switch v := rec[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func mapStrings(rec map[string]any, key string) []string {
	raw, ok := rec[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func mapTime(rec map[string]any, key string) time.Time {
	s, ok := rec[key].(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func mapTimePtr(rec map[string]any, key string) *time.Time {
	t := mapTime(rec, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

// MapUser builds a user from a raw record. Role defaults to the
// non-privileged role.
func MapUser(rec map[string]any) types.User {
	role := types.Role(mapString(rec, "role"))
	if role != types.RoleAdmin {
		role = types.RoleUser
	}
	return types.User{
		ID:         mapString(rec, "id"),
		FirstName:  mapString(rec, "first_name"),
		LastName:   mapString(rec, "last_name"),
		Email:      mapString(rec, "email"),
		Phone:      mapString(rec, "phone"),
		Department: mapString(rec, "department"),
		Site:       mapString(rec, "site"),
		Role:       role,
		CreatedAt:  mapTime(rec, "created_at"),
		UpdatedAt:  mapTime(rec, "updated_at"),
	}
}

// MapAsset builds an asset from a raw record. Status defaults to Available
// and history to an empty log.
func MapAsset(rec map[string]any) types.Asset {
	status := types.AssetStatus(mapString(rec, "status"))
	if status == "" {
		status = types.StatusAvailable
	}
	assetType := types.AssetType(mapString(rec, "type"))
	if assetType != types.AssetHardware {
		assetType = types.AssetSoftware
	}
	a := types.Asset{
		ID:            mapString(rec, "id"),
		FamilyID:      mapString(rec, "family_id"),
		Type:          assetType,
		Title:         mapString(rec, "title"),
		Status:        status,
		VariantName:   mapString(rec, "variant_name"),
		Cost:          mapFloat(rec, "cost"),
		PurchaseDate:  mapTimePtr(rec, "purchase_date"),
		RenewalDate:   mapTimePtr(rec, "renewal_date"),
		WarrantyUntil: mapTimePtr(rec, "warranty_until"),
		SerialNumber:  mapString(rec, "serial_number"),
		AssignedUser:  mapString(rec, "assigned_user"),
		AssignedUsers: mapStrings(rec, "assigned_users"),
		ActiveUsers:   mapStrings(rec, "active_users"),
		Notes:         mapString(rec, "notes"),
		CreatedAt:     mapTime(rec, "created_at"),
		UpdatedAt:     mapTime(rec, "updated_at"),
	}
	if history, ok := rec["assignment_history"].([]any); ok {
		for _, h := range history {
			entry, ok := h.(map[string]any)
			if !ok {
				continue
			}
			a.AssignmentHistory = append(a.AssignmentHistory, types.HistoryEntry{
				Date:         mapTime(entry, "date"),
				Type:         types.HistoryEntryType(mapString(entry, "type")),
				AssignedTo:   mapString(entry, "assigned_to"),
				AssignedFrom: mapString(entry, "assigned_from"),
				Notes:        mapString(entry, "notes"),
			})
		}
	}
	return a
}

// MapFamily builds a family from a raw record; the variant is chosen from
// the type discriminator and the assignment model defaults to single.
func MapFamily(rec map[string]any) types.AssetFamily {
	core := types.FamilyCore{
		ID:              mapString(rec, "id"),
		Name:            mapString(rec, "name"),
		ProductCode:     mapString(rec, "product_code"),
		Category:        mapString(rec, "category"),
		VendorID:        mapString(rec, "vendor_id"),
		AssignmentModel: types.AssignmentModel(mapString(rec, "assignment_model")),
		CreatedAt:       mapTime(rec, "created_at"),
		UpdatedAt:       mapTime(rec, "updated_at"),
	}
	if core.AssignmentModel != types.AssignMultiple {
		core.AssignmentModel = types.AssignSingle
	}

	if types.AssetType(mapString(rec, "type")) == types.AssetHardware {
		return types.AssetFamily{
			Type: types.AssetHardware,
			Hardware: &types.HardwareProduct{
				FamilyCore:   core,
				Model:        mapString(rec, "model"),
				Manufacturer: mapString(rec, "manufacturer"),
			},
		}
	}

	sw := &types.SoftwareProfile{FamilyCore: core}
	if variants, ok := rec["variants"].([]any); ok {
		for _, v := range variants {
			entry, ok := v.(map[string]any)
			if !ok {
				continue
			}
			sw.Variants = append(sw.Variants, types.LicenseVariant{
				Name:        mapString(entry, "name"),
				LicenseType: mapString(entry, "license_type"),
				Cost:        mapFloat(entry, "cost"),
			})
		}
	}
	return types.AssetFamily{Type: types.AssetSoftware, Software: sw}
}

// MapRequest builds a request from a raw record. Status defaults to Pending.
func MapRequest(rec map[string]any) types.Request {
	status := types.RequestStatus(mapString(rec, "status"))
	if status == "" {
		status = types.RequestPending
	}
	var by types.RequestUser
	if u, ok := rec["requested_by"].(map[string]any); ok {
		by = types.RequestUser{
			ID:       mapString(u, "id"),
			FullName: mapString(u, "full_name"),
			Email:    mapString(u, "email"),
		}
	}
	return types.Request{
		ID:           mapString(rec, "id"),
		Type:         types.AssetType(mapString(rec, "type")),
		FamilyID:     mapString(rec, "family_id"),
		Item:         mapString(rec, "item"),
		RequestedBy:  by,
		Status:       status,
		Notes:        mapString(rec, "notes"),
		RequestDate:  mapTime(rec, "request_date"),
		LinkedTaskID: mapString(rec, "linked_task_id"),
	}
}

// MapVendor builds a vendor from a raw record.
func MapVendor(rec map[string]any) types.Vendor {
	return types.Vendor{
		ID:      mapString(rec, "id"),
		Name:    mapString(rec, "name"),
		Website: mapString(rec, "website"),
		Contact: mapString(rec, "contact"),
	}
}
