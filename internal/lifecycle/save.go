package lifecycle

import (
	"time"

	"github.com/assetdesk/assetdesk/internal/types"
)

// SaveAsset finalizes a form draft into the asset that replaces the prior
// record. prev == nil is the creation path: the draft receives a generated
// identifier (unless the form already populated one) and its history starts
// as the derived initial entries. On the edit path derived entries are
// appended to the prior history, which is carried over untouched.
func (e *Engine) SaveAsset(prev *types.Asset, draft types.Asset, family *types.AssetFamily, existing []types.Asset, name NameResolver, now time.Time) (types.Asset, error) {
	if err := CheckFamilyMatch(&draft, family); err != nil {
		return types.Asset{}, err
	}

	if prev == nil {
		if draft.ID == "" {
			id, err := e.NextAssetID(family, existing)
			if err != nil {
				return types.Asset{}, err
			}
			draft.ID = id
		}
		draft.CreatedAt = now
		draft.UpdatedAt = now
		draft.AssignmentHistory = DeriveHistory(nil, &draft, name, now)
		return draft, nil
	}

	derived := DeriveHistory(prev, &draft, name, now)
	history := append(append([]types.HistoryEntry(nil), prev.AssignmentHistory...), derived...)
	draft.AssignmentHistory = history
	draft.CreatedAt = prev.CreatedAt
	draft.UpdatedAt = now
	return draft, nil
}

// CommonFields are the values shared by every unit in a bulk creation.
type CommonFields struct {
	Cost         float64
	PurchaseDate *time.Time
	RenewalDate  *time.Time
}

// BulkCreate generates quantity new assets under a family with sequential
// identifiers continuing from the existing per-family count. Units share the
// common fields, default to Available and start with empty history. The
// sequence is an explicit local counter here, not a per-unit recount.
func (e *Engine) BulkCreate(family *types.AssetFamily, variantName string, quantity int, common CommonFields, existing []types.Asset, now time.Time) ([]types.Asset, error) {
	core := family.Core()
	if core == nil {
		return nil, errNoVariant
	}
	count := 0
	for _, a := range existing {
		if a.FamilyID == core.ID {
			count++
		}
	}

	out := make([]types.Asset, 0, quantity)
	for i := 0; i < quantity; i++ {
		seq := count + i + 1
		title := core.Name
		if variantName != "" {
			title = core.Name + " " + variantName
		}
		out = append(out, types.Asset{
			ID:           e.FormatAssetID(family.Type, core.ProductCode, seq),
			FamilyID:     core.ID,
			Type:         family.Type,
			Title:        title,
			Status:       types.StatusAvailable,
			VariantName:  variantName,
			Cost:         common.Cost,
			PurchaseDate: common.PurchaseDate,
			RenewalDate:  common.RenewalDate,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return out, nil
}
