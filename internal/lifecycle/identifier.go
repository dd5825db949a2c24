// Package lifecycle implements the state-transition logic invoked on form
// submission, bulk creation and request approval: identifier generation,
// assignment-history derivation and the request/task workflow. It has no UI
// or transport concerns; functions are pure over the entity values they are
// given.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/assetdesk/assetdesk/internal/types"
)

// errNoVariant marks a family value with neither variant pointer set.
var errNoVariant = errors.New("lifecycle: family has no variant set")

// DefaultSeparator joins the identifier segments unless configuration
// overrides it.
const DefaultSeparator = "-"

// Engine carries the configuration the lifecycle operations need.
type Engine struct {
	// Separator between identifier segments. Empty means DefaultSeparator.
	Separator string
}

func (e *Engine) sep() string {
	if e.Separator == "" {
		return DefaultSeparator
	}
	return e.Separator
}

// FormatAssetID renders the identifier contract:
// {TYPE_PREFIX}{sep}{PRODUCT_CODE}{sep}{SEQUENCE:04d}.
func (e *Engine) FormatAssetID(t types.AssetType, productCode string, sequence int) string {
	s := e.sep()
	return fmt.Sprintf("%s%s%s%s%04d", t.TypePrefix(), s, productCode, s, sequence)
}

// NextAssetID generates the identifier for the next instance under a family.
// The sequence is recomputed from the current per-family instance count each
// time, not read from a persisted counter; under the single-writer model
// this is deterministic, and bulk creation iterates its own local counter
// instead of calling this per unit.
func (e *Engine) NextAssetID(family *types.AssetFamily, existing []types.Asset) (string, error) {
	core := family.Core()
	if core == nil {
		return "", errNoVariant
	}
	count := 0
	for _, a := range existing {
		if a.FamilyID == core.ID {
			count++
		}
	}
	return e.FormatAssetID(family.Type, core.ProductCode, count+1), nil
}

// CheckFamilyMatch enforces the invariant that an instance's asset type
// equals its family's. Called on every create and edit path.
func CheckFamilyMatch(a *types.Asset, family *types.AssetFamily) error {
	if a.Type != family.Type {
		return fmt.Errorf("lifecycle: asset %s type %q does not match family type %q", a.ID, a.Type, family.Type)
	}
	return nil
}
