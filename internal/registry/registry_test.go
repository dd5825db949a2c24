package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetdesk/assetdesk/internal/layout"
)

func TestResolve(t *testing.T) {
	r := New(Picklists{})

	spec := r.Resolve("email", layout.ContextUserProfile)
	require.NotNil(t, spec)
	assert.Equal(t, "email", spec.Attribute)
	assert.Equal(t, ValidateEmail, spec.Validation)
	assert.True(t, spec.Required)

	assert.Nil(t, r.Resolve("no_such_field", layout.ContextUserProfile))
	// Known key, wrong context.
	assert.Nil(t, r.Resolve("email", layout.ContextLicenseInstance))
	assert.Nil(t, r.Resolve("email", layout.ContextKey("bogus")))
}

func TestResolveReturnsCopy(t *testing.T) {
	r := New(Picklists{})
	spec := r.Resolve("title", layout.ContextLicenseInstance)
	require.NotNil(t, spec)
	spec.Label = "Mutated"

	assert.Equal(t, "Title", r.Resolve("title", layout.ContextLicenseInstance).Label)
}

func TestKeysRegistrationOrder(t *testing.T) {
	r := New(Picklists{})

	keys := r.Keys(layout.ContextLicenseFamily)
	assert.Equal(t, []string{"name", "product_code", "category", "vendor", "assignment_model", "variants"}, keys)

	assert.Empty(t, r.Keys(layout.ContextKey("bogus")))
}

func TestInstanceContextsDiverge(t *testing.T) {
	r := New(Picklists{})

	assert.NotNil(t, r.Resolve("renewal_date", layout.ContextLicenseInstance))
	assert.Nil(t, r.Resolve("renewal_date", layout.ContextHardwareInstance))

	assert.NotNil(t, r.Resolve("serial_number", layout.ContextHardwareInstance))
	assert.Nil(t, r.Resolve("serial_number", layout.ContextLicenseInstance))
}

func TestPicklistsWiredIntoSelects(t *testing.T) {
	r := New(Picklists{
		Categories:  []string{"Productivity"},
		Sites:       []string{"Berlin", "Austin"},
		Departments: []string{"Engineering"},
	})

	assert.Equal(t, []string{"Productivity"}, r.Resolve("category", layout.ContextLicenseFamily).Options)
	assert.Equal(t, []string{"Berlin", "Austin"}, r.Resolve("site", layout.ContextUserProfile).Options)
	assert.Equal(t, []string{"Engineering"}, r.Resolve("department", layout.ContextUserProfile).Options)
}

func TestReadOnlyFields(t *testing.T) {
	r := New(Picklists{})

	assert.True(t, r.Resolve("asset_id", layout.ContextLicenseInstance).ReadOnly)
	assert.True(t, r.Resolve("assignment_history", layout.ContextHardwareInstance).ReadOnly)
	assert.False(t, r.Resolve("status", layout.ContextLicenseInstance).ReadOnly)
}
