// Package registry maps field keys to their render contracts. The form
// renderer consults it per field key; unknown keys resolve to nil and are
// skipped, so a layout may reference fields the data model does not define
// yet without breaking the form.
package registry

import "github.com/assetdesk/assetdesk/internal/layout"

// Control names the input widget a field renders as.
type Control string

const (
	ControlText          Control = "text"
	ControlTextArea      Control = "textarea"
	ControlSelect        Control = "select"
	ControlRadio         Control = "radio"
	ControlDate          Control = "date"
	ControlNumber        Control = "number"
	ControlCurrency      Control = "currency"
	ControlUserPicker    Control = "user_picker"
	ControlVendorPicker  Control = "vendor_picker"
	ControlVariantEditor Control = "variant_editor"
	ControlHistoryViewer Control = "history_viewer"
	ControlAccountEditor Control = "account_editor"
)

// Validation names the rule applied to a field's value on submit.
type Validation string

const (
	ValidateNone    Validation = ""
	ValidateNumeric Validation = "numeric"
	ValidateEmail   Validation = "email"
)

// FieldSpec is the render contract for one field key: which draft attribute
// it edits, which control renders it, and what validation applies.
type FieldSpec struct {
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	Attribute   string     `json:"attribute"` // dotted path into the draft entity
	Control     Control    `json:"control"`
	Required    bool       `json:"required,omitempty"`
	Validation  Validation `json:"validation,omitempty"`
	Options     []string   `json:"options,omitempty"`      // static choices for select/radio
	OptionsFrom string     `json:"options_from,omitempty"` // peer collection: "users", "vendors", "families"
	Multi       bool       `json:"multi,omitempty"`        // user picker toggles membership instead of replacing
	ReadOnly    bool       `json:"read_only,omitempty"`
}

// Picklists supplies the admin-configurable option lists injected into
// select controls.
type Picklists struct {
	Categories  []string
	Sites       []string
	Departments []string
}

// Registry is the per-context dispatch table from field key to FieldSpec.
type Registry struct {
	contexts map[layout.ContextKey]map[string]FieldSpec
	order    map[layout.ContextKey][]string
}

// Resolve returns the spec for a field key in a context, or nil if the key
// is unknown there. Lookup has no side effects.
func (r *Registry) Resolve(key string, ctx layout.ContextKey) *FieldSpec {
	specs, ok := r.contexts[ctx]
	if !ok {
		return nil
	}
	spec, ok := specs[key]
	if !ok {
		return nil
	}
	return &spec
}

// Keys returns every field key valid for a context, in registration order.
// This is the static pool the layout editor draws from.
func (r *Registry) Keys(ctx layout.ContextKey) []string {
	return append([]string(nil), r.order[ctx]...)
}

func (r *Registry) register(ctx layout.ContextKey, spec FieldSpec) {
	if r.contexts[ctx] == nil {
		r.contexts[ctx] = make(map[string]FieldSpec)
	}
	r.contexts[ctx][spec.Key] = spec
	r.order[ctx] = append(r.order[ctx], spec.Key)
}

// New builds the registry for all five contexts, wiring the given picklists
// into the select controls that use them.
func New(p Picklists) *Registry {
	r := &Registry{
		contexts: make(map[layout.ContextKey]map[string]FieldSpec),
		order:    make(map[layout.ContextKey][]string),
	}

	statuses := []string{"Active", "Available", "Expired", "Pending", "Suspended", "In Repair", "Retired", "In Storage", "Inactive"}

	// Family contexts share their shared-core fields.
	for _, ctx := range []layout.ContextKey{layout.ContextLicenseFamily, layout.ContextHardwareFamily} {
		r.register(ctx, FieldSpec{Key: "name", Label: "Name", Attribute: "name", Control: ControlText, Required: true})
		r.register(ctx, FieldSpec{Key: "product_code", Label: "Product Code", Attribute: "product_code", Control: ControlText, Required: true})
		r.register(ctx, FieldSpec{Key: "category", Label: "Category", Attribute: "category", Control: ControlSelect, Options: p.Categories})
		r.register(ctx, FieldSpec{Key: "vendor", Label: "Vendor", Attribute: "vendor_id", Control: ControlVendorPicker, OptionsFrom: "vendors"})
		r.register(ctx, FieldSpec{Key: "assignment_model", Label: "Assignment Model", Attribute: "assignment_model", Control: ControlRadio, Options: []string{"single", "multiple"}, Required: true})
	}
	r.register(layout.ContextLicenseFamily, FieldSpec{Key: "variants", Label: "License Tiers", Attribute: "variants", Control: ControlVariantEditor})
	r.register(layout.ContextHardwareFamily, FieldSpec{Key: "manufacturer", Label: "Manufacturer", Attribute: "manufacturer", Control: ControlText})
	r.register(layout.ContextHardwareFamily, FieldSpec{Key: "model", Label: "Model", Attribute: "model", Control: ControlText})

	// Instance contexts.
	for _, ctx := range []layout.ContextKey{layout.ContextLicenseInstance, layout.ContextHardwareInstance} {
		r.register(ctx, FieldSpec{Key: "asset_id", Label: "Asset ID", Attribute: "id", Control: ControlText, ReadOnly: true})
		r.register(ctx, FieldSpec{Key: "family", Label: "Family", Attribute: "family_id", Control: ControlSelect, OptionsFrom: "families", Required: true})
		r.register(ctx, FieldSpec{Key: "title", Label: "Title", Attribute: "title", Control: ControlText, Required: true})
		r.register(ctx, FieldSpec{Key: "status", Label: "Status", Attribute: "status", Control: ControlSelect, Options: statuses, Required: true})
		r.register(ctx, FieldSpec{Key: "cost", Label: "Cost", Attribute: "cost", Control: ControlCurrency, Validation: ValidateNumeric})
		r.register(ctx, FieldSpec{Key: "purchase_date", Label: "Purchase Date", Attribute: "purchase_date", Control: ControlDate})
		r.register(ctx, FieldSpec{Key: "notes", Label: "Notes", Attribute: "notes", Control: ControlTextArea})
		r.register(ctx, FieldSpec{Key: "assigned_user", Label: "Assigned To", Attribute: "assigned_user", Control: ControlUserPicker, OptionsFrom: "users"})
		r.register(ctx, FieldSpec{Key: "assigned_users", Label: "Assigned Users", Attribute: "assigned_users", Control: ControlUserPicker, OptionsFrom: "users", Multi: true})
		r.register(ctx, FieldSpec{Key: "active_users", Label: "Active Users", Attribute: "active_users", Control: ControlUserPicker, OptionsFrom: "users", Multi: true})
		r.register(ctx, FieldSpec{Key: "assignment_history", Label: "Assignment History", Attribute: "assignment_history", Control: ControlHistoryViewer, ReadOnly: true})
	}
	r.register(layout.ContextLicenseInstance, FieldSpec{Key: "variant_name", Label: "Variant", Attribute: "variant_name", Control: ControlText})
	r.register(layout.ContextLicenseInstance, FieldSpec{Key: "renewal_date", Label: "Renewal Date", Attribute: "renewal_date", Control: ControlDate})
	r.register(layout.ContextHardwareInstance, FieldSpec{Key: "serial_number", Label: "Serial Number", Attribute: "serial_number", Control: ControlText})
	r.register(layout.ContextHardwareInstance, FieldSpec{Key: "warranty_until", Label: "Warranty Until", Attribute: "warranty_until", Control: ControlDate})

	// User profile context.
	up := layout.ContextUserProfile
	r.register(up, FieldSpec{Key: "first_name", Label: "First Name", Attribute: "first_name", Control: ControlText, Required: true})
	r.register(up, FieldSpec{Key: "last_name", Label: "Last Name", Attribute: "last_name", Control: ControlText, Required: true})
	r.register(up, FieldSpec{Key: "email", Label: "Email", Attribute: "email", Control: ControlText, Required: true, Validation: ValidateEmail})
	r.register(up, FieldSpec{Key: "phone", Label: "Phone", Attribute: "phone", Control: ControlText})
	r.register(up, FieldSpec{Key: "department", Label: "Department", Attribute: "department", Control: ControlSelect, Options: p.Departments})
	r.register(up, FieldSpec{Key: "site", Label: "Site", Attribute: "site", Control: ControlSelect, Options: p.Sites})
	r.register(up, FieldSpec{Key: "role", Label: "Role", Attribute: "role", Control: ControlRadio, Options: []string{"admin", "user"}})
	r.register(up, FieldSpec{Key: "platform_accounts", Label: "Platform Accounts", Attribute: "platform_accounts", Control: ControlAccountEditor})
	r.register(up, FieldSpec{Key: "history", Label: "History", Attribute: "history", Control: ControlHistoryViewer, ReadOnly: true})

	return r
}
