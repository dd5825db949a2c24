// Package layout defines the tabs/sections/fields configuration that drives
// generic form rendering, the edit session used by the admin layout editor,
// and validation of layout documents loaded from configuration.
package layout

// ContextKey names one of the five entity-kind buckets that carries an
// independent layout.
type ContextKey string

const (
	ContextLicenseFamily    ContextKey = "licenseFamily"
	ContextHardwareFamily   ContextKey = "hardwareFamily"
	ContextLicenseInstance  ContextKey = "licenseInstance"
	ContextHardwareInstance ContextKey = "hardwareInstance"
	ContextUserProfile      ContextKey = "userProfile"
)

// AllContexts lists every layout context in display order.
var AllContexts = []ContextKey{
	ContextLicenseFamily,
	ContextHardwareFamily,
	ContextLicenseInstance,
	ContextHardwareInstance,
	ContextUserProfile,
}

// Section is an ordered group of field keys laid out in a fixed-width grid.
type Section struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Columns int      `json:"columns"` // 1 or 2
	Fields  []string `json:"fields"`
}

// Tab is an ordered list of sections under one form tab.
type Tab struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Layout is the full tabs/sections/fields document for one context.
// Invariant: a field key appears in at most one section across all tabs.
type Layout struct {
	Context ContextKey `json:"context"`
	Tabs    []Tab      `json:"tabs"`
}

// Config holds the layout for every context. It is part of the persisted
// application configuration and is mutated only by committing an editor
// session.
type Config map[ContextKey]*Layout

// Clone returns a deep copy of the layout. Editor sessions work on clones so
// that discarding a session never touches the committed configuration.
func (l *Layout) Clone() *Layout {
	out := &Layout{Context: l.Context, Tabs: make([]Tab, len(l.Tabs))}
	for i, t := range l.Tabs {
		nt := Tab{ID: t.ID, Title: t.Title, Sections: make([]Section, len(t.Sections))}
		for j, s := range t.Sections {
			ns := Section{ID: s.ID, Title: s.Title, Columns: s.Columns}
			ns.Fields = append([]string(nil), s.Fields...)
			nt.Sections[j] = ns
		}
		out.Tabs[i] = nt
	}
	return out
}

// AssignedFields returns the set of field keys currently placed anywhere in
// the layout.
func (l *Layout) AssignedFields() map[string]bool {
	out := make(map[string]bool)
	for _, t := range l.Tabs {
		for _, s := range t.Sections {
			for _, f := range s.Fields {
				out[f] = true
			}
		}
	}
	return out
}

// removeField deletes the field key from whichever section currently holds
// it, across the whole layout. Reports whether anything was removed.
func (l *Layout) removeField(key string) bool {
	removed := false
	for ti := range l.Tabs {
		for si := range l.Tabs[ti].Sections {
			fields := l.Tabs[ti].Sections[si].Fields
			for fi, f := range fields {
				if f == key {
					l.Tabs[ti].Sections[si].Fields = append(fields[:fi:fi], fields[fi+1:]...)
					removed = true
					break
				}
			}
		}
	}
	return removed
}

// Clone returns a deep copy of the whole configuration.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, l := range c {
		out[k] = l.Clone()
	}
	return out
}

// Default returns the built-in layout configuration used when no persisted
// configuration exists yet.
func Default() Config {
	return Config{
		ContextLicenseFamily: {
			Context: ContextLicenseFamily,
			Tabs: []Tab{
				{ID: "general", Title: "General", Sections: []Section{
					{ID: "identity", Title: "Identity", Columns: 2, Fields: []string{"name", "product_code", "category", "vendor"}},
					{ID: "policy", Title: "Assignment Policy", Columns: 1, Fields: []string{"assignment_model"}},
				}},
				{ID: "variants", Title: "Variants", Sections: []Section{
					{ID: "tiers", Title: "License Tiers", Columns: 1, Fields: []string{"variants"}},
				}},
			},
		},
		ContextHardwareFamily: {
			Context: ContextHardwareFamily,
			Tabs: []Tab{
				{ID: "general", Title: "General", Sections: []Section{
					{ID: "identity", Title: "Identity", Columns: 2, Fields: []string{"name", "product_code", "category", "manufacturer", "model"}},
					{ID: "policy", Title: "Assignment Policy", Columns: 1, Fields: []string{"assignment_model"}},
				}},
			},
		},
		ContextLicenseInstance: {
			Context: ContextLicenseInstance,
			Tabs: []Tab{
				{ID: "general", Title: "General", Sections: []Section{
					{ID: "identity", Title: "Identity", Columns: 2, Fields: []string{"asset_id", "family", "title", "variant_name", "status"}},
					{ID: "financial", Title: "Financial", Columns: 2, Fields: []string{"cost", "purchase_date", "renewal_date"}},
				}},
				{ID: "assignment", Title: "Assignment", Sections: []Section{
					{ID: "owners", Title: "Ownership", Columns: 1, Fields: []string{"assigned_user", "assigned_users", "active_users"}},
					{ID: "log", Title: "History", Columns: 1, Fields: []string{"assignment_history"}},
				}},
			},
		},
		ContextHardwareInstance: {
			Context: ContextHardwareInstance,
			Tabs: []Tab{
				{ID: "general", Title: "General", Sections: []Section{
					{ID: "identity", Title: "Identity", Columns: 2, Fields: []string{"asset_id", "family", "title", "serial_number", "status"}},
					{ID: "financial", Title: "Financial", Columns: 2, Fields: []string{"cost", "purchase_date", "warranty_until"}},
				}},
				{ID: "assignment", Title: "Assignment", Sections: []Section{
					{ID: "owners", Title: "Ownership", Columns: 1, Fields: []string{"assigned_user", "active_users"}},
					{ID: "log", Title: "History", Columns: 1, Fields: []string{"assignment_history"}},
				}},
			},
		},
		ContextUserProfile: {
			Context: ContextUserProfile,
			Tabs: []Tab{
				{ID: "profile", Title: "Profile", Sections: []Section{
					{ID: "contact", Title: "Contact", Columns: 2, Fields: []string{"first_name", "last_name", "email", "phone"}},
					{ID: "org", Title: "Organization", Columns: 2, Fields: []string{"department", "site", "role"}},
				}},
				{ID: "accounts", Title: "Accounts", Sections: []Section{
					{ID: "platforms", Title: "Platform Accounts", Columns: 1, Fields: []string{"platform_accounts"}},
				}},
			},
		},
	}
}
