// Package form assembles the generic CRUD form: given a context, its layout
// and an entity draft, it interprets the layout tab by tab, resolves each
// field key through the registry and produces a render model of controls
// bound to the draft. Submission validates required fields and hands the
// draft to the host's save callback; the form itself never mutates entity
// collections.
package form

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/assetdesk/assetdesk/internal/layout"
	"github.com/assetdesk/assetdesk/internal/registry"
	"github.com/assetdesk/assetdesk/internal/types"
)

// Mode distinguishes creating a new entity from editing one with prior
// state.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Peers carries the collections relational pickers draw from.
type Peers struct {
	Users    []types.User
	Families []types.AssetFamily
	Vendors  []types.Vendor
}

// Option is one selectable choice in a picker control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Control is one rendered input: the field's contract plus its current
// draft value and resolved choices.
type Control struct {
	Spec    registry.FieldSpec `json:"spec"`
	Value   any                `json:"value"`
	Options []Option           `json:"options,omitempty"`
}

// RenderedSection lays its controls into rows of the section's column
// count.
type RenderedSection struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Columns int         `json:"columns"`
	Rows    [][]Control `json:"rows"`
}

// RenderedTab is one tab of rendered sections, in layout order.
type RenderedTab struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Sections []RenderedSection `json:"sections"`
}

// Form is one form instance over a draft. The draft is a JSON-shaped map;
// attribute paths from the registry address into it.
type Form struct {
	Context layout.ContextKey
	Mode    Mode

	reg    *registry.Registry
	layout *layout.Layout
	peers  Peers
	draft  map[string]any
}

// Draftify converts a typed entity into the JSON-shaped draft map the form
// binds to.
func Draftify(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// New opens a form. entity nil selects create mode with an empty draft;
// defaults (generated identifier, assignment model inherited from the
// family) are applied on top in create mode only.
func New(reg *registry.Registry, cfg layout.Config, ctx layout.ContextKey, entity map[string]any, defaults map[string]any, peers Peers) (*Form, error) {
	l, ok := cfg[ctx]
	if !ok {
		return nil, fmt.Errorf("form: no layout for context %q", ctx)
	}
	f := &Form{Context: ctx, reg: reg, layout: l, peers: peers}
	if entity == nil {
		f.Mode = ModeCreate
		f.draft = make(map[string]any)
		for k, v := range defaults {
			setPath(f.draft, k, v)
		}
	} else {
		f.Mode = ModeEdit
		f.draft = deepCopy(entity)
	}
	return f, nil
}

// Draft exposes the current draft map.
func (f *Form) Draft() map[string]any { return f.draft }

// Set writes a value through a field key. Unknown keys are ignored, the
// same tolerance the renderer applies.
func (f *Form) Set(fieldKey string, value any) {
	spec := f.reg.Resolve(fieldKey, f.Context)
	if spec == nil || spec.ReadOnly {
		return
	}
	setPath(f.draft, spec.Attribute, value)
}

// Toggle flips membership of an id in a multi-select picker field; for a
// single-select picker it replaces (or clears) the selection instead.
func (f *Form) Toggle(fieldKey, id string) {
	spec := f.reg.Resolve(fieldKey, f.Context)
	if spec == nil {
		return
	}
	if !spec.Multi {
		if cur, _ := getPath(f.draft, spec.Attribute).(string); cur == id {
			setPath(f.draft, spec.Attribute, "")
		} else {
			setPath(f.draft, spec.Attribute, id)
		}
		return
	}
	cur := stringSlice(getPath(f.draft, spec.Attribute))
	for i, v := range cur {
		if v == id {
			setPath(f.draft, spec.Attribute, append(cur[:i:i], cur[i+1:]...))
			return
		}
	}
	setPath(f.draft, spec.Attribute, append(cur, id))
}

// Render interprets the layout: tabs in schema order, sections in schema
// order, each section's resolved fields chunked into rows of its column
// count. Field keys the registry does not know render nothing.
func (f *Form) Render() []RenderedTab {
	tabs := make([]RenderedTab, 0, len(f.layout.Tabs))
	for _, t := range f.layout.Tabs {
		rt := RenderedTab{ID: t.ID, Title: t.Title}
		for _, s := range t.Sections {
			rs := RenderedSection{ID: s.ID, Title: s.Title, Columns: s.Columns}
			var row []Control
			for _, key := range s.Fields {
				spec := f.reg.Resolve(key, f.Context)
				if spec == nil {
					continue // layout may list fields not wired up yet
				}
				row = append(row, Control{
					Spec:    *spec,
					Value:   getPath(f.draft, spec.Attribute),
					Options: f.options(spec),
				})
				if len(row) == s.Columns {
					rs.Rows = append(rs.Rows, row)
					row = nil
				}
			}
			if len(row) > 0 {
				rs.Rows = append(rs.Rows, row)
			}
			rt.Sections = append(rt.Sections, rs)
		}
		tabs = append(tabs, rt)
	}
	return tabs
}

func (f *Form) options(spec *registry.FieldSpec) []Option {
	switch spec.OptionsFrom {
	case "users":
		out := make([]Option, 0, len(f.peers.Users))
		for _, u := range f.peers.Users {
			out = append(out, Option{Value: u.ID, Label: u.FullName()})
		}
		return out
	case "vendors":
		out := make([]Option, 0, len(f.peers.Vendors))
		for _, v := range f.peers.Vendors {
			out = append(out, Option{Value: v.ID, Label: v.Name})
		}
		return out
	case "families":
		out := make([]Option, 0, len(f.peers.Families))
		for _, fam := range f.peers.Families {
			if c := fam.Core(); c != nil {
				out = append(out, Option{Value: c.ID, Label: c.Name})
			}
		}
		return out
	}
	if len(spec.Options) > 0 {
		out := make([]Option, 0, len(spec.Options))
		for _, o := range spec.Options {
			out = append(out, Option{Value: o, Label: o})
		}
		return out
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate reports the currently-declared fields that fail their rules.
// Only fields present in the layout count: a required field the admin has
// removed from every section no longer blocks submission.
func (f *Form) Validate() []string {
	var missing []string
	for _, t := range f.layout.Tabs {
		for _, s := range t.Sections {
			for _, key := range s.Fields {
				spec := f.reg.Resolve(key, f.Context)
				if spec == nil {
					continue
				}
				v := getPath(f.draft, spec.Attribute)
				if spec.Required && isEmpty(v) {
					missing = append(missing, key)
					continue
				}
				if isEmpty(v) {
					continue
				}
				switch spec.Validation {
				case registry.ValidateNumeric:
					if !isNumeric(v) {
						missing = append(missing, key)
					}
				case registry.ValidateEmail:
					if s, ok := v.(string); !ok || !emailPattern.MatchString(s) {
						missing = append(missing, key)
					}
				}
			}
		}
	}
	return missing
}

// Submit validates and, when clean, hands the draft to the save callback.
// Validation failures block the save and name the offending fields.
func (f *Form) Submit(save func(draft map[string]any) error) error {
	if bad := f.Validate(); len(bad) > 0 {
		return fmt.Errorf("form: invalid fields: %s", strings.Join(bad, ", "))
	}
	return save(f.draft)
}

// ── draft plumbing ───────────────────────────────────────────────────────────

func getPath(m map[string]any, path string) any {
	var cur any = m
	for _, seg := range strings.Split(path, ".") {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = mm[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

func setPath(m map[string]any, path string, value any) {
	segs := strings.Split(path, ".")
	cur := m
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
}

func deepCopy(m map[string]any) map[string]any {
	b, _ := json.Marshal(m)
	var out map[string]any
	_ = json.Unmarshal(b, &out)
	if out == nil {
		out = make(map[string]any)
	}
	return out
}

func stringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...)
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

func isEmpty(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return s == ""
	case []string:
		return len(s) == 0
	case []any:
		return len(s) == 0
	default:
		return false
	}
}

func isNumeric(v any) bool {
	switch n := v.(type) {
	case float64, float32, int, int32, int64:
		return true
	case string:
		_, err := strconv.ParseFloat(n, 64)
		return err == nil
	default:
		return false
	}
}
