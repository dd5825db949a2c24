// Package table implements the generic grid engine: derived column
// configuration, global and per-column free-text filtering, and tri-state
// single-column sorting. Rendering is purely a function of (data, columns,
// filters, sort, view settings); nothing here mutates entities.
package table

import (
	"fmt"
	"sort"
	"strings"
)

// Row is one data record. Nested objects are nested maps, addressable by
// dotted accessor paths in column keys and filters.
type Row = map[string]any

// CellRenderer produces a custom string form for a cell; when nil the
// column falls back to the default stringification of the keyed value.
type CellRenderer func(Row) string

// Column defines one column: accessor key (dotted paths supported), header
// label, optional fixed width and optional custom renderer.
type Column struct {
	Key    string
	Label  string
	Width  int          // 0 means automatic
	Render CellRenderer `json:"-"` // funcs are not JSON-serializable
}

// ColumnSetting is the adjustable per-column view state.
type ColumnSetting struct {
	Key     string `json:"key"`
	Visible bool   `json:"visible"`
	Width   int    `json:"width"`
}

// SortDirection is the tri-state sort cycle.
type SortDirection int

const (
	SortNone SortDirection = iota
	SortAsc
	SortDesc
)

// Table holds the view state for one grid instance.
type Table struct {
	defs     []Column
	byKey    map[string]Column
	settings []ColumnSetting
	keySet   string // sorted join of definition keys, for change detection

	globalFilter  string
	columnFilters map[string]string
	sortKey       string
	sortDir       SortDirection
}

// New seeds a table from column definitions; every column starts visible in
// definition order.
func New(defs []Column) *Table {
	t := &Table{columnFilters: make(map[string]string)}
	t.SetColumns(defs)
	return t
}

// SetColumns installs a (possibly new) definition set. If the sorted set of
// column keys is unchanged, user customizations to visibility, width and
// order persist; if it changed materially, settings reset to defaults.
func (t *Table) SetColumns(defs []Column) {
	t.defs = defs
	t.byKey = make(map[string]Column, len(defs))
	for _, c := range defs {
		t.byKey[c.Key] = c
	}
	ks := keySet(defs)
	if ks == t.keySet && t.settings != nil {
		return
	}
	t.keySet = ks
	t.settings = make([]ColumnSetting, len(defs))
	for i, c := range defs {
		t.settings[i] = ColumnSetting{Key: c.Key, Visible: true, Width: c.Width}
	}
}

func keySet(defs []Column) string {
	keys := make([]string, len(defs))
	for i, c := range defs {
		keys[i] = c.Key
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// Settings exposes the current per-column view state in display order.
func (t *Table) Settings() []ColumnSetting {
	return append([]ColumnSetting(nil), t.settings...)
}

// SetVisible toggles a column on or off.
func (t *Table) SetVisible(key string, visible bool) {
	for i := range t.settings {
		if t.settings[i].Key == key {
			t.settings[i].Visible = visible
			return
		}
	}
}

// SetWidth overrides a column's width.
func (t *Table) SetWidth(key string, width int) {
	for i := range t.settings {
		if t.settings[i].Key == key {
			t.settings[i].Width = width
			return
		}
	}
}

// MoveColumn swaps a column with its neighbor (-1 left, +1 right); moves
// past either end are a no-op.
func (t *Table) MoveColumn(key string, direction int) {
	for i := range t.settings {
		if t.settings[i].Key != key {
			continue
		}
		j := i + direction
		if j < 0 || j >= len(t.settings) {
			return
		}
		t.settings[i], t.settings[j] = t.settings[j], t.settings[i]
		return
	}
}

// SetGlobalFilter sets the free-text filter matched against every column.
func (t *Table) SetGlobalFilter(q string) { t.globalFilter = q }

// SetColumnFilter sets (or with "" clears) an independent per-column filter.
func (t *Table) SetColumnFilter(key, q string) {
	if q == "" {
		delete(t.columnFilters, key)
		return
	}
	t.columnFilters[key] = q
}

// ToggleSort advances the sort cycle for a column: a fresh column starts
// ascending; repeated clicks alternate ascending and descending.
func (t *Table) ToggleSort(key string) {
	if t.sortKey != key {
		t.sortKey = key
		t.sortDir = SortAsc
		return
	}
	if t.sortDir == SortAsc {
		t.sortDir = SortDesc
	} else {
		t.sortDir = SortAsc
	}
}

// Sort reports the current sort state.
func (t *Table) Sort() (key string, dir SortDirection) { return t.sortKey, t.sortDir }

// VisibleColumns returns the column definitions that are currently visible,
// in view order.
func (t *Table) VisibleColumns() []Column {
	var out []Column
	for _, s := range t.settings {
		if !s.Visible {
			continue
		}
		if c, ok := t.byKey[s.Key]; ok {
			if s.Width != 0 {
				c.Width = s.Width
			}
			out = append(out, c)
		}
	}
	return out
}

// Render evaluates filters and sort over the full data set and returns the
// resulting rows. No pagination: the caller gets everything that matches.
func (t *Table) Render(data []Row) []Row {
	rows := make([]Row, 0, len(data))
	for _, r := range data {
		if t.matches(r) {
			rows = append(rows, r)
		}
	}

	if t.sortKey != "" && t.sortDir != SortNone {
		key, dir := t.sortKey, t.sortDir
		sort.SliceStable(rows, func(i, j int) bool {
			less := lessValue(Resolve(rows[i], key), Resolve(rows[j], key))
			if dir == SortDesc {
				return !less
			}
			return less
		})
	}
	return rows
}

func (t *Table) matches(r Row) bool {
	if q := strings.ToLower(t.globalFilter); q != "" {
		hit := false
		for _, c := range t.defs {
			if strings.Contains(strings.ToLower(t.cellString(c, r)), q) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for key, q := range t.columnFilters {
		c, ok := t.byKey[key]
		if !ok {
			continue
		}
		if !strings.Contains(strings.ToLower(t.cellString(c, r)), strings.ToLower(q)) {
			return false
		}
	}
	return true
}

func (t *Table) cellString(c Column, r Row) string {
	if c.Render != nil {
		return c.Render(r)
	}
	return Stringify(Resolve(r, c.Key))
}

// Resolve walks a dotted accessor path into nested maps. A missing segment
// resolves to nil.
func Resolve(r Row, path string) any {
	var cur any = r
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// Stringify renders a cell value for filtering and display. nil renders
// empty rather than "<nil>".
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// lessValue is the generic comparison behind sorting: numbers compare
// numerically, everything else compares by string form. Date-like strings
// therefore sort correctly only in ISO-ordered textual form.
func lessValue(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	return Stringify(a) < Stringify(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
