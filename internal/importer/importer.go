// Package importer implements the bulk import pipeline: pasted delimited
// text is parsed, columns are auto-mapped to asset fields by header
// similarity, the caller previews mapped rows, then commits them through
// the normal asset save path.
package importer

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/assetdesk/assetdesk/internal/types"
)

// Target is an importable asset field: the attribute key plus the display
// label the auto-mapper matches headers against.
type Target struct {
	Key   string
	Label string
}

// DefaultTargets lists the asset attributes the importer can populate.
func DefaultTargets() []Target {
	return []Target{
		{Key: "title", Label: "Title"},
		{Key: "variant_name", Label: "Variant"},
		{Key: "status", Label: "Status"},
		{Key: "cost", Label: "Cost"},
		{Key: "serial_number", Label: "Serial Number"},
		{Key: "purchase_date", Label: "Purchase Date"},
		{Key: "renewal_date", Label: "Renewal Date"},
		{Key: "warranty_until", Label: "Warranty Until"},
		{Key: "notes", Label: "Notes"},
	}
}

// Document is a parsed paste: headers plus data rows.
type Document struct {
	Headers []string
	Rows    [][]string
}

// Parse splits pasted text into headers and rows. Tab-delimited input is
// detected from the first line; everything else parses as comma-separated.
func Parse(text string) (Document, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Document{}, fmt.Errorf("importer: empty input")
	}

	r := csv.NewReader(strings.NewReader(text))
	if strings.Contains(firstLine(text), "\t") {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return Document{}, fmt.Errorf("importer: parsing input: %w", err)
	}
	if len(records) < 2 {
		return Document{}, fmt.Errorf("importer: need a header row and at least one data row")
	}
	return Document{Headers: records[0], Rows: records[1:]}, nil
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

// Mapping assigns a target field key to each mapped column index. Unmapped
// columns are absent and their cells are ignored.
type Mapping map[int]string

// AutoMap matches headers to targets by normalized label: exact match
// first, then substring containment either way. Each target maps at most
// once.
func AutoMap(headers []string, targets []Target) Mapping {
	m := Mapping{}
	used := map[string]bool{}

	match := func(accept func(header, label string) bool) {
		for i, h := range headers {
			if _, done := m[i]; done {
				continue
			}
			nh := normalize(h)
			if nh == "" {
				continue
			}
			for _, t := range targets {
				if used[t.Key] {
					continue
				}
				if accept(nh, normalize(t.Label)) || accept(nh, normalize(t.Key)) {
					m[i] = t.Key
					used[t.Key] = true
					break
				}
			}
		}
	}

	match(func(h, l string) bool { return h == l })
	match(func(h, l string) bool { return strings.Contains(h, l) || strings.Contains(l, h) })
	return m
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Records applies a mapping to the data rows, producing field-keyed string
// records in row order.
func (d Document) Records(m Mapping) []map[string]string {
	out := make([]map[string]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		rec := map[string]string{}
		for col, key := range m {
			if col < len(row) {
				rec[key] = strings.TrimSpace(row[col])
			}
		}
		out = append(out, rec)
	}
	return out
}

// Preview returns up to limit mapped records for display before commit.
func (d Document) Preview(m Mapping, limit int) []map[string]string {
	recs := d.Records(m)
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// SaveFunc persists one drafted asset. The store's asset save is the usual
// implementation, so imported units get generated identifiers and creation
// history like any other create.
type SaveFunc func(draft types.Asset) (types.Asset, error)

// Result summarises a commit: created assets plus per-row failures.
type Result struct {
	Created []types.Asset
	Errors  []RowError
}

// RowError ties a failure to its 1-based data row.
type RowError struct {
	Row int
	Err error
}

// Commit drafts one asset per record under the given family and saves each
// through save. A failing row is recorded and skipped; the rest proceed.
func Commit(records []map[string]string, family *types.AssetFamily, save SaveFunc) Result {
	var res Result
	core := family.Core()
	for i, rec := range records {
		draft, err := draftAsset(rec, family)
		if err == nil {
			draft.FamilyID = core.ID
			var saved types.Asset
			saved, err = save(draft)
			if err == nil {
				res.Created = append(res.Created, saved)
				continue
			}
		}
		res.Errors = append(res.Errors, RowError{Row: i + 1, Err: err})
	}
	return res
}

func draftAsset(rec map[string]string, family *types.AssetFamily) (types.Asset, error) {
	core := family.Core()
	draft := types.Asset{
		Type:         family.Type,
		Title:        rec["title"],
		Status:       types.AssetStatus(rec["status"]),
		VariantName:  rec["variant_name"],
		SerialNumber: rec["serial_number"],
		Notes:        rec["notes"],
	}
	if draft.Title == "" {
		draft.Title = core.Name
	}
	if draft.Status == "" {
		draft.Status = types.StatusAvailable
	}
	if raw := rec["cost"]; raw != "" {
		cost, err := strconv.ParseFloat(strings.TrimPrefix(raw, "$"), 64)
		if err != nil {
			return types.Asset{}, fmt.Errorf("importer: bad cost %q: %w", raw, err)
		}
		draft.Cost = cost
	}
	for key, dst := range map[string]**time.Time{
		"purchase_date":  &draft.PurchaseDate,
		"renewal_date":   &draft.RenewalDate,
		"warranty_until": &draft.WarrantyUntil,
	} {
		raw := rec[key]
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			return types.Asset{}, fmt.Errorf("importer: bad %s %q: %w", key, raw, err)
		}
		*dst = &t
	}
	return draft, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "01/02/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}
