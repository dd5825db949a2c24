package layout

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

// schemaSource is the CUE definition a layout document must satisfy before
// it is committed or loaded from persisted configuration.
const schemaSource = `
#Section: {
	id:      string & !=""
	title:   string
	columns: 1 | 2
	fields?: [...string] | null
}

#Tab: {
	id:       string & !=""
	title:    string
	sections: [...#Section]
}

#Layout: {
	context: "licenseFamily" | "hardwareFamily" | "licenseInstance" | "hardwareInstance" | "userProfile"
	tabs:    [...#Tab]
}
`

// ValidateDocument checks a raw JSON layout document against the CUE schema.
// Structural problems (wrong context name, columns outside 1..2, missing ids)
// surface as CUE validation errors.
func ValidateDocument(data []byte) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("layout: compiling schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Layout"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("layout: missing #Layout definition: %w", err)
	}

	expr, err := cuejson.Extract("layout.json", data)
	if err != nil {
		return fmt.Errorf("layout: parsing document: %w", err)
	}
	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("layout: building document: %w", err)
	}

	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return fmt.Errorf("layout: document invalid: %w", err)
	}
	return nil
}

// Check enforces the structural invariants the CUE schema cannot express:
// tab and section ids are unique, and a field key appears in at most one
// section across the whole layout.
func Check(l *Layout) error {
	tabIDs := make(map[string]bool)
	seen := make(map[string]string) // field key -> "tab/section" that holds it
	for _, t := range l.Tabs {
		if tabIDs[t.ID] {
			return fmt.Errorf("layout: duplicate tab id %q", t.ID)
		}
		tabIDs[t.ID] = true
		secIDs := make(map[string]bool)
		for _, s := range t.Sections {
			if secIDs[s.ID] {
				return fmt.Errorf("layout: duplicate section id %q in tab %q", s.ID, t.ID)
			}
			secIDs[s.ID] = true
			if s.Columns != 1 && s.Columns != 2 {
				return fmt.Errorf("layout: section %q has invalid column count %d", s.ID, s.Columns)
			}
			for _, f := range s.Fields {
				loc := t.ID + "/" + s.ID
				if prev, dup := seen[f]; dup {
					return fmt.Errorf("layout: field %q assigned in both %s and %s", f, prev, loc)
				}
				seen[f] = loc
			}
		}
	}
	return nil
}
