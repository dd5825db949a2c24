package layout

import (
	"errors"
	"fmt"
)

// ErrNoSuchTab and friends are returned by editor operations that name a
// tab or section not present in the session layout.
var (
	ErrNoSuchTab     = errors.New("layout: no such tab")
	ErrNoSuchSection = errors.New("layout: no such section")
)

// Session is one edit session over a single context's layout. It works on a
// deep copy; nothing reaches the committed configuration until Commit.
// Closing or switching context without Commit discards all changes.
type Session struct {
	context   ContextKey
	working   *Layout
	allFields []string // static pool of valid field keys for the context
}

// NewSession opens an edit session over a clone of the given layout.
// allFields is the static list of every field key valid for the context.
func NewSession(l *Layout, allFields []string) *Session {
	return &Session{
		context:   l.Context,
		working:   l.Clone(),
		allFields: append([]string(nil), allFields...),
	}
}

// Layout exposes the working copy for rendering the editor surface.
func (s *Session) Layout() *Layout { return s.working }

// AddTab appends a new empty tab.
func (s *Session) AddTab(id, title string) {
	s.working.Tabs = append(s.working.Tabs, Tab{ID: id, Title: title})
}

// RemoveTab deletes the tab with the given id. Fields assigned to its
// sections return to the available pool implicitly.
func (s *Session) RemoveTab(id string) error {
	for i, t := range s.working.Tabs {
		if t.ID == id {
			s.working.Tabs = append(s.working.Tabs[:i], s.working.Tabs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNoSuchTab, id)
}

// RenameTab changes a tab's display title.
func (s *Session) RenameTab(id, title string) error {
	t, err := s.tab(id)
	if err != nil {
		return err
	}
	t.Title = title
	return nil
}

// AddSection appends a new empty section to the named tab. Column counts
// other than 1 or 2 are clamped to 1.
func (s *Session) AddSection(tabID, sectionID, title string, columns int) error {
	t, err := s.tab(tabID)
	if err != nil {
		return err
	}
	if columns != 2 {
		columns = 1
	}
	t.Sections = append(t.Sections, Section{ID: sectionID, Title: title, Columns: columns})
	return nil
}

// RemoveSection deletes a section from the named tab.
func (s *Session) RemoveSection(tabID, sectionID string) error {
	t, err := s.tab(tabID)
	if err != nil {
		return err
	}
	for i, sec := range t.Sections {
		if sec.ID == sectionID {
			t.Sections = append(t.Sections[:i], t.Sections[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNoSuchSection, sectionID)
}

// MoveSection swaps a section with its neighbor in the given direction
// (-1 up, +1 down). Moves past either boundary are a no-op.
func (s *Session) MoveSection(tabID, sectionID string, direction int) error {
	t, err := s.tab(tabID)
	if err != nil {
		return err
	}
	for i, sec := range t.Sections {
		if sec.ID != sectionID {
			continue
		}
		j := i + direction
		if j < 0 || j >= len(t.Sections) {
			return nil
		}
		t.Sections[i], t.Sections[j] = t.Sections[j], t.Sections[i]
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNoSuchSection, sectionID)
}

// SetColumns sets a section's grid width. Only 1 and 2 are meaningful;
// anything else clamps to 1.
func (s *Session) SetColumns(tabID, sectionID string, columns int) error {
	sec, err := s.section(tabID, sectionID)
	if err != nil {
		return err
	}
	if columns != 2 {
		columns = 1
	}
	sec.Columns = columns
	return nil
}

// AssignField places a field key into a section at the given index, first
// removing it from any section it currently occupies anywhere in the layout.
// This is the drop half of the drag operation and is what enforces the
// one-location invariant. An index past the end appends.
func (s *Session) AssignField(tabID, sectionID, fieldKey string, index int) error {
	sec, err := s.section(tabID, sectionID)
	if err != nil {
		return err
	}
	s.working.removeField(fieldKey)
	if index < 0 || index > len(sec.Fields) {
		index = len(sec.Fields)
	}
	sec.Fields = append(sec.Fields, "")
	copy(sec.Fields[index+1:], sec.Fields[index:])
	sec.Fields[index] = fieldKey
	return nil
}

// UnassignField removes a field key from the layout, returning it to the
// available pool. Unknown keys are a no-op.
func (s *Session) UnassignField(fieldKey string) {
	s.working.removeField(fieldKey)
}

// AvailableFields returns the static field pool for the context minus every
// key currently assigned somewhere in the working layout, preserving pool
// order.
func (s *Session) AvailableFields() []string {
	assigned := s.working.AssignedFields()
	var out []string
	for _, f := range s.allFields {
		if !assigned[f] {
			out = append(out, f)
		}
	}
	return out
}

// Commit validates the working layout and installs a clone of it into cfg.
// The session remains usable afterwards.
func (s *Session) Commit(cfg Config) error {
	if err := Check(s.working); err != nil {
		return err
	}
	cfg[s.context] = s.working.Clone()
	return nil
}

func (s *Session) tab(id string) (*Tab, error) {
	for i := range s.working.Tabs {
		if s.working.Tabs[i].ID == id {
			return &s.working.Tabs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoSuchTab, id)
}

func (s *Session) section(tabID, sectionID string) (*Section, error) {
	t, err := s.tab(tabID)
	if err != nil {
		return nil, err
	}
	for i := range t.Sections {
		if t.Sections[i].ID == sectionID {
			return &t.Sections[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoSuchSection, sectionID)
}
