package layout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout() *Layout {
	return &Layout{
		Context: ContextLicenseInstance,
		Tabs: []Tab{
			{ID: "general", Title: "General", Sections: []Section{
				{ID: "identity", Title: "Identity", Columns: 2, Fields: []string{"title", "status"}},
				{ID: "financial", Title: "Financial", Columns: 1, Fields: []string{"cost"}},
			}},
			{ID: "assignment", Title: "Assignment", Sections: []Section{
				{ID: "owners", Title: "Ownership", Columns: 1, Fields: []string{"assigned_user"}},
			}},
		},
	}
}

var testPool = []string{"title", "status", "cost", "assigned_user", "notes", "renewal_date"}

func TestCloneIsIndependent(t *testing.T) {
	l := testLayout()
	c := l.Clone()
	c.Tabs[0].Sections[0].Fields[0] = "mutated"
	c.Tabs[0].Title = "Changed"

	assert.Equal(t, "title", l.Tabs[0].Sections[0].Fields[0])
	assert.Equal(t, "General", l.Tabs[0].Title)
}

func TestSessionDiscardLeavesCommitted(t *testing.T) {
	cfg := Config{ContextLicenseInstance: testLayout()}
	sess := NewSession(cfg[ContextLicenseInstance], testPool)

	require.NoError(t, sess.RemoveTab("general"))
	// Session dropped without commit: committed layout untouched.
	assert.Len(t, cfg[ContextLicenseInstance].Tabs, 2)
}

func TestAssignFieldEnforcesOneLocation(t *testing.T) {
	sess := NewSession(testLayout(), testPool)

	// "title" currently sits in general/identity; dropping it into
	// assignment/owners must remove it there first.
	require.NoError(t, sess.AssignField("assignment", "owners", "title", 0))

	count := 0
	for _, tab := range sess.Layout().Tabs {
		for _, sec := range tab.Sections {
			for _, f := range sec.Fields {
				if f == "title" {
					count++
					assert.Equal(t, "owners", sec.ID)
				}
			}
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"title", "assigned_user"}, sess.Layout().Tabs[1].Sections[0].Fields)
}

func TestAssignFieldIndexPastEndAppends(t *testing.T) {
	sess := NewSession(testLayout(), testPool)
	require.NoError(t, sess.AssignField("general", "identity", "notes", 99))
	assert.Equal(t, []string{"title", "status", "notes"}, sess.Layout().Tabs[0].Sections[0].Fields)
}

func TestAvailableFieldsPreservePoolOrder(t *testing.T) {
	sess := NewSession(testLayout(), testPool)
	assert.Equal(t, []string{"notes", "renewal_date"}, sess.AvailableFields())

	sess.UnassignField("status")
	assert.Equal(t, []string{"status", "notes", "renewal_date"}, sess.AvailableFields())
}

func TestRemoveTabReleasesFields(t *testing.T) {
	sess := NewSession(testLayout(), testPool)
	require.NoError(t, sess.RemoveTab("assignment"))
	assert.Contains(t, sess.AvailableFields(), "assigned_user")

	assert.ErrorIs(t, sess.RemoveTab("assignment"), ErrNoSuchTab)
}

func TestMoveSectionBoundaryNoOp(t *testing.T) {
	sess := NewSession(testLayout(), testPool)

	require.NoError(t, sess.MoveSection("general", "identity", -1))
	assert.Equal(t, "identity", sess.Layout().Tabs[0].Sections[0].ID)

	require.NoError(t, sess.MoveSection("general", "identity", 1))
	assert.Equal(t, "financial", sess.Layout().Tabs[0].Sections[0].ID)
}

func TestColumnsClamp(t *testing.T) {
	sess := NewSession(testLayout(), testPool)
	require.NoError(t, sess.AddSection("general", "extra", "Extra", 5))
	assert.Equal(t, 1, sess.Layout().Tabs[0].Sections[2].Columns)

	require.NoError(t, sess.SetColumns("general", "extra", 2))
	assert.Equal(t, 2, sess.Layout().Tabs[0].Sections[2].Columns)
}

func TestCommitInstallsClone(t *testing.T) {
	cfg := Config{ContextLicenseInstance: testLayout()}
	sess := NewSession(cfg[ContextLicenseInstance], testPool)
	sess.AddTab("extra", "Extra")
	require.NoError(t, sess.Commit(cfg))

	assert.Len(t, cfg[ContextLicenseInstance].Tabs, 3)

	// Further session edits stay out of the committed copy.
	sess.AddTab("more", "More")
	assert.Len(t, cfg[ContextLicenseInstance].Tabs, 3)
}

func TestCommitRejectsDuplicateSectionIDs(t *testing.T) {
	cfg := Config{ContextLicenseInstance: testLayout()}
	sess := NewSession(cfg[ContextLicenseInstance], testPool)
	require.NoError(t, sess.AddSection("general", "identity", "Dup", 1))

	assert.Error(t, sess.Commit(cfg))
	assert.Len(t, cfg[ContextLicenseInstance].Tabs, 2)
}

func TestCheckFieldInTwoSections(t *testing.T) {
	l := testLayout()
	l.Tabs[1].Sections[0].Fields = append(l.Tabs[1].Sections[0].Fields, "title")
	assert.Error(t, Check(l))
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.Len(t, cfg, len(AllContexts))
	for _, ctx := range AllContexts {
		l, ok := cfg[ctx]
		require.True(t, ok, "missing layout for %s", ctx)
		assert.Equal(t, ctx, l.Context)
		assert.NoError(t, Check(l))

		doc, err := json.Marshal(l)
		require.NoError(t, err)
		assert.NoError(t, ValidateDocument(doc), "default layout for %s fails schema", ctx)
	}
}

func TestValidateDocument(t *testing.T) {
	good := `{"context":"userProfile","tabs":[{"id":"t1","title":"Main","sections":[{"id":"s1","title":"S","columns":2,"fields":["email"]}]}]}`
	assert.NoError(t, ValidateDocument([]byte(good)))

	badContext := `{"context":"bogus","tabs":[]}`
	assert.Error(t, ValidateDocument([]byte(badContext)))

	badColumns := `{"context":"userProfile","tabs":[{"id":"t1","title":"Main","sections":[{"id":"s1","title":"S","columns":3,"fields":[]}]}]}`
	assert.Error(t, ValidateDocument([]byte(badColumns)))

	emptySectionID := `{"context":"userProfile","tabs":[{"id":"t1","title":"Main","sections":[{"id":"","title":"S","columns":1,"fields":[]}]}]}`
	assert.Error(t, ValidateDocument([]byte(emptySectionID)))

	notJSON := `{"context":`
	assert.Error(t, ValidateDocument([]byte(notJSON)))
}
