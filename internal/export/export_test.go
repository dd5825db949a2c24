package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetdesk/assetdesk/internal/layout"
	"github.com/assetdesk/assetdesk/internal/store"
	"github.com/assetdesk/assetdesk/internal/types"
)

func testSnapshot() store.Snapshot {
	return store.Snapshot{
		ExportedAt: time.Date(2025, 6, 2, 11, 15, 0, 0, time.UTC),
		Users: []types.User{
			{ID: "u-1", FirstName: "Dana", LastName: "Whitfield", Role: types.RoleAdmin},
		},
		Assets: []types.Asset{
			{ID: "SOFT-WID-0001", FamilyID: "f-1", Type: types.AssetSoftware, Title: "Widget Pro", Status: types.StatusAvailable},
		},
		Layouts: layout.Default(),
	}
}

func TestWriteRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testSnapshot()))

	var got store.Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "SOFT-WID-0001", got.Assets[0].ID)
	assert.Equal(t, "Dana", got.Users[0].FirstName)
	assert.Len(t, got.Layouts, len(layout.AllContexts))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "assetdesk-export-20250602-111500.json", Filename(testSnapshot()))

	eastern := time.FixedZone("UTC+3", 3*60*60)
	snap := store.Snapshot{ExportedAt: time.Date(2025, 6, 2, 14, 15, 0, 0, eastern)}
	assert.Equal(t, "assetdesk-export-20250602-111500.json", Filename(snap), "filename must be UTC")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFile(dir, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "assetdesk-export-20250602-111500.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got store.Snapshot
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Len(t, got.Users, 1)
}

func TestWriteFileBadDir(t *testing.T) {
	_, err := WriteFile(filepath.Join(t.TempDir(), "does-not-exist"), testSnapshot())
	assert.Error(t, err)
}
