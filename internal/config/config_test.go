package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ASSETDESK_ADDR", "ASSETDESK_DB", "ASSETDESK_EXPORT_DIR", "ASSETDESK_PICKLISTS", "ASSETDESK_ID_SEPARATOR", "ASSETDESK_DEMO"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "assetdesk.db", cfg.DatabasePath)
	assert.Equal(t, ".", cfg.ExportDir)
	assert.Equal(t, "-", cfg.IDSeparator)
	assert.False(t, cfg.DemoData)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ASSETDESK_ADDR", ":9090")
	t.Setenv("ASSETDESK_DB", "/tmp/portal.db")
	t.Setenv("ASSETDESK_DEMO", "1")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/tmp/portal.db", cfg.DatabasePath)
	assert.True(t, cfg.DemoData)
}

func TestLoadPicklistsEmptyPath(t *testing.T) {
	p, err := LoadPicklists("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPicklists(), p)
}

func TestLoadPicklistsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picklists.yaml")
	doc := `
categories:
  - SaaS
  - On-Prem
departments:
  - Research
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	p, err := LoadPicklists(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SaaS", "On-Prem"}, p.Categories)
	assert.Equal(t, []string{"Research"}, p.Departments)
	// Absent lists fall back to defaults.
	assert.Equal(t, DefaultPicklists().Sites, p.Sites)
}

func TestLoadPicklistsErrors(t *testing.T) {
	_, err := LoadPicklists(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("categories: {not: a list}"), 0o644))
	_, err = LoadPicklists(bad)
	assert.Error(t, err)
}
