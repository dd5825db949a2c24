// Package config loads runtime configuration: process settings from the
// environment (with .env support for development) and the admin-editable
// picklists from a YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/assetdesk/assetdesk/internal/registry"
)

// Config is the resolved process configuration.
type Config struct {
	Addr         string // HTTP listen address
	DatabasePath string // sqlite file for activity feed and persisted config
	ExportDir    string // directory snapshot exports are written to
	PicklistPath string // optional YAML picklist file
	IDSeparator  string // separator inside generated asset identifiers
	DemoData     bool   // seed the built-in demo dataset on startup
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:         getenv("ASSETDESK_ADDR", ":8080"),
		DatabasePath: getenv("ASSETDESK_DB", "assetdesk.db"),
		ExportDir:    getenv("ASSETDESK_EXPORT_DIR", "."),
		PicklistPath: os.Getenv("ASSETDESK_PICKLISTS"),
		IDSeparator:  getenv("ASSETDESK_ID_SEPARATOR", "-"),
		DemoData:     os.Getenv("ASSETDESK_DEMO") == "1",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// picklistFile is the YAML shape of the picklist configuration.
type picklistFile struct {
	Categories  []string `yaml:"categories"`
	Sites       []string `yaml:"sites"`
	Departments []string `yaml:"departments"`
}

// DefaultPicklists returns the built-in option lists used when no picklist
// file is configured.
func DefaultPicklists() registry.Picklists {
	return registry.Picklists{
		Categories:  []string{"Productivity", "Collaboration", "Development", "Design", "Computers", "Displays", "Peripherals", "Networking"},
		Sites:       []string{"Headquarters", "Branch Office", "Remote"},
		Departments: []string{"Engineering", "Design", "Finance", "IT", "Operations", "Sales"},
	}
}

// LoadPicklists reads the picklist YAML at path. An empty path yields the
// defaults; lists absent from the file also fall back to the defaults.
func LoadPicklists(path string) (registry.Picklists, error) {
	defaults := DefaultPicklists()
	if path == "" {
		return defaults, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return registry.Picklists{}, fmt.Errorf("config: reading picklists %s: %w", path, err)
	}
	var file picklistFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return registry.Picklists{}, fmt.Errorf("config: parsing picklists %s: %w", path, err)
	}

	p := registry.Picklists{
		Categories:  file.Categories,
		Sites:       file.Sites,
		Departments: file.Departments,
	}
	if len(p.Categories) == 0 {
		p.Categories = defaults.Categories
	}
	if len(p.Sites) == 0 {
		p.Sites = defaults.Sites
	}
	if len(p.Departments) == 0 {
		p.Departments = defaults.Departments
	}
	return p, nil
}
