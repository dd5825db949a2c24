// Package export writes full-state snapshots: every collection plus the
// layout configuration, serialised as one JSON document.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/assetdesk/assetdesk/internal/store"
)

// Write serialises a snapshot to w as indented JSON.
func Write(w io.Writer, snap store.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("export: encoding snapshot: %w", err)
	}
	return nil
}

// Filename returns the timestamped name for a snapshot file, e.g.
// assetdesk-export-20250602-111500.json.
func Filename(snap store.Snapshot) string {
	return fmt.Sprintf("assetdesk-export-%s.json", snap.ExportedAt.UTC().Format("20060102-150405"))
}

// WriteFile writes a snapshot into dir under its timestamped name and
// returns the full path.
func WriteFile(dir string, snap store.Snapshot) (string, error) {
	path := filepath.Join(dir, Filename(snap))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: creating %s: %w", path, err)
	}
	if err := Write(f, snap); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("export: closing %s: %w", path, err)
	}
	return path, nil
}
