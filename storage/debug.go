package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// DumpHTML writes raw page markup to an auxiliary file for manual inspection.
// Nothing else consumes these files.
func DumpHTML(dir, name, html string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("debug: save html to %q: %w", path, err)
	}
	return path, nil
}
