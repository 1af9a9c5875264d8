package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"review-harvester/models"
)

// EnsureDir makes sure the output directory exists before any network
// activity starts. A same-named regular file at that path is a fatal
// precondition failure with a specific diagnostic.
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%q exists but is not a directory — delete the file named %q and re-run", dir, dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat %q: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir %q: %w", dir, err)
	}
	return nil
}

// OutputPath derives the destination file for a product/source pair.
func OutputPath(dir, slug string, source models.Source) string {
	name := fmt.Sprintf("%s_%s_reviews.json", slug, strings.ToLower(string(source)))
	return filepath.Join(dir, name)
}

// JSONWriter writes harvested reviews as an indented JSON array.
type JSONWriter struct {
	path string
}

// NewJSONWriter creates a writer targeting the given file path.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// Write serializes the reviews and replaces any previous file content. An
// empty harvest still produces a valid empty array, never JSON null.
func (w *JSONWriter) Write(reviews []*models.Review) error {
	if reviews == nil {
		reviews = []*models.Review{}
	}
	data, err := json.MarshalIndent(reviews, "", "  ")
	if err != nil {
		return fmt.Errorf("json: marshal reviews: %w", err)
	}
	if err := os.WriteFile(w.path, data, 0644); err != nil {
		return fmt.Errorf("json: write %q: %w", w.path, err)
	}
	return nil
}

// Close is a no-op; the file is written atomically in Write.
func (w *JSONWriter) Close() error { return nil }
