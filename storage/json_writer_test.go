package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"review-harvester/models"
)

func TestEnsureDir(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "output")
		if err := EnsureDir(dir); err != nil {
			t.Fatalf("EnsureDir: %v", err)
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory not created: %v", err)
		}
	})

	t.Run("accepts existing directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := EnsureDir(dir); err != nil {
			t.Fatalf("EnsureDir: %v", err)
		}
	})

	t.Run("rejects same-named file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "output")
		if err := os.WriteFile(path, []byte("not a directory"), 0644); err != nil {
			t.Fatal(err)
		}
		err := EnsureDir(path)
		if err == nil {
			t.Fatal("expected an error for a file occupying the output path")
		}
		if !strings.Contains(err.Error(), "not a directory") {
			t.Errorf("diagnostic should name the problem, got: %v", err)
		}
	})
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("output", "slack", models.SourceG2)
	want := filepath.Join("output", "slack_g2_reviews.json")
	if got != want {
		t.Errorf("OutputPath = %q; want %q", got, want)
	}
}

func TestJSONWriterRoundTrip(t *testing.T) {
	rating := "4.5"
	reviews := []*models.Review{
		{
			Source: models.SourceG2,
			Title:  "Great tool",
			Body:   "Does what it says on the tin and considerably more.",
			Date:   models.NewDate(2024, time.March, 10),
			Rating: &rating,
		},
		{
			Source: models.SourceTrustRadius,
			Title:  "",
			Body:   "Second review with no title and no rating attached.",
			Date:   models.NewDate(2024, time.February, 1),
			Rating: nil,
		},
	}

	path := filepath.Join(t.TempDir(), "slack_g2_reviews.json")
	w := NewJSONWriter(path)
	if err := w.Write(reviews); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	raw := string(data)
	if !strings.Contains(raw, `"date": "2024-03-10"`) {
		t.Errorf("date not serialized as ISO calendar date:\n%s", raw)
	}
	if !strings.Contains(raw, `"rating": null`) {
		t.Errorf("missing rating not serialized as null:\n%s", raw)
	}
	if !strings.Contains(raw, `"review": "Second review`) {
		t.Errorf("body not serialized under the review key:\n%s", raw)
	}

	var decoded []*models.Review
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d reviews; want 2", len(decoded))
	}
	if decoded[0].Date != models.NewDate(2024, time.March, 10) {
		t.Errorf("decoded date = %v", decoded[0].Date)
	}
	if decoded[1].Rating != nil {
		t.Errorf("decoded rating = %v; want nil", *decoded[1].Rating)
	}
}

func TestJSONWriterEmptyHarvest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := NewJSONWriter(path).Write(nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("empty harvest should serialize to an empty array, got %q", data)
	}
}

func TestDumpHTML(t *testing.T) {
	dir := t.TempDir()
	path, err := DumpHTML(dir, "debug_g2_page_1.html", "<html><body>x</body></html>")
	if err != nil {
		t.Fatalf("DumpHTML: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<html><body>x</body></html>" {
		t.Errorf("dump content mismatch: %q", data)
	}
}
