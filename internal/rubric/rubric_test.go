package rubric

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rubrics.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func TestLoadSeedFile(t *testing.T) {
	path := writeSeed(t, `
rubrics:
  - name: Greeting
    description: Opens the call correctly
    criteria: The agent must greet the client and state the company name.
  - name: Discovery
    criteria: The agent must ask at least 3 of 5 discovery questions.
`)

	rubrics, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rubrics) != 2 {
		t.Fatalf("expected 2 rubrics, got %d", len(rubrics))
	}
	if rubrics[0].Name != "Greeting" {
		t.Errorf("expected name Greeting, got %q", rubrics[0].Name)
	}
	if rubrics[0].Description != "Opens the call correctly" {
		t.Errorf("unexpected description %q", rubrics[0].Description)
	}
	if !rubrics[0].Active {
		t.Error("seeded rubrics should be active")
	}
	if rubrics[1].Criteria != "The agent must ask at least 3 of 5 discovery questions." {
		t.Errorf("unexpected criteria %q", rubrics[1].Criteria)
	}
}

func TestLoadSeedFile_MissingName(t *testing.T) {
	path := writeSeed(t, `
rubrics:
  - criteria: Something to check.
`)

	if _, err := LoadSeedFile(path); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestLoadSeedFile_MissingCriteria(t *testing.T) {
	path := writeSeed(t, `
rubrics:
  - name: Greeting
`)

	if _, err := LoadSeedFile(path); err == nil {
		t.Fatal("expected error for missing criteria")
	}
}

func TestLoadSeedFile_NoFile(t *testing.T) {
	if _, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
