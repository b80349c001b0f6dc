package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadManifest_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	yml := "datasets:\n  vitals:\n    file: vitals_2024.csv\n  notes:\n    table: notes_v2\n"
	os.WriteFile(path, []byte(yml), 0644)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if got := m.Files(); len(got) != 1 || got["vitals"] != "vitals_2024.csv" {
		t.Errorf("files = %v", got)
	}
	if got := m.Tables(); len(got) != 1 || got["notes"] != "notes_v2" {
		t.Errorf("tables = %v", got)
	}
}

func TestLoadManifest_UnknownDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	os.WriteFile(path, []byte("datasets:\n  labs:\n    file: labs.csv\n"), 0644)

	_, err := LoadManifest(path)
	if err == nil {
		t.Fatal("expected error for unknown dataset")
	}
	if !strings.Contains(err.Error(), "oasis") {
		t.Errorf("error should list the known datasets: %v", err)
	}
}

func TestLoadManifest_MissingFile(t *testing.T) {
	if _, err := LoadManifest("/nonexistent/manifest.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestManifest_NilIsEmpty(t *testing.T) {
	var m *Manifest
	if len(m.Files()) != 0 || len(m.Tables()) != 0 {
		t.Error("nil manifest should yield empty overrides")
	}
}
