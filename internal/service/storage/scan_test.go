package storage

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestScanDataset(t *testing.T) {
	root, err := os.MkdirTemp("", "scan_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(root)

	files := map[string]string{
		"unity/unity_a.jpg": "aaa",
		"unity/unity_b.PNG": "bb",
		"unity/notes.txt":   "skip me",
		"sun/sun_a.jpeg":    "s",
		"README.md":         "top level",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	entries, skipped, err := ScanDataset(root)
	if err != nil {
		t.Fatalf("ScanDataset failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d: %+v", len(entries), entries)
	}
	sizes := map[string]int64{}
	for _, e := range entries {
		sizes[e.ClassName+"/"+e.Filename] = e.FileSize
		if e.CreatedAt.IsZero() {
			t.Errorf("Entry %s should carry the file mod time", e.Filename)
		}
	}
	if sizes["unity/unity_a.jpg"] != 3 || sizes["unity/unity_b.PNG"] != 2 || sizes["sun/sun_a.jpeg"] != 1 {
		t.Errorf("Unexpected entries %v", sizes)
	}

	sort.Strings(skipped)
	if len(skipped) != 2 || skipped[0] != "README.md" || skipped[1] != filepath.Join("unity", "notes.txt") {
		t.Errorf("Unexpected skipped list %v", skipped)
	}
}

func TestScanDataset_MissingRoot(t *testing.T) {
	if _, _, err := ScanDataset(filepath.Join(os.TempDir(), "does-not-exist-dataset")); err == nil {
		t.Error("Expected error for missing dataset root")
	}
}
