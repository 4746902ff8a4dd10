package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanDir_FindsCSVRecursively(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "portfolio.csv"))
	mustWrite(t, filepath.Join(dir, "2025", "q1.csv"))
	mustWrite(t, filepath.Join(dir, "notes.txt"))
	mustWrite(t, filepath.Join(dir, "2025", "README.md"))

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %d, want 2", len(files))
	}
	for _, f := range files {
		if filepath.Ext(f.Path) != ".csv" {
			t.Errorf("discovered non-csv file %s", f.Path)
		}
	}
}

func TestScanDir_MissingDir(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if files != nil {
		t.Errorf("files = %v, want nil for missing dir", files)
	}
}

func TestScanDir_UppercaseExtension(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "SPEND.CSV"))

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("files = %d, want 1", len(files))
	}
}

func mustWrite(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
}
