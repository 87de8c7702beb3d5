package scan_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shelve/internal/scan"
)

func TestTakeCollectsTopLevelRegularFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "report.PDF"), []byte("pdf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("notes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ".hidden"), []byte("h"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Shelves must not be rescanned.
	if err := os.MkdirAll(filepath.Join(root, "Documents"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "Documents", "filed.txt"), []byte("filed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Symlinks are skipped when the platform supports them.
	_ = os.Symlink(filepath.Join(root, "notes.txt"), filepath.Join(root, "alias"))

	snapshot, err := scan.Take(root, scan.Options{})
	if err != nil {
		t.Fatalf("Take returned error: %v", err)
	}
	if snapshot.ID == "" {
		t.Fatal("expected snapshot id")
	}
	if snapshot.TakenAt.IsZero() {
		t.Fatal("expected snapshot timestamp")
	}

	if len(snapshot.Files) != 2 {
		t.Fatalf("expected 2 files, got %d: %+v", len(snapshot.Files), snapshot.Files)
	}
	// ReadDir orders by name, so snapshots are deterministic.
	if snapshot.Files[0].Name != "notes.txt" || snapshot.Files[1].Name != "report.PDF" {
		t.Fatalf("unexpected order: %s, %s", snapshot.Files[0].Name, snapshot.Files[1].Name)
	}

	pdf := snapshot.Files[1]
	if pdf.Ext != ".pdf" {
		t.Fatalf("expected lowercased extension, got %q", pdf.Ext)
	}
	if pdf.Size != int64(len("pdf")) {
		t.Fatalf("unexpected size: %d", pdf.Size)
	}
	if pdf.Path != filepath.Join(snapshot.Root, "report.PDF") {
		t.Fatalf("unexpected path: %q", pdf.Path)
	}
	if time.Since(pdf.Modified) > time.Minute {
		t.Fatalf("unexpected mtime: %v", pdf.Modified)
	}
}

func TestTakeIncludeHidden(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	snapshot, err := scan.Take(root, scan.Options{IncludeHidden: true})
	if err != nil {
		t.Fatalf("Take returned error: %v", err)
	}
	if len(snapshot.Files) != 1 || snapshot.Files[0].Name != ".env" {
		t.Fatalf("expected hidden file to be collected, got %+v", snapshot.Files)
	}
}

func TestTakeEmptyRoot(t *testing.T) {
	snapshot, err := scan.Take(t.TempDir(), scan.Options{})
	if err != nil {
		t.Fatalf("Take returned error: %v", err)
	}
	if !snapshot.IsEmpty() {
		t.Fatalf("expected empty snapshot, got %+v", snapshot.Files)
	}
}

func TestTakeMissingRoot(t *testing.T) {
	if _, err := scan.Take(filepath.Join(t.TempDir(), "absent"), scan.Options{}); err == nil {
		t.Fatal("expected error for missing root")
	}
}
