//go:build unix

package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func TestCopyTreeVerifiedCleansUpOnFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tree")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "ok.txt"), []byte("ok"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A fifo is not copyable and must fail the whole tree.
	if err := unix.Mkfifo(filepath.Join(src, "pipe"), 0o600); err != nil {
		t.Skipf("fifo unavailable: %v", err)
	}

	dst := filepath.Join(dir, "copy")
	if err := CopyTreeVerified(src, dst); err == nil {
		t.Fatal("expected error for unsupported file type")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatal("expected destination tree to be removed after failure")
	}
}
