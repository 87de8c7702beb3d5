package executor_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shelve/internal/errdefs"
	"shelve/internal/executor"
	"shelve/internal/plan"
)

func TestExecuteMovesFileAndReturnsInverse(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.txt")
	dst := filepath.Join(root, "Documents", "a.txt")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	exec := executor.New(nil)
	inverse, err := exec.Execute(plan.Operation{Source: src, Destination: dst})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("expected source to be gone")
	}
	got, err := os.ReadFile(dst)
	if err != nil || string(got) != "payload" {
		t.Fatalf("expected payload at destination, got %q err %v", got, err)
	}
	if inverse.Source != dst || inverse.Destination != src {
		t.Fatalf("unexpected inverse: %+v", inverse)
	}
}

func TestExecuteInverseRestoresOriginal(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.txt")
	dst := filepath.Join(root, "shelf", "a.txt")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	exec := executor.New(nil)
	inverse, err := exec.Execute(plan.Operation{Source: src, Destination: dst})
	if err != nil {
		t.Fatalf("forward Execute returned error: %v", err)
	}
	if _, err := exec.Execute(inverse); err != nil {
		t.Fatalf("inverse Execute returned error: %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("expected file back at origin: %v", err)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatal("expected destination to be empty after undo")
	}
}

func TestExecuteMovesDirectory(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "bundle")
	if err := os.MkdirAll(filepath.Join(src, "inner"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "inner", "f.txt"), []byte("f"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dst := filepath.Join(root, "Shelved", "bundle")
	exec := executor.New(nil)
	if _, err := exec.Execute(plan.Operation{Source: src, Destination: dst}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "inner", "f.txt")); err != nil {
		t.Fatalf("expected nested file at destination: %v", err)
	}
}

func TestExecuteRefusesExistingDestination(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.txt")
	dst := filepath.Join(root, "b.txt")
	for path, content := range map[string]string{src: "a", dst: "unrelated"} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	exec := executor.New(nil)
	_, err := exec.Execute(plan.Operation{Source: src, Destination: dst})
	assertOpError(t, err, executor.ReasonDestinationExists)

	// Nothing may be overwritten or moved.
	if got, _ := os.ReadFile(dst); string(got) != "unrelated" {
		t.Fatalf("destination was clobbered: %q", got)
	}
	if _, statErr := os.Stat(src); statErr != nil {
		t.Fatalf("source must be untouched: %v", statErr)
	}
}

func TestExecuteRefusesDanglingSymlinkDestination(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.txt")
	if err := os.WriteFile(src, []byte("a"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dst := filepath.Join(root, "slot")
	if err := os.Symlink(filepath.Join(root, "nowhere"), dst); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	exec := executor.New(nil)
	_, err := exec.Execute(plan.Operation{Source: src, Destination: dst})
	assertOpError(t, err, executor.ReasonDestinationExists)
}

func TestExecuteReportsMissingSource(t *testing.T) {
	root := t.TempDir()
	exec := executor.New(nil)
	_, err := exec.Execute(plan.Operation{
		Source:      filepath.Join(root, "ghost.txt"),
		Destination: filepath.Join(root, "Documents", "ghost.txt"),
	})
	assertOpError(t, err, executor.ReasonSourceMissing)
}

func assertOpError(t *testing.T, err error, reason string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected failure with reason %q", reason)
	}
	var opErr *executor.OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *executor.OpError, got %T: %v", err, err)
	}
	if opErr.Reason != reason {
		t.Fatalf("expected reason %q, got %q", reason, opErr.Reason)
	}
	if !errors.Is(err, errdefs.ErrFileOperation) {
		t.Fatalf("expected ErrFileOperation marker, got %v", err)
	}
	if errdefs.RejectedBeforeMutation(err) {
		t.Fatal("executor failures are not pre-mutation rejections")
	}
}
