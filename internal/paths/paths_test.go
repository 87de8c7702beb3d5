package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"shelve/internal/paths"
)

func TestCanonicalizeResolvesSymlinks(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "real")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	link := filepath.Join(base, "alias")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	got, err := paths.Canonicalize(filepath.Join(link, "file.txt"))
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	want, err := paths.Canonicalize(filepath.Join(target, "file.txt"))
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if got != want {
		t.Fatalf("symlinked path not resolved: got %q want %q", got, want)
	}
}

func TestCanonicalizeKeepsPendingComponents(t *testing.T) {
	base := t.TempDir()
	pending := filepath.Join(base, "Documents", "new", "report.pdf")

	got, err := paths.Canonicalize(pending)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	canonBase, err := paths.Canonicalize(base)
	if err != nil {
		t.Fatalf("Canonicalize base: %v", err)
	}
	want := filepath.Join(canonBase, "Documents", "new", "report.pdf")
	if got != want {
		t.Fatalf("pending components lost: got %q want %q", got, want)
	}
}

func TestCanonicalizeCleansDotSegments(t *testing.T) {
	base := t.TempDir()
	messy := filepath.Join(base, "a", "..", "b", ".", "c.txt")

	got, err := paths.Canonicalize(messy)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	canonBase, err := paths.Canonicalize(base)
	if err != nil {
		t.Fatalf("Canonicalize base: %v", err)
	}
	if got != filepath.Join(canonBase, "b", "c.txt") {
		t.Fatalf("dot segments survived: %q", got)
	}
}

func TestCanonicalizeRejectsEmpty(t *testing.T) {
	if _, err := paths.Canonicalize("   "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestCanonicalizeNormalizesUnicode(t *testing.T) {
	// "é" composed (U+00E9) vs decomposed (U+0065 U+0301).
	composed := "/tmp/café/menu.txt"
	decomposed := "/tmp/café/menu.txt"

	a, err := paths.Canonicalize(composed)
	if err != nil {
		t.Fatalf("Canonicalize composed: %v", err)
	}
	b, err := paths.Canonicalize(decomposed)
	if err != nil {
		t.Fatalf("Canonicalize decomposed: %v", err)
	}
	if a != b {
		t.Fatalf("unicode forms not unified: %q vs %q", a, b)
	}
}

func TestContains(t *testing.T) {
	cases := []struct {
		name      string
		root      string
		candidate string
		want      bool
	}{
		{"root itself", "/srv/box", "/srv/box", true},
		{"direct child", "/srv/box", "/srv/box/a.txt", true},
		{"nested child", "/srv/box", "/srv/box/Documents/a.txt", true},
		{"sibling name extension", "/srv/box", "/srv/box-evil/a.txt", false},
		{"parent", "/srv/box", "/srv", false},
		{"unrelated", "/srv/box", "/etc/passwd", false},
		{"filesystem root", "/", "/anything/goes", true},
	}
	for _, tc := range cases {
		if got := paths.Contains(tc.root, tc.candidate); got != tc.want {
			t.Fatalf("%s: Contains(%q, %q) = %v, want %v", tc.name, tc.root, tc.candidate, got, tc.want)
		}
	}
}

func TestUnderAny(t *testing.T) {
	prefixes := []string{"/usr", "/etc", "  ", "/boot"}

	if hit, ok := paths.UnderAny(prefixes, "/etc/passwd"); !ok || hit != "/etc" {
		t.Fatalf("expected /etc hit, got %q %v", hit, ok)
	}
	if _, ok := paths.UnderAny(prefixes, "/etcetera/notes.txt"); ok {
		t.Fatal("string-prefix match leaked through component check")
	}
	if _, ok := paths.UnderAny(prefixes, "/home/user/file"); ok {
		t.Fatal("unexpected deny hit")
	}
}
