// Package paths provides the canonical path form used for every safety
// comparison in shelve.
//
// Validation and sandbox checks must agree on one canonicalization and one
// containment algorithm; a raw string-prefix test anywhere in that chain is a
// sandbox escape (root "/a/b" must not match sibling "/a/bc"). All helpers
// here operate on absolute, symlink-resolved, Unicode-normalized paths and
// compare them component-wise.
package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Canonicalize resolves path to its absolute, symlink-resolved, NFC-normalized
// form. Trailing components that do not exist yet (a destination that will be
// created by the move) are kept verbatim after resolving the deepest existing
// ancestor, mirroring realpath semantics for pending paths.
func Canonicalize(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}
	abs = filepath.Clean(norm.NFC.String(abs))

	resolved, err := resolveExisting(abs)
	if err != nil {
		return "", fmt.Errorf("canonicalize %q: %w", path, err)
	}
	return resolved, nil
}

// resolveExisting applies EvalSymlinks to the deepest existing ancestor of
// path and rejoins the untraversed remainder.
func resolveExisting(path string) (string, error) {
	var pending []string
	current := path
	for {
		real, err := filepath.EvalSymlinks(current)
		if err == nil {
			for i := len(pending) - 1; i >= 0; i-- {
				real = filepath.Join(real, pending[i])
			}
			return real, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			// Nothing along the chain exists; the cleaned absolute
			// form is already canonical.
			return path, nil
		}
		pending = append(pending, filepath.Base(current))
		current = parent
	}
}

// Contains reports whether candidate equals root or lies under it, compared
// path-component-wise. Both arguments must already be canonical.
func Contains(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)
	if root == candidate {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(candidate, prefix)
}

// UnderAny reports whether candidate lies under (or equals) any of the given
// prefixes, using the same component-wise comparison as Contains. Prefixes
// are cleaned and normalized but not symlink-resolved: deny-list entries are
// configuration data and may name directories that do not exist on this host.
func UnderAny(prefixes []string, candidate string) (string, bool) {
	for _, prefix := range prefixes {
		trimmed := strings.TrimSpace(prefix)
		if trimmed == "" {
			continue
		}
		cleaned := filepath.Clean(norm.NFC.String(trimmed))
		if Contains(cleaned, candidate) {
			return cleaned, true
		}
	}
	return "", false
}
