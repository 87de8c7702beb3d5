// Package scan collects the loose files at the top level of the
// sandbox root into an immutable snapshot for planning. Scanning is a
// pure read: it never touches file contents or mutates anything.
//
// The walk is deliberately non-recursive. The destination shelves are
// subdirectories of the same root, and descending into them would make
// every later pass re-plan files that are already filed.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"shelve/internal/paths"
)

// File is one candidate for reorganization.
type File struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Ext      string    `json:"extension,omitempty"`
	Size     int64     `json:"size_bytes"`
	Modified time.Time `json:"modified_at"`
}

// Snapshot captures the root's loose files at one instant.
type Snapshot struct {
	ID      string    `json:"snapshot_id"`
	Root    string    `json:"root"`
	TakenAt time.Time `json:"taken_at"`
	Files   []File    `json:"files"`
}

// Options tunes a scan.
type Options struct {
	// IncludeHidden also collects dotfiles.
	IncludeHidden bool
}

// Take scans the top level of root. Only regular files are collected;
// directories, symlinks, and special files are skipped. Files are
// ordered by name so identical trees yield identical snapshots.
func Take(root string, opts Options) (*Snapshot, error) {
	canonical, err := paths.Canonicalize(root)
	if err != nil {
		return nil, fmt.Errorf("scan: canonicalize root %s: %w", root, err)
	}
	entries, err := os.ReadDir(canonical)
	if err != nil {
		return nil, fmt.Errorf("scan: read root %s: %w", canonical, err)
	}

	snapshot := &Snapshot{
		ID:      uuid.NewString(),
		Root:    canonical,
		TakenAt: time.Now().UTC(),
	}
	for _, entry := range entries {
		name := entry.Name()
		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		info, infoErr := entry.Info()
		if infoErr != nil {
			return nil, fmt.Errorf("scan: stat %s: %w", filepath.Join(canonical, name), infoErr)
		}
		snapshot.Files = append(snapshot.Files, File{
			Name:     name,
			Path:     filepath.Join(canonical, name),
			Ext:      strings.ToLower(filepath.Ext(name)),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
		})
	}
	return snapshot, nil
}

// IsEmpty reports whether the snapshot found nothing to organize.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Files) == 0
}
