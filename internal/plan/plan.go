// Package plan defines the reorganization plan document and its
// on-disk JSON form. A plan is pure data; validation and execution
// live elsewhere.
package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Operation is one intended move. Paths are absolute.
type Operation struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Reason      string `json:"reason,omitempty"`
}

// Plan is an ordered list of moves produced against a single root.
type Plan struct {
	ID        string    `json:"plan_id"`
	CreatedAt time.Time `json:"created_at"`

	// SnapshotID names the scan the plan was computed from, so a stale
	// plan can be traced back to the filesystem state it assumed.
	SnapshotID string `json:"snapshot_id,omitempty"`

	Root string `json:"root,omitempty"`

	// Aborted marks a plan the producer gave up on. Aborted plans are
	// rejected before anything touches the filesystem.
	Aborted bool `json:"aborted,omitempty"`

	Operations []Operation `json:"operations"`
}

// New builds a plan with a fresh identifier.
func New(root, snapshotID string, ops []Operation) *Plan {
	return &Plan{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		SnapshotID: snapshotID,
		Root:       root,
		Operations: ops,
	}
}

// IsEmpty reports whether the plan has no operations.
func (p *Plan) IsEmpty() bool {
	return p == nil || len(p.Operations) == 0
}

// Filename returns the canonical file name for this plan.
func (p *Plan) Filename() string {
	return "plan-" + p.ID + ".json"
}

// Save writes the plan to path via a temp file and rename so a crash
// never leaves a truncated plan behind.
func (p *Plan) Save(path string) error {
	payload, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("plan: encode: %w", err)
	}
	payload = append(payload, '\n')
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("plan: ensure plan dir: %w", err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".shelve-plan-%d.tmp", time.Now().UnixNano()))
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("plan: write temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("plan: rename: %w", err)
	}
	return nil
}

// Load reads a plan from path.
func Load(path string) (*Plan, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: read %s: %w", path, err)
	}
	var p Plan
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("plan: decode %s: %w", path, err)
	}
	return &p, nil
}

// Latest returns the most recently modified plan file in dir. It
// reports os.ErrNotExist when the directory holds no plans.
func Latest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("plan: read plan dir %s: %w", dir, err)
	}
	type candidate struct {
		path string
		mod  time.Time
	}
	var candidates []candidate
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "plan-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}
		candidates = append(candidates, candidate{path: filepath.Join(dir, name), mod: info.ModTime()})
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("plan: no plans in %s: %w", dir, os.ErrNotExist)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].mod.After(candidates[j].mod) })
	return candidates[0].path, nil
}
