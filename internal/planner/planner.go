// Package planner turns a snapshot and a ruleset into a plan the
// transaction layer can apply. Planning reads the filesystem only to
// steer around occupied destination names; the executor remains the
// authority on collisions at apply time.
package planner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"shelve/internal/classify"
	"shelve/internal/logging"
	"shelve/internal/plan"
	"shelve/internal/scan"
)

// maxNameAttempts bounds the numbered-suffix search for a free
// destination name.
const maxNameAttempts = 10000

// Planner builds plans.
type Planner struct {
	rules  *classify.Ruleset
	logger *slog.Logger
}

// New builds a planner. A nil logger disables planner logging.
func New(rules *classify.Ruleset, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Planner{
		rules:  rules,
		logger: logger.With(logging.String(logging.FieldComponent, "planner")),
	}
}

// Build classifies every file in the snapshot and emits one move per
// file. Destinations are made collision-free against both the current
// shelf contents and the other operations in the same plan, by
// numbering the file name (report.pdf, report-2.pdf, ...).
func (p *Planner) Build(snapshot *scan.Snapshot) (*plan.Plan, error) {
	ops := make([]plan.Operation, 0, len(snapshot.Files))
	claimed := make(map[string]bool, len(snapshot.Files))

	for _, file := range snapshot.Files {
		decision := p.rules.Classify(file)
		destDir := filepath.Join(snapshot.Root, decision.Destination)
		dest, err := p.freeDestination(destDir, file.Name, claimed)
		if err != nil {
			return nil, err
		}
		claimed[dest] = true
		ops = append(ops, plan.Operation{
			Source:      file.Path,
			Destination: dest,
			Reason:      decision.Reason,
		})
		p.logger.Debug("planned move",
			logging.String("file", file.Name),
			logging.String("rule", string(decision.Rule)),
			logging.String("destination", dest))
	}
	return plan.New(snapshot.Root, snapshot.ID, ops), nil
}

// freeDestination returns the first destination path for name that is
// neither on disk nor claimed by an earlier operation in this plan.
func (p *Planner) freeDestination(destDir, name string, claimed map[string]bool) (string, error) {
	candidate := filepath.Join(destDir, name)
	for attempt := 2; ; attempt++ {
		if !claimed[candidate] {
			_, err := os.Lstat(candidate)
			if errors.Is(err, fs.ErrNotExist) {
				return candidate, nil
			}
			if err != nil {
				return "", fmt.Errorf("planner: probe destination %s: %w", candidate, err)
			}
		}
		if attempt > maxNameAttempts {
			return "", fmt.Errorf("planner: no free destination name for %s in %s", name, destDir)
		}
		candidate = filepath.Join(destDir, numberedName(name, attempt))
	}
}

// numberedName inserts a numeric suffix before the extension:
// report.pdf -> report-2.pdf.
func numberedName(name string, n int) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s-%d%s", stem, n, ext)
}
