// Package audit implements the append-only journal of attempted state
// transitions. One JSON line per transition, flushed to disk before
// the call returns, so the journal always matches what was actually
// attempted.
//
// Journal grammar per transaction: a committed plan of N operations
// produces exactly 2N lines alternating PENDING/DONE. A failure at
// index k produces k PENDING/DONE pairs, a PENDING+FAILED pair for k,
// then up to k ROLLED_BACK lines in reverse index order. A PENDING
// line with no matching DONE or FAILED line therefore marks a process
// that died mid-operation; a recovery procedure can be built on Read
// without changing this format.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"shelve/internal/plan"
)

// Journal statuses.
const (
	StatusPending    = "PENDING"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
	StatusRolledBack = "ROLLED_BACK"
)

// Entry is one journaled transition. Entries are immutable once
// appended.
type Entry struct {
	Time        time.Time `json:"time"`
	PlanID      string    `json:"plan_id"`
	Index       int       `json:"index"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Status      string    `json:"status"`

	// Detail carries the failure cause on FAILED lines.
	Detail string `json:"detail,omitempty"`
}

// Logger appends entries to a journal file. Safe for use from one
// process; concurrent processes must be serialized externally.
type Logger struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// Open creates or opens the journal at path for appending.
func Open(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("audit: ensure journal dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit: open journal %s: %w", path, err)
	}
	return &Logger{file: file, path: path}, nil
}

// Path returns the journal file location.
func (l *Logger) Path() string {
	return l.path
}

// Log appends one transition for an operation. It is the idiomatic
// entry point for the transaction layer.
func (l *Logger) Log(planID string, index int, op plan.Operation, status, detail string) error {
	return l.Append(Entry{
		PlanID:      planID,
		Index:       index,
		Source:      op.Source,
		Destination: op.Destination,
		Status:      status,
		Detail:      detail,
	})
}

// Append writes one entry as a single line and syncs it to disk. A
// zero Time is stamped with the current UTC time.
func (l *Logger) Append(entry Entry) error {
	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	} else {
		entry.Time = entry.Time.UTC()
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit: encode entry: %w", err)
	}
	payload = append(payload, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return fmt.Errorf("audit: journal %s is closed", l.path)
	}
	if _, err := l.file.Write(payload); err != nil {
		return fmt.Errorf("audit: append to %s: %w", l.path, err)
	}
	// Durability is the contract: a crash after this call must not
	// lose the line.
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("audit: sync %s: %w", l.path, err)
	}
	return nil
}

// Close releases the journal file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("audit: close %s: %w", l.path, err)
	}
	return nil
}

// Read returns every entry in the journal at path, in append order.
// A missing journal yields no entries and no error.
func Read(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("audit: open journal %s: %w", path, err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return entries, fmt.Errorf("audit: malformed entry at %s:%d: %w", path, line, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("audit: read journal %s: %w", path, err)
	}
	return entries, nil
}

// ForPlan filters entries down to one plan, preserving order.
func ForPlan(entries []Entry, planID string) []Entry {
	if planID == "" {
		return entries
	}
	var filtered []Entry
	for _, entry := range entries {
		if entry.PlanID == planID {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}
