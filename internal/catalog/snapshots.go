package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shelve/internal/errdefs"
	"shelve/internal/scan"
)

// SnapshotSummary is the list view of a stored snapshot.
type SnapshotSummary struct {
	ID        string `json:"id"`
	Root      string `json:"root"`
	TakenAt   string `json:"taken_at"`
	FileCount int    `json:"file_count"`
}

// SaveSnapshot stores a snapshot and its files atomically.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot *scan.Snapshot) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("catalog: begin snapshot tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshots (id, root, taken_at, file_count) VALUES (?, ?, ?, ?)`,
			snapshot.ID, snapshot.Root, storeTime(snapshot.TakenAt), len(snapshot.Files),
		); err != nil {
			return fmt.Errorf("catalog: insert snapshot: %w", err)
		}
		for _, file := range snapshot.Files {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO snapshot_files (snapshot_id, name, path, extension, size_bytes, modified_at)
                 VALUES (?, ?, ?, ?, ?, ?)`,
				snapshot.ID, file.Name, file.Path, file.Ext, file.Size, storeTime(file.Modified),
			); err != nil {
				return fmt.Errorf("catalog: insert snapshot file %s: %w", file.Path, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("catalog: commit snapshot: %w", err)
		}
		return nil
	})
}

// GetSnapshot loads a stored snapshot with its files.
func (s *Store) GetSnapshot(ctx context.Context, id string) (*scan.Snapshot, error) {
	ctx = ensureContext(ctx)

	var (
		snapshot scan.Snapshot
		takenAt  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, root, taken_at FROM snapshots WHERE id = ?`, id,
	).Scan(&snapshot.ID, &snapshot.Root, &takenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errdefs.Wrap(errdefs.ErrNotFound, "catalog", "get_snapshot", fmt.Sprintf("snapshot %s", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: load snapshot %s: %w", id, err)
	}
	if snapshot.TakenAt, err = parseTime(takenAt); err != nil {
		return nil, fmt.Errorf("catalog: parse snapshot time: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, path, extension, size_bytes, modified_at
         FROM snapshot_files WHERE snapshot_id = ? ORDER BY name`, id)
	if err != nil {
		return nil, fmt.Errorf("catalog: load snapshot files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			file     scan.File
			modified string
		)
		if err := rows.Scan(&file.Name, &file.Path, &file.Ext, &file.Size, &modified); err != nil {
			return nil, fmt.Errorf("catalog: scan snapshot file: %w", err)
		}
		if file.Modified, err = parseTime(modified); err != nil {
			return nil, fmt.Errorf("catalog: parse file time: %w", err)
		}
		snapshot.Files = append(snapshot.Files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate snapshot files: %w", err)
	}
	return &snapshot, nil
}

// ListSnapshots returns the most recent snapshots, newest first.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]SnapshotSummary, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, taken_at, file_count FROM snapshots ORDER BY taken_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: list snapshots: %w", err)
	}
	defer rows.Close()

	var summaries []SnapshotSummary
	for rows.Next() {
		var summary SnapshotSummary
		if err := rows.Scan(&summary.ID, &summary.Root, &summary.TakenAt, &summary.FileCount); err != nil {
			return nil, fmt.Errorf("catalog: scan snapshot row: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate snapshots: %w", err)
	}
	return summaries, nil
}
