package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shelve/internal/errdefs"
)

// Run is one transaction attempt as recorded in history.
type Run struct {
	ID               int64     `json:"id"`
	PlanID           string    `json:"plan_id"`
	SnapshotID       string    `json:"snapshot_id"`
	Operations       int       `json:"operations"`
	State            string    `json:"state"`
	Applied          int       `json:"applied"`
	Restored         int       `json:"restored"`
	RollbackFailures int       `json:"rollback_failures"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

// Finished reports whether the run has a terminal record.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// StartRun records the beginning of a transaction attempt and returns
// the run's identity for FinishRun.
func (s *Store) StartRun(ctx context.Context, planID, snapshotID string, operations int) (int64, error) {
	res, err := s.execWithRetry(ensureContext(ctx),
		`INSERT INTO runs (plan_id, snapshot_id, operations, state, started_at)
         VALUES (?, ?, ?, ?, ?)`,
		planID, snapshotID, operations, "EXECUTING", storeTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("catalog: start run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("catalog: run id: %w", err)
	}
	return id, nil
}

// FinishRun records the terminal state of a run.
func (s *Store) FinishRun(ctx context.Context, runID int64, state string, applied, restored, rollbackFailures int, errorMessage string) error {
	_, err := s.execWithRetry(ensureContext(ctx),
		`UPDATE runs
         SET state = ?, applied = ?, restored = ?, rollback_failures = ?, error_message = ?, finished_at = ?
         WHERE id = ?`,
		state, applied, restored, rollbackFailures, errorMessage, storeTime(time.Now()), runID)
	if err != nil {
		return fmt.Errorf("catalog: finish run %d: %w", runID, err)
	}
	return nil
}

const runColumns = `id, plan_id, snapshot_id, operations, state, applied, restored, rollback_failures, error_message, started_at, finished_at`

func scanRun(scanner interface{ Scan(...any) error }) (Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
	)
	if err := scanner.Scan(&run.ID, &run.PlanID, &run.SnapshotID, &run.Operations, &run.State,
		&run.Applied, &run.Restored, &run.RollbackFailures, &run.ErrorMessage, &startedAt, &finishedAt); err != nil {
		return Run{}, err
	}
	var err error
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return Run{}, fmt.Errorf("catalog: parse run start time: %w", err)
	}
	if finishedAt.Valid {
		if run.FinishedAt, err = parseTime(finishedAt.String); err != nil {
			return Run{}, fmt.Errorf("catalog: parse run finish time: %w", err)
		}
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate runs: %w", err)
	}
	return runs, nil
}

// FindRunByPlan returns the most recent run for a plan.
func (s *Store) FindRunByPlan(ctx context.Context, planID string) (Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE plan_id = ? ORDER BY id DESC LIMIT 1`, planID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, errdefs.Wrap(errdefs.ErrNotFound, "catalog", "find_run", fmt.Sprintf("plan %s", planID), nil)
	}
	if err != nil {
		return Run{}, fmt.Errorf("catalog: find run for plan %s: %w", planID, err)
	}
	return run, nil
}
