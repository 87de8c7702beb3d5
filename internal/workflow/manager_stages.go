package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"shelve/internal/catalog"
	"shelve/internal/config"
	"shelve/internal/logging"
	"shelve/internal/planner"
	"shelve/internal/preflight"
	"shelve/internal/scan"
	"shelve/internal/stage"
	"shelve/internal/transaction"
)

// scanStage snapshots the root and records it in the catalog.
type scanStage struct {
	cfg   *config.Config
	store *catalog.Store
}

func (s *scanStage) Prepare(_ context.Context, _ *stage.Pass) error {
	return s.cfg.EnsureDirectories()
}

func (s *scanStage) Execute(ctx context.Context, pass *stage.Pass) error {
	snapshot, err := scan.Take(s.cfg.Paths.Root, scan.Options{IncludeHidden: s.cfg.Scan.IncludeHidden})
	if err != nil {
		return err
	}
	if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
		return err
	}
	pass.Snapshot = snapshot
	return nil
}

func (s *scanStage) HealthCheck(context.Context) stage.Health {
	return healthFromCheck("scan", preflight.CheckDirectoryAccess("Root directory", s.cfg.Paths.Root))
}

// planStage turns the snapshot into a saved plan file.
type planStage struct {
	planner  *planner.Planner
	plansDir string
}

func (s *planStage) Prepare(_ context.Context, pass *stage.Pass) error {
	if pass.Snapshot == nil {
		return errors.New("no snapshot to plan from")
	}
	return nil
}

func (s *planStage) Execute(_ context.Context, pass *stage.Pass) error {
	p, err := s.planner.Build(pass.Snapshot)
	if err != nil {
		return err
	}
	pass.Plan = p
	if p.IsEmpty() {
		return nil
	}
	path := filepath.Join(s.plansDir, p.Filename())
	if err := p.Save(path); err != nil {
		return err
	}
	pass.PlanPath = path
	return nil
}

func (s *planStage) HealthCheck(context.Context) stage.Health {
	return healthFromCheck("plan", preflight.CheckDirectoryAccess("Plans directory", s.plansDir))
}

// applyStage hands the plan to the transaction controller and records
// the run in the catalog.
type applyStage struct {
	cfg        *config.Config
	store      *catalog.Store
	controller *transaction.Controller
	logger     *slog.Logger
}

func (s *applyStage) Prepare(ctx context.Context, _ *stage.Pass) error {
	return gateOnPreflight(ctx, s.cfg, s.logger)
}

func (s *applyStage) Execute(ctx context.Context, pass *stage.Pass) error {
	if pass.Plan == nil {
		return errors.New("no plan to apply")
	}

	runID, err := s.store.StartRun(ctx, pass.Plan.ID, pass.Plan.SnapshotID, len(pass.Plan.Operations))
	if err != nil {
		return fmt.Errorf("record run start: %w", err)
	}
	pass.RunID = runID

	result, applyErr := s.controller.Apply(ctx, pass.Plan)
	pass.Result = &result

	restored, failures := 0, 0
	if result.Rollback != nil {
		restored = result.Rollback.Restored
		failures = len(result.Rollback.Failures)
	}
	message := ""
	if applyErr != nil {
		message = applyErr.Error()
	}
	// The transaction ran to completion even if ctx was cancelled along
	// the way; the outcome row must not be lost to that cancellation.
	finishCtx := context.WithoutCancel(ctx)
	if err := s.store.FinishRun(finishCtx, runID, string(result.State), result.Applied, restored, failures, message); err != nil {
		// The journal already holds the authoritative record; a catalog
		// bookkeeping miss is not worth failing the pass over.
		logging.WithContext(ctx, s.logger).Warn("failed to record run outcome",
			logging.Int64("run_id", runID),
			logging.Error(err),
		)
	}
	return applyErr
}

func (s *applyStage) HealthCheck(context.Context) stage.Health {
	return healthFromCheck("apply", preflight.CheckAuditJournal(s.cfg.Paths.AuditLog))
}

func healthFromCheck(name string, result preflight.Result) stage.Health {
	if result.Passed {
		return stage.Healthy(name)
	}
	return stage.Unhealthy(name, result.Detail)
}
