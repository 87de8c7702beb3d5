package workflow

import (
	"context"
	"fmt"
	"time"

	"shelve/internal/logging"
	"shelve/internal/plan"
	"shelve/internal/stage"
)

// RunPass executes a full organizing cycle: scan, plan, apply. An empty
// plan ends the pass after the plan stage; the snapshot is still
// recorded so the catalog shows the root was inspected.
func (m *Manager) RunPass(ctx context.Context) (*stage.Pass, error) {
	return m.run(ctx, true)
}

// PlanOnly executes the scan and plan stages and stops before any move.
func (m *Manager) PlanOnly(ctx context.Context) (*stage.Pass, error) {
	return m.run(ctx, false)
}

func (m *Manager) run(ctx context.Context, apply bool) (*stage.Pass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pass := &stage.Pass{}
	if err := m.runStage(ctx, m.scan, pass); err != nil {
		return pass, err
	}
	if err := m.runStage(ctx, m.plan, pass); err != nil {
		return pass, err
	}
	if !apply {
		return pass, nil
	}
	if pass.Plan == nil || pass.Plan.IsEmpty() {
		m.logger.Info("nothing to organize", logging.String("root", m.cfg.Paths.Root))
		return pass, nil
	}
	if err := m.runStage(ctx, m.apply, pass); err != nil {
		return pass, err
	}
	return pass, nil
}

// ApplyPlan runs the apply stage over an already-built plan, typically
// one loaded back from a plan file.
func (m *Manager) ApplyPlan(ctx context.Context, p *plan.Plan) (*stage.Pass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p != nil {
		ctx = logging.WithPlanID(ctx, p.ID)
	}
	pass := &stage.Pass{Plan: p}
	if err := m.runStage(ctx, m.apply, pass); err != nil {
		return pass, err
	}
	return pass, nil
}

func (m *Manager) runStage(ctx context.Context, st pipelineStage, pass *stage.Pass) error {
	ctx = logging.WithStage(ctx, st.name)
	logger := logging.WithContext(ctx, m.logger)

	start := time.Now()
	logger.Info("stage started")
	if err := st.handler.Prepare(ctx, pass); err != nil {
		logger.Error("stage preparation failed", logging.Error(err))
		return fmt.Errorf("%s: %w", st.name, err)
	}
	if err := st.handler.Execute(ctx, pass); err != nil {
		logger.Error("stage failed",
			logging.Error(err),
			logging.Duration("stage_duration", time.Since(start)),
		)
		return fmt.Errorf("%s: %w", st.name, err)
	}
	logger.Info("stage completed", logging.Duration("stage_duration", time.Since(start)))
	return nil
}
