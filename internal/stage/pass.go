package stage

import (
	"shelve/internal/plan"
	"shelve/internal/scan"
	"shelve/internal/transaction"
)

// Pass carries one organizing cycle through the pipeline stages. Each
// stage fills in the fields it owns: the scanner sets Snapshot, the
// planner sets Plan and PlanPath, the applier sets RunID and Result.
type Pass struct {
	Snapshot *scan.Snapshot
	Plan     *plan.Plan
	PlanPath string
	RunID    int64
	Result   *transaction.Result
}

// Moved reports how many files the pass relocated.
func (p *Pass) Moved() int {
	if p == nil || p.Result == nil {
		return 0
	}
	if p.Result.State != transaction.StateCommitted {
		return 0
	}
	return p.Result.Applied
}
