// Package transaction orchestrates plan application as an explicit
// state machine: validate, safety-check, then execute with per-step
// journaling, ending in commit or compensating rollback. After any
// run the filesystem reflects either every operation applied or none
// of them, subject only to individually reported rollback failures.
package transaction

import (
	"context"
	"fmt"
	"log/slog"

	"shelve/internal/audit"
	"shelve/internal/errdefs"
	"shelve/internal/executor"
	"shelve/internal/logging"
	"shelve/internal/plan"
	"shelve/internal/rollback"
	"shelve/internal/safety"
	"shelve/internal/validate"
)

// State names the transaction's position in its lifecycle.
type State string

const (
	StateInit          State = "INIT"
	StateValidated     State = "VALIDATED"
	StateSafetyChecked State = "SAFETY_CHECKED"
	StateExecuting     State = "EXECUTING"
	StateCommitted     State = "COMMITTED"
	StateRolledBack    State = "ROLLED_BACK"
	StateFailed        State = "FAILED"
)

// Error is surfaced after a compensating rollback. It wraps the causal
// failure and carries the rollback outcome.
type Error struct {
	PlanID   string
	Index    int
	Cause    error
	Rollback rollback.Report
}

func (e *Error) Error() string {
	return fmt.Sprintf("transaction failed: plan %s operation %d: %v; rollback %s",
		e.PlanID, e.Index, e.Cause, e.Rollback.Summary())
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{errdefs.ErrTransactionFailed, e.Cause}
	}
	return []error{errdefs.ErrTransactionFailed}
}

// Result reports how a controller run ended.
type Result struct {
	PlanID string
	State  State

	// Applied counts operations that mutated the filesystem before the
	// run ended. Equal to the plan length on commit.
	Applied int

	// Rollback is set when a compensating rollback ran.
	Rollback *rollback.Report
}

// Controller owns one sandbox root's transaction machinery. It is
// single-writer: two controllers over the same root must be excluded
// from each other externally, e.g. by the watch lock.
type Controller struct {
	gate    *safety.Gatekeeper
	exec    *executor.Executor
	engine  *rollback.Engine
	journal *audit.Logger
	logger  *slog.Logger
}

// NewController wires the executor and rollback engine around a safety
// gate and journal. A nil logger disables controller logging.
func NewController(gate *safety.Gatekeeper, journal *audit.Logger, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	exec := executor.New(logger)
	return &Controller{
		gate:    gate,
		exec:    exec,
		engine:  rollback.New(exec, journal, logger),
		journal: journal,
		logger:  logger.With(logging.String(logging.FieldComponent, "transaction")),
	}
}

// Apply runs the full state machine over p. The context is consulted
// once before execution begins; a transaction that has started
// executing always runs to commit or rollback. Operations are applied
// strictly in plan order, one at a time, because destinations share
// parents and the undo stack depends on ordering.
func (c *Controller) Apply(ctx context.Context, p *plan.Plan) (Result, error) {
	result := Result{State: StateInit}
	if p != nil {
		result.PlanID = p.ID
	}
	ctx = logging.WithPlanID(ctx, result.PlanID)

	if err := validate.Plan(p); err != nil {
		result.State = StateFailed
		c.logger.ErrorContext(ctx, "plan rejected by validator", logging.Error(err))
		return result, err
	}
	result.State = StateValidated

	if err := c.gate.CheckPlan(p); err != nil {
		result.State = StateFailed
		c.logger.ErrorContext(ctx, "plan rejected by safety gate", logging.Error(err))
		return result, err
	}
	result.State = StateSafetyChecked

	if err := ctx.Err(); err != nil {
		result.State = StateFailed
		return result, err
	}

	c.logger.InfoContext(ctx, "executing plan",
		logging.Int("operations", len(p.Operations)),
		logging.String("root", c.gate.Root()))
	result.State = StateExecuting
	stack := rollback.NewStack()

	for i, op := range p.Operations {
		if err := c.journal.Log(p.ID, i, op, audit.StatusPending, ""); err != nil {
			return c.rolledBack(ctx, &result, p, stack, i, err)
		}
		inverse, err := c.exec.Execute(op)
		if err != nil {
			if logErr := c.journal.Log(p.ID, i, op, audit.StatusFailed, err.Error()); logErr != nil {
				c.logger.ErrorContext(ctx, "journal append failed", logging.Error(logErr))
			}
			return c.rolledBack(ctx, &result, p, stack, i, err)
		}
		stack.Push(inverse)
		result.Applied = stack.Len()
		if err := c.journal.Log(p.ID, i, op, audit.StatusDone, ""); err != nil {
			// The move landed but could not be recorded. An unjournaled
			// mutation must not survive, so it is undone with the rest.
			return c.rolledBack(ctx, &result, p, stack, i, err)
		}
		c.logger.DebugContext(ctx, "operation applied",
			logging.Int(logging.FieldIndex, i),
			logging.String("source", op.Source),
			logging.String("destination", op.Destination))
	}

	result.State = StateCommitted
	c.logger.InfoContext(ctx, "plan committed", logging.Int("operations", result.Applied))
	return result, nil
}

// rolledBack runs the compensating rollback for a failure at index and
// builds the terminal result and error.
func (c *Controller) rolledBack(ctx context.Context, result *Result, p *plan.Plan, stack *rollback.Stack, index int, cause error) (Result, error) {
	c.logger.ErrorContext(ctx, "operation failed, rolling back",
		logging.Int(logging.FieldIndex, index),
		logging.Int("applied", stack.Len()),
		logging.Error(cause))

	report := c.engine.Rollback(p.ID, stack)
	result.State = StateRolledBack
	result.Rollback = &report

	if report.Complete() {
		c.logger.InfoContext(ctx, "rollback complete", logging.Int("restored", report.Restored))
	} else {
		c.logger.ErrorContext(ctx, "rollback incomplete, manual remediation needed",
			logging.Int("restored", report.Restored),
			logging.Int("failed", len(report.Failures)))
	}
	return *result, &Error{PlanID: p.ID, Index: index, Cause: cause, Rollback: report}
}
