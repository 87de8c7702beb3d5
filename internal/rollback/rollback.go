// Package rollback undoes partially applied plans. The engine replays
// inverse operations in strict LIFO order through the same move
// primitive the forward pass used, without re-validation: by the time
// rollback runs, the paths involved were already proven safe.
package rollback

import (
	"fmt"
	"log/slog"

	"shelve/internal/audit"
	"shelve/internal/executor"
	"shelve/internal/logging"
	"shelve/internal/plan"
)

// Stack is the transaction-scoped undo stack. It grows by one inverse
// per applied operation and is either discarded on commit or consumed
// destructively by Rollback. Position in the stack equals the forward
// operation index.
type Stack struct {
	inverses []plan.Operation
}

// NewStack returns an empty undo stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push appends the inverse of a just-applied operation.
func (s *Stack) Push(inverse plan.Operation) {
	s.inverses = append(s.inverses, inverse)
}

// Len reports how many inverses are held.
func (s *Stack) Len() int {
	return len(s.inverses)
}

// Pop removes and returns the most recent inverse along with its
// forward operation index. ok is false when the stack is empty.
func (s *Stack) Pop() (inverse plan.Operation, index int, ok bool) {
	if len(s.inverses) == 0 {
		return plan.Operation{}, 0, false
	}
	index = len(s.inverses) - 1
	inverse = s.inverses[index]
	s.inverses = s.inverses[:index]
	return inverse, index, true
}

// StepFailure records one inverse that could not be applied, keyed by
// the forward operation index it was meant to undo.
type StepFailure struct {
	Index   int
	Inverse plan.Operation
	Err     error
}

// Report summarizes a rollback run. A failed step never stops the
// remaining steps; leaving a transaction half-undone silently is worse
// than an enumerated list of leftovers.
type Report struct {
	Attempted int
	Restored  int
	Failures  []StepFailure
}

// Complete reports whether every attempted inverse was applied.
func (r Report) Complete() bool {
	return len(r.Failures) == 0
}

// Summary renders the report in one line for logs and error text.
func (r Report) Summary() string {
	if r.Complete() {
		return fmt.Sprintf("restored %d of %d operations", r.Restored, r.Attempted)
	}
	return fmt.Sprintf("restored %d of %d operations, %d failed", r.Restored, r.Attempted, len(r.Failures))
}

// Engine replays undo stacks.
type Engine struct {
	exec    *executor.Executor
	journal *audit.Logger
	logger  *slog.Logger
}

// New builds an engine sharing the transaction's executor and journal.
// A nil logger disables engine logging.
func New(exec *executor.Executor, journal *audit.Logger, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		exec:    exec,
		journal: journal,
		logger:  logger.With(logging.String(logging.FieldComponent, "rollback")),
	}
}

// Rollback consumes the stack in reverse, applying each inverse and
// journaling a ROLLED_BACK line for every restore that succeeds.
// Failed steps are collected and reported, never retried, and never
// abort the remaining steps.
func (e *Engine) Rollback(planID string, stack *Stack) Report {
	var report Report
	for {
		inverse, index, ok := stack.Pop()
		if !ok {
			break
		}
		report.Attempted++
		if _, err := e.exec.Execute(inverse); err != nil {
			report.Failures = append(report.Failures, StepFailure{Index: index, Inverse: inverse, Err: err})
			e.logger.Error("rollback step failed",
				logging.Int(logging.FieldIndex, index),
				logging.String("source", inverse.Source),
				logging.String("destination", inverse.Destination),
				logging.Error(err))
			continue
		}
		report.Restored++
		e.logger.Debug("restored operation",
			logging.Int(logging.FieldIndex, index),
			logging.String("source", inverse.Source),
			logging.String("destination", inverse.Destination))
		if e.journal != nil {
			if err := e.journal.Log(planID, index, inverse, audit.StatusRolledBack, ""); err != nil {
				e.logger.Error("journal append failed during rollback", logging.Error(err))
			}
		}
	}
	return report
}
