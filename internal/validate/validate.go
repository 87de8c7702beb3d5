// Package validate implements the structural and semantic plan checks
// that run before anything touches the filesystem. Validation is pure:
// it reads filesystem metadata only to canonicalize paths, and running
// it twice on the same plan yields the same verdict.
package validate

import (
	"fmt"

	"shelve/internal/errdefs"
	"shelve/internal/paths"
	"shelve/internal/plan"
)

// Rejection reasons. Fail-fast: the first violated check wins.
const (
	ReasonAborted          = "plan aborted"
	ReasonMalformed        = "malformed plan"
	ReasonSourceIsDest     = "source equals destination"
	ReasonDuplicateDest    = "duplicate destination"
	ReasonUnresolvablePath = "unresolvable path"
)

// Error describes why a plan was rejected. Index is the offending
// operation's position, or -1 for plan-level defects.
type Error struct {
	Reason string
	Index  int
	Err    error
}

func (e *Error) Error() string {
	if e.Index < 0 {
		if e.Err != nil {
			return fmt.Sprintf("invalid plan: %s: %v", e.Reason, e.Err)
		}
		return fmt.Sprintf("invalid plan: %s", e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid plan: %s (operation %d): %v", e.Reason, e.Index, e.Err)
	}
	return fmt.Sprintf("invalid plan: %s (operation %d)", e.Reason, e.Index)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{errdefs.ErrInvalidPlan, e.Err}
	}
	return []error{errdefs.ErrInvalidPlan}
}

func reject(reason string, index int, err error) error {
	return &Error{Reason: reason, Index: index, Err: err}
}

// Plan checks a plan in order: aborted flag, required fields, then per
// operation a canonical source/destination comparison and a duplicate
// destination scan. It stops at the first violation and never mutates
// anything.
func Plan(p *plan.Plan) error {
	if p == nil {
		return reject(ReasonMalformed, -1, nil)
	}
	if p.Aborted {
		return reject(ReasonAborted, -1, nil)
	}
	if p.ID == "" || p.SnapshotID == "" || len(p.Operations) == 0 {
		return reject(ReasonMalformed, -1, nil)
	}

	seen := make(map[string]int, len(p.Operations))
	for i, op := range p.Operations {
		if op.Source == "" || op.Destination == "" {
			return reject(ReasonMalformed, i, nil)
		}
		src, err := paths.Canonicalize(op.Source)
		if err != nil {
			return reject(ReasonUnresolvablePath, i, err)
		}
		dst, err := paths.Canonicalize(op.Destination)
		if err != nil {
			return reject(ReasonUnresolvablePath, i, err)
		}
		if src == dst {
			return reject(ReasonSourceIsDest, i, nil)
		}
		if _, dup := seen[dst]; dup {
			return reject(ReasonDuplicateDest, i, nil)
		}
		seen[dst] = i
	}
	return nil
}
