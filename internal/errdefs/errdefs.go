// Package errdefs declares the sentinel error markers shared across shelve
// components.
//
// Concrete error types (validate.Error, safety.Violation, executor.OpError,
// transaction.Error) unwrap to one of these markers so callers can classify a
// failure with errors.Is instead of matching on types: rejected before any
// mutation (ErrInvalidPlan, ErrUnsafePath), failed and rolled back after
// partial mutation (ErrTransactionFailed), or a single move gone wrong
// (ErrFileOperation).
package errdefs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPlan marks structural or semantic defects detected before
	// any filesystem mutation.
	ErrInvalidPlan = errors.New("invalid plan")
	// ErrUnsafePath marks sandbox escapes and forbidden-prefix hits,
	// detected before any filesystem mutation.
	ErrUnsafePath = errors.New("unsafe path")
	// ErrFileOperation marks a single move that failed during execution.
	ErrFileOperation = errors.New("file operation failed")
	// ErrTransactionFailed marks a transaction that was rolled back after
	// partial execution; it always wraps the causal ErrFileOperation.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks lookups that came up empty (plans, snapshots, runs).
	ErrNotFound = errors.New("not found")
)

// Wrap tags err with the given marker and a component/operation detail string.
// The marker must be one of the exported sentinels; a nil marker is treated as
// ErrFileOperation. A nil err produces a marker-only error.
func Wrap(marker error, component, operation, message string, err error) error {
	if marker == nil {
		marker = ErrFileOperation
	}
	detail := buildDetail(component, operation, message)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// RejectedBeforeMutation reports whether err was raised by a pre-flight check
// that never touched the filesystem.
func RejectedBeforeMutation(err error) bool {
	return errors.Is(err, ErrInvalidPlan) || errors.Is(err, ErrUnsafePath)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
