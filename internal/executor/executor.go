// Package executor applies exactly one move operation and returns its
// inverse. It assumes the operation already passed validation and the
// safety gate; its own checks are the runtime ones that cannot be
// known in advance (collisions, vanished sources, device boundaries).
package executor

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"shelve/internal/errdefs"
	"shelve/internal/fileutil"
	"shelve/internal/logging"
	"shelve/internal/plan"
)

// Failure reasons surfaced in OpError.
const (
	ReasonSourceMissing     = "source missing"
	ReasonDestinationExists = "destination exists"
	ReasonMoveFailed        = "move failed"
)

// OpError reports a single failed move.
type OpError struct {
	Reason string
	Op     plan.Operation
	Err    error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("file operation failed: %s: %s -> %s: %v", e.Reason, e.Op.Source, e.Op.Destination, e.Err)
	}
	return fmt.Sprintf("file operation failed: %s: %s -> %s", e.Reason, e.Op.Source, e.Op.Destination)
}

func (e *OpError) Unwrap() []error {
	if e.Err != nil {
		return []error{errdefs.ErrFileOperation, e.Err}
	}
	return []error{errdefs.ErrFileOperation}
}

func opError(reason string, op plan.Operation, err error) error {
	return &OpError{Reason: reason, Op: op, Err: err}
}

// Executor performs moves one at a time.
type Executor struct {
	logger *slog.Logger
}

// New builds an executor. A nil logger disables executor logging.
func New(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{logger: logger.With(logging.String(logging.FieldComponent, "executor"))}
}

// Execute moves op.Source to op.Destination and returns the inverse
// operation that undoes it. Missing sources and existing destinations
// fail explicitly; nothing is ever overwritten. Same-volume moves are
// a single atomic rename; cross-volume moves follow a
// copy-verify-delete protocol that never leaves two live copies or
// zero copies behind silently.
func (e *Executor) Execute(op plan.Operation) (plan.Operation, error) {
	inverse := plan.Operation{Source: op.Destination, Destination: op.Source, Reason: op.Reason}

	srcInfo, err := os.Lstat(op.Source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return plan.Operation{}, opError(ReasonSourceMissing, op, nil)
		}
		return plan.Operation{}, opError(ReasonMoveFailed, op, err)
	}
	// Lstat so a dangling symlink still counts as occupying the slot.
	if _, err := os.Lstat(op.Destination); err == nil {
		return plan.Operation{}, opError(ReasonDestinationExists, op, nil)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return plan.Operation{}, opError(ReasonMoveFailed, op, err)
	}

	if err := os.MkdirAll(filepath.Dir(op.Destination), 0o755); err != nil {
		return plan.Operation{}, opError(ReasonMoveFailed, op, err)
	}

	renameErr := os.Rename(op.Source, op.Destination)
	if renameErr == nil {
		return inverse, nil
	}

	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		e.logger.Debug("cross-device move, using copy-verify-delete",
			logging.String("source", op.Source),
			logging.String("destination", op.Destination))
		if err := e.moveAcrossDevices(op, srcInfo); err != nil {
			return plan.Operation{}, err
		}
		return inverse, nil
	}
	return plan.Operation{}, opError(ReasonMoveFailed, op, renameErr)
}

// moveAcrossDevices copies source to destination, verifies the copy,
// then deletes the source. If the delete fails the fresh copy is
// removed so the source stays the single live copy.
func (e *Executor) moveAcrossDevices(op plan.Operation, srcInfo fs.FileInfo) error {
	switch {
	case srcInfo.IsDir():
		if err := fileutil.CopyTreeVerified(op.Source, op.Destination); err != nil {
			return opError(ReasonMoveFailed, op, err)
		}
		if err := os.RemoveAll(op.Source); err != nil {
			_ = os.RemoveAll(op.Destination)
			return opError(ReasonMoveFailed, op, fmt.Errorf("remove source after copy: %w", err))
		}
	case srcInfo.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(op.Source)
		if err != nil {
			return opError(ReasonMoveFailed, op, err)
		}
		if err := os.Symlink(target, op.Destination); err != nil {
			return opError(ReasonMoveFailed, op, err)
		}
		if err := os.Remove(op.Source); err != nil {
			_ = os.Remove(op.Destination)
			return opError(ReasonMoveFailed, op, fmt.Errorf("remove source after copy: %w", err))
		}
	case srcInfo.Mode().IsRegular():
		if err := fileutil.CopyFileVerified(op.Source, op.Destination); err != nil {
			return opError(ReasonMoveFailed, op, err)
		}
		if err := os.Remove(op.Source); err != nil {
			_ = os.Remove(op.Destination)
			return opError(ReasonMoveFailed, op, fmt.Errorf("remove source after copy: %w", err))
		}
	default:
		return opError(ReasonMoveFailed, op, fmt.Errorf("unsupported file type %s", srcInfo.Mode().Type()))
	}
	return nil
}
