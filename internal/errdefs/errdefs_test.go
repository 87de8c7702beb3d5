package errdefs_test

import (
	"errors"
	"fmt"
	"testing"

	"shelve/internal/errdefs"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := errdefs.Wrap(errdefs.ErrFileOperation, "executor", "move", "copy failed", cause)

	if !errors.Is(err, errdefs.ErrFileOperation) {
		t.Fatalf("expected marker to survive wrapping: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to survive wrapping: %v", err)
	}
}

func TestWrapNilMarkerDefaults(t *testing.T) {
	err := errdefs.Wrap(nil, "executor", "move", "", nil)
	if !errors.Is(err, errdefs.ErrFileOperation) {
		t.Fatalf("nil marker should default to ErrFileOperation, got %v", err)
	}
}

func TestWrapDetailOrdering(t *testing.T) {
	err := errdefs.Wrap(errdefs.ErrConfiguration, "config", "load", "bad value", nil)
	want := "configuration error: config: load: bad value"
	if err.Error() != want {
		t.Fatalf("unexpected message: got %q want %q", err.Error(), want)
	}
}

func TestRejectedBeforeMutation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid plan", fmt.Errorf("context: %w", errdefs.ErrInvalidPlan), true},
		{"unsafe path", errdefs.Wrap(errdefs.ErrUnsafePath, "safety", "check", "", nil), true},
		{"transaction failure", errdefs.Wrap(errdefs.ErrTransactionFailed, "", "", "", nil), false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := errdefs.RejectedBeforeMutation(tc.err); got != tc.want {
			t.Fatalf("%s: RejectedBeforeMutation = %v, want %v", tc.name, got, tc.want)
		}
	}
}
