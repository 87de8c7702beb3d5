package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"shelve/internal/errdefs"
)

const (
	exitFailure    = 1
	exitRejected   = 2
	exitRolledBack = 3
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes how a run ended: plans rejected before any
// mutation exit 2, transactions undone by a rollback exit 3, everything
// else exits 1.
func exitCode(err error) int {
	switch {
	case errdefs.RejectedBeforeMutation(err):
		return exitRejected
	case errors.Is(err, errdefs.ErrTransactionFailed):
		return exitRolledBack
	default:
		return exitFailure
	}
}
