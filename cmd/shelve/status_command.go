package main

import (
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"shelve/internal/catalog"
	"shelve/internal/config"
	"shelve/internal/transaction"
	"shelve/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, stage health, and the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(false, func(cfg *config.Config, store *catalog.Store, mgr *workflow.Manager) error {
				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				fmt.Fprintln(stdout, renderSectionHeader("Configuration", colorize))
				fmt.Fprintln(stdout, renderStatusLine("Config file", statusInfo, ctx.configPath, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Root", statusInfo, cfg.Paths.Root, colorize))
				fmt.Fprintln(stdout, renderStatusLine("State directory", statusInfo, cfg.Paths.StateDir, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Audit journal", statusInfo, cfg.Paths.AuditLog, colorize))
				fmt.Fprintln(stdout)

				fmt.Fprintln(stdout, renderSectionHeader("Stages", colorize))
				for _, health := range mgr.Health(cmd.Context()) {
					kind := statusOK
					if !health.Ready {
						kind = statusError
					}
					fmt.Fprintln(stdout, renderStatusLine(health.Name, kind, health.Detail, colorize))
				}
				fmt.Fprintln(stdout)

				fmt.Fprintln(stdout, renderSectionHeader("Watch lock", colorize))
				fmt.Fprintln(stdout, probeWatchLock(cfg, colorize))
				fmt.Fprintln(stdout)

				fmt.Fprintln(stdout, renderSectionHeader("Last run", colorize))
				line, err := lastRunLine(cmd, store, colorize)
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, line)
				return nil
			})
		},
	}
}

// probeWatchLock tries the watch lock without keeping it. A held lock
// means a watcher or apply is active somewhere.
func probeWatchLock(cfg *config.Config, colorize bool) string {
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	switch {
	case err != nil:
		return renderStatusLine("Lock", statusWarn, fmt.Sprintf("probe failed: %v", err), colorize)
	case ok:
		_ = lock.Unlock()
		return renderStatusLine("Lock", statusInfo, fmt.Sprintf("free (%s)", cfg.LockPath()), colorize)
	default:
		return renderStatusLine("Lock", statusOK, "held; a watcher or apply is running", colorize)
	}
}

func lastRunLine(cmd *cobra.Command, store *catalog.Store, colorize bool) (string, error) {
	runs, err := store.ListRuns(cmd.Context(), 1)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return renderStatusLine("Run", statusInfo, "none recorded", colorize), nil
	}

	run := runs[0]
	detail := fmt.Sprintf("%s at %s, %d move(s)", run.State, formatTime(run.StartedAt), run.Operations)
	if run.ErrorMessage != "" {
		detail += ": " + truncate(run.ErrorMessage, 60)
	}
	return renderStatusLine("Run", runStateKind(run.State), detail, colorize), nil
}

func runStateKind(state string) statusKind {
	switch transaction.State(state) {
	case transaction.StateCommitted:
		return statusOK
	case transaction.StateRolledBack:
		return statusWarn
	case transaction.StateFailed:
		return statusError
	default:
		return statusInfo
	}
}
