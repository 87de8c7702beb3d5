package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shelve/internal/audit"
	"shelve/internal/catalog"
	"shelve/internal/watcher"
	"shelve/internal/workflow"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the root and organize continuously",
		Long: "Watch holds the organizing lock, runs one catch-up pass, and then\n" +
			"shelves new arrivals once the root has been quiet for the configured\n" +
			"debounce window. Stop it with Ctrl-C.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(true)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer func() { _ = store.Close() }()

			journal, err := audit.Open(cfg.Paths.AuditLog)
			if err != nil {
				return fmt.Errorf("open audit journal: %w", err)
			}
			defer func() { _ = journal.Close() }()

			mgr, err := workflow.NewManager(cfg, store, journal, logger)
			if err != nil {
				return fmt.Errorf("build workflow: %w", err)
			}
			w, err := watcher.New(cfg, mgr, logger)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := w.Start(signalCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (debounce %ds). Press Ctrl-C to stop.\n",
				cfg.Paths.Root, cfg.Watch.DebounceSeconds)

			<-signalCtx.Done()
			logger.Info("shelve watcher shutting down")
			w.Stop()
			return nil
		},
	}
}
