package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelve/internal/catalog"
	"shelve/internal/config"
	"shelve/internal/watcher"
	"shelve/internal/workflow"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Scan, plan, and apply in one pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(false, func(cfg *config.Config, store *catalog.Store, mgr *workflow.Manager) error {
				lock, err := watcher.Lock(cfg)
				if err != nil {
					return err
				}
				defer func() { _ = lock.Unlock() }()

				out := cmd.OutOrStdout()
				if yes {
					pass, err := mgr.RunPass(cmd.Context())
					if err != nil {
						reportOutcome(cmd, pass, err)
						return err
					}
					if pass.Plan.IsEmpty() {
						fmt.Fprintf(out, "Nothing to organize under %s\n", cfg.Paths.Root)
						return nil
					}
					reportOutcome(cmd, pass, nil)
					return nil
				}

				planned, err := mgr.PlanOnly(cmd.Context())
				if err != nil {
					return err
				}
				if planned.Plan.IsEmpty() {
					fmt.Fprintf(out, "Nothing to organize under %s\n", cfg.Paths.Root)
					return nil
				}

				printPlanTable(cmd, planned.Plan)
				ok, err := confirmMoves(cmd, len(planned.Plan.Operations), cfg.Paths.Root)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(out, "Aborted; plan saved to %s\n", planned.PlanPath)
					return nil
				}

				pass, err := mgr.ApplyPlan(cmd.Context(), planned.Plan)
				reportOutcome(cmd, pass, err)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply without asking for confirmation")
	return cmd
}
