package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelve/internal/catalog"
	"shelve/internal/config"
	"shelve/internal/workflow"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Build a reorganization plan without touching any file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(false, func(cfg *config.Config, store *catalog.Store, mgr *workflow.Manager) error {
				pass, err := mgr.PlanOnly(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if pass.Plan.IsEmpty() {
					fmt.Fprintf(out, "Nothing to plan; %s is already organized.\n", cfg.Paths.Root)
					return nil
				}

				printPlanTable(cmd, pass.Plan)
				fmt.Fprintf(out, "Plan %s: %d move(s), saved to %s\n",
					pass.Plan.ID, len(pass.Plan.Operations), pass.PlanPath)
				fmt.Fprintln(out, "Run `shelve apply` to execute it.")
				return nil
			})
		},
	}
}
