package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shelve/internal/catalog"
	"shelve/internal/config"
	"shelve/internal/plan"
	"shelve/internal/stage"
	"shelve/internal/watcher"
	"shelve/internal/workflow"
)

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "apply [plan-file]",
		Short: "Apply a saved plan as one transaction",
		Long: "Apply executes every move in a plan, newest saved plan by default.\n" +
			"If any move fails, the completed ones are undone and the root is\n" +
			"left exactly as it was.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(false, func(cfg *config.Config, store *catalog.Store, mgr *workflow.Manager) error {
				path := ""
				if len(args) == 1 {
					path = args[0]
				} else {
					latest, err := plan.Latest(cfg.PlansDir())
					if errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("no saved plans under %s; run `shelve plan` first", cfg.PlansDir())
					}
					if err != nil {
						return err
					}
					path = latest
				}

				p, err := plan.Load(path)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if p.IsEmpty() {
					fmt.Fprintf(out, "Plan %s has no operations.\n", p.ID)
					return nil
				}
				if !yes {
					printPlanTable(cmd, p)
					ok, err := confirmMoves(cmd, len(p.Operations), p.Root)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Aborted; nothing was moved.")
						return nil
					}
				}

				lock, err := watcher.Lock(cfg)
				if err != nil {
					return err
				}
				defer func() { _ = lock.Unlock() }()

				pass, err := mgr.ApplyPlan(cmd.Context(), p)
				reportOutcome(cmd, pass, err)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply without asking for confirmation")
	return cmd
}

// reportOutcome prints what an apply attempt did to the filesystem.
func reportOutcome(cmd *cobra.Command, pass *stage.Pass, err error) {
	out := cmd.OutOrStdout()
	if err == nil {
		fmt.Fprintf(out, "Committed: %d file(s) shelved.\n", pass.Moved())
		return
	}
	if pass == nil || pass.Result == nil || pass.Result.Rollback == nil {
		return
	}
	report := pass.Result.Rollback
	if report.Complete() {
		fmt.Fprintf(out, "Transaction failed; %s. The root is back to how it started.\n", report.Summary())
	} else {
		fmt.Fprintf(out, "Transaction failed; %s. Check `shelve audit` for the files that could not be restored.\n", report.Summary())
	}
}
