package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelve/internal/catalog"
	"shelve/internal/config"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past organizing runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(cfg *config.Config, store *catalog.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}

				if ctx.JSONMode() {
					if runs == nil {
						runs = []catalog.Run{}
					}
					return writeJSON(cmd, runs)
				}

				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded.")
					return nil
				}

				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						fmt.Sprintf("%d", run.ID),
						shortID(run.PlanID),
						run.State,
						fmt.Sprintf("%d", run.Operations),
						fmt.Sprintf("%d", run.Applied),
						fmt.Sprintf("%d", run.Restored),
						formatTime(run.StartedAt),
						truncate(run.ErrorMessage, 48),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Plan", "State", "Ops", "Applied", "Restored", "Started", "Detail"},
					rows, 1, 4, 5, 6,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}
