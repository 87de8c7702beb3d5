package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelve/internal/catalog"
	"shelve/internal/config"
)

func newSnapshotsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List recorded scans of the root",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(cfg *config.Config, store *catalog.Store) error {
				snapshots, err := store.ListSnapshots(cmd.Context(), limit)
				if err != nil {
					return err
				}

				if ctx.JSONMode() {
					if snapshots == nil {
						snapshots = []catalog.SnapshotSummary{}
					}
					return writeJSON(cmd, snapshots)
				}

				out := cmd.OutOrStdout()
				if len(snapshots) == 0 {
					fmt.Fprintln(out, "No snapshots recorded.")
					return nil
				}

				rows := make([][]string, 0, len(snapshots))
				for _, s := range snapshots {
					rows = append(rows, []string{
						s.ID,
						fmt.Sprintf("%d", s.FileCount),
						s.Root,
						formatStamp(s.TakenAt),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Snapshot", "Files", "Root", "Taken"},
					rows, 2,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of snapshots to show")
	return cmd
}
