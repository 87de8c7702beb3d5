package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelve/internal/catalog"
	"shelve/internal/config"
	"shelve/internal/scan"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Snapshot the loose files in the root",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(cfg *config.Config, store *catalog.Store) error {
				snapshot, err := scan.Take(cfg.Paths.Root, scan.Options{IncludeHidden: cfg.Scan.IncludeHidden})
				if err != nil {
					return err
				}
				if err := store.SaveSnapshot(cmd.Context(), snapshot); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if snapshot.IsEmpty() {
					fmt.Fprintf(out, "No loose files under %s\n", snapshot.Root)
					return nil
				}

				rows := make([][]string, 0, len(snapshot.Files))
				for _, f := range snapshot.Files {
					rows = append(rows, []string{f.Name, humanBytes(f.Size), formatTime(f.Modified)})
				}
				fmt.Fprintln(out, renderTable([]string{"Name", "Size", "Modified"}, rows, 2))
				fmt.Fprintf(out, "Snapshot %s: %d file(s) under %s\n", snapshot.ID, len(snapshot.Files), snapshot.Root)
				return nil
			})
		},
	}
}
