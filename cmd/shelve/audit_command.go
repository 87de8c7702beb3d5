package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelve/internal/audit"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var planID string
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the append-only journal of applied operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			entries, err := audit.Read(cfg.Paths.AuditLog)
			if err != nil {
				return err
			}
			if planID != "" {
				entries = audit.ForPlan(entries, planID)
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			if ctx.JSONMode() {
				if entries == nil {
					entries = []audit.Entry{}
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Journal is empty.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					formatTime(e.Time),
					shortID(e.PlanID),
					fmt.Sprintf("%d", e.Index),
					e.Status,
					e.Source,
					e.Destination,
					e.Detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Time", "Plan", "#", "Status", "Source", "Destination", "Detail"},
				rows, 3,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&planID, "plan", "", "Only show entries for this plan ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "Only show the newest N entries")
	return cmd
}
