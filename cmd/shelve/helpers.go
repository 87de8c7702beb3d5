package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"shelve/internal/plan"
)

// confirmMoves asks the user to approve the planned moves. Anything but
// an explicit yes declines.
func confirmMoves(cmd *cobra.Command, count int, root string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "Apply %d move(s) under %s? [y/N] ", count, root)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// formatStamp renders a stored RFC 3339 timestamp for table output,
// falling back to the raw value when it does not parse.
func formatStamp(value string) string {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return formatTime(t)
}

// shortID trims a UUID down to its first segment for narrow columns.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func buildPlanRows(p *plan.Plan) [][]string {
	rows := make([][]string, 0, len(p.Operations))
	for i, op := range p.Operations {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			op.Source,
			op.Destination,
			op.Reason,
		})
	}
	return rows
}

func printPlanTable(cmd *cobra.Command, p *plan.Plan) {
	table := renderTable(
		[]string{"#", "Source", "Destination", "Reason"},
		buildPlanRows(p),
		1,
	)
	fmt.Fprintln(cmd.OutOrStdout(), table)
}
