package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendlog/internal/viewstate"
)

func newReportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show 7-day daily totals and category totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := viewstate.NewReport(a.live, a.cfg.SubIdleGrace)
			defer rep.Close()

			if err := rep.Attach(); err != nil {
				return fmt.Errorf("attach report coordinator: %w", err)
			}
			defer rep.Detach()

			daily, err := awaitSnapshot(rep.DailyTotals())
			if err != nil {
				return err
			}
			cats, err := awaitSnapshot(rep.CategoryTotals())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Daily totals (last 7 days):")
			for _, d := range daily {
				fmt.Fprintf(out, "  %-5s %10.2f\n", d.DayOfWeek, d.Total)
			}

			fmt.Fprintln(out, "\nCategory totals:")
			if len(cats) == 0 {
				fmt.Fprintln(out, "  (no expenses recorded)")
				return nil
			}
			for _, c := range cats {
				name := c.Category
				if name == "" {
					name = "(uncategorized)"
				}
				fmt.Fprintf(out, "  %-24s %10.2f\n", name, c.Total)
			}
			return nil
		},
	}
}
