package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"spendlog/internal/core"
	"spendlog/internal/viewstate"
)

func newListCommand(a *app) *cobra.Command {
	var (
		date    string
		allDays bool
		byDate  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse expenses grouped by category or date",
		Long: `Browse expenses for a single date (today by default) or across all
dates, sectioned by category (alphabetical) or by date (newest first).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if allDays && date != "" {
				return fmt.Errorf("--date and --all are mutually exclusive")
			}
			if date != "" {
				if _, err := time.Parse(core.DateLayout, date); err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
				}
			}

			list, err := viewstate.NewList(a.live)
			if err != nil {
				return fmt.Errorf("attach list coordinator: %w", err)
			}
			defer list.Close()

			switch {
			case allDays:
				err = list.ChangeDate(nil)
			case date != "":
				err = list.ChangeDate(&date)
			}
			if err != nil {
				return fmt.Errorf("change date filter: %w", err)
			}
			if byDate {
				list.ToggleGroupingMode()
			}

			items, err := awaitSnapshot(list.Items())
			if err != nil {
				return err
			}
			total, err := awaitSnapshot(list.Total())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No expenses recorded for this selection.")
				return nil
			}

			for _, item := range items {
				if item.IsHeader {
					fmt.Fprintf(out, "== %s ==\n", item.Header)
					continue
				}
				printRow(out, item.Expense)
			}
			fmt.Fprintf(out, "\nTotal: %.2f\n", total)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "show a single date (YYYY-MM-DD), default today")
	cmd.Flags().BoolVar(&allDays, "all", false, "show all dates")
	cmd.Flags().BoolVar(&byDate, "by-date", false, "section by date instead of category")

	return cmd
}

func printRow(out io.Writer, e core.Expense) {
	fmt.Fprintf(out, "  #%-4d %-28s %10.2f  %s", e.ID, e.Title, e.Amount, e.Date)
	if e.Notes != "" {
		fmt.Fprintf(out, "  (%s)", e.Notes)
	}
	fmt.Fprintln(out)
}
