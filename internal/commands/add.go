package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendlog/internal/core"
	"spendlog/internal/viewstate"
)

func newAddCommand(a *app) *cobra.Command {
	var draft core.Draft

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense dated today",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validation happens here at the entry boundary; the store
			// itself accepts whatever it is given.
			if err := draft.Validate(); err != nil {
				return err
			}

			entry, err := viewstate.NewEntry(a.live)
			if err != nil {
				return fmt.Errorf("attach entry coordinator: %w", err)
			}
			defer entry.Close()

			// Drain the pre-insert total so the next snapshot reflects the
			// new record.
			if _, err := awaitSnapshot(entry.TotalToday()); err != nil {
				return err
			}

			id, err := entry.AddExpense(cmd.Context(), draft)
			if err != nil {
				return fmt.Errorf("add expense: %w", err)
			}

			total, err := awaitSnapshot(entry.TotalToday())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recorded expense #%d: %s %.2f\n", id, draft.Title, draft.Amount)
			fmt.Fprintf(out, "Spent today: %.2f\n", total)
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.Title, "title", "", "what the money went to (required)")
	cmd.Flags().Float64Var(&draft.Amount, "amount", 0, "amount spent, must be positive (required)")
	cmd.Flags().StringVar(&draft.Category, "category", "", "category label")
	cmd.Flags().StringVar(&draft.Notes, "notes", "", "free-form notes, up to 100 characters")
	cmd.Flags().StringVar(&draft.Receipt, "receipt", "", "reference to an attached receipt image")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
