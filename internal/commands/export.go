package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"spendlog/internal/core"
	"spendlog/internal/report"
	"spendlog/internal/viewstate"
)

func newExportCommand(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the expense report as a PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := viewstate.NewReport(a.live, a.cfg.SubIdleGrace)
			defer rep.Close()

			if err := rep.Attach(); err != nil {
				return fmt.Errorf("attach report coordinator: %w", err)
			}
			defer rep.Detach()

			// The two aggregates arrive on independent live queries; collect
			// them concurrently.
			var (
				daily []core.DailyTotal
				cats  []core.CategoryTotal
			)
			var g errgroup.Group
			g.Go(func() error {
				var err error
				daily, err = awaitSnapshot(rep.DailyTotals())
				return err
			})
			g.Go(func() error {
				var err error
				cats, err = awaitSnapshot(rep.CategoryTotals())
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			dir := outDir
			if dir == "" {
				dir = a.cfg.ExportDir
			}
			path, err := report.Export(dir, daily, cats)
			if err != nil {
				return fmt.Errorf("export report: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "directory to write the PDF into (default from config)")

	return cmd
}
