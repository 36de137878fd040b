package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-features/internal/report"
	"github.com/pable/go-tennis-features/internal/storage"
)

// summaryCmd prints totals and breakdowns for one stored run.
var summaryCmd = &cobra.Command{
	Use:   "summary <run-prefix>",
	Short: "Summarize a stored dataset run",
	Long: `Display aggregate statistics about one stored run: row count, label balance,
date range, breakdowns by surface, tournament level and season, and how often the
optional columns (rank deltas, seed difference, best-of) are populated.

The run is selected by any unique prefix of its id, as shown by 'tennisfeat list'.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	return printSummary(os.Stdout, db, args[0])
}

func printSummary(w io.Writer, db *storage.DB, prefix string) error {
	run, err := db.GetRunByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("no run with id prefix %q", prefix)
	}

	ov, err := db.RunOverview(run.ID)
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	report.PrintRunHeader(w, *run, ov)
	if ov.Rows == 0 {
		return nil
	}

	for _, bd := range []struct{ title, by string }{
		{"By surface", storage.BySurface},
		{"By tournament level", storage.ByLevel},
		{"By season", storage.ByYear},
	} {
		groups, err := db.RunBreakdown(run.ID, bd.by)
		if err != nil {
			return fmt.Errorf("breakdown %s: %w", bd.by, err)
		}
		report.PrintBreakdownTable(w, bd.title, groups)
	}

	cov, err := db.RunCoverage(run.ID)
	if err != nil {
		return fmt.Errorf("get coverage: %w", err)
	}
	report.PrintCoverageTable(w, cov)
	return nil
}
