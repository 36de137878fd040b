package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-features/internal/report"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the dataset database",
	Long: `Run an arbitrary SQL query against the dataset database and print results as a table.

Schema overview:
  runs(id, created_at, year_from, year_to, seed, priming, rankings, roll_n, output,
    row_count, p1_wins)
  dataset_rows(run_id, seq, date, tourney_id, tourney_level, surface, round, best_of,
    p1_id, p2_id, y_p1_win, elo_diff, surface_elo_diff, rank_diff, rank_points_diff,
    rank_d4_diff, ..., h2h_diff, seed_diff, entry_p1, entry_p2, ace_rate_diff, ...)

Missing values are stored as NULL. Example:
  tennisfeat sql "SELECT surface, AVG(y_p1_win) FROM dataset_rows GROUP BY surface"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(strings.Join(args, " "))
	if err != nil {
		return err
	}
	report.PrintQueryTable(os.Stdout, cols, rows)
	return nil
}
