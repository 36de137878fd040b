package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-features/internal/sackmann"
)

// rankingsFlags collects the year range and ranking switch shared by fetch and build.
type rankingsFlags struct {
	yearFrom   int
	yearTo     int
	noRankings bool
	dataDir    string
}

func (f *rankingsFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.yearFrom, "year-from", 2010, "first season to include")
	cmd.Flags().IntVar(&f.yearTo, "year-to", 2024, "last season to include")
	cmd.Flags().BoolVar(&f.noRankings, "no-rankings", false, "skip the weekly ranking files")
	cmd.Flags().StringVar(&f.dataDir, "data-dir", "", "directory holding the raw CSV files (default data/raw/atp)")
}

// apply copies the flags the user set onto the loaded configuration.
func (f *rankingsFlags) apply(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("year-from") {
		cfg.Build.YearFrom = f.yearFrom
	}
	if flags.Changed("year-to") {
		cfg.Build.YearTo = f.yearTo
	}
	if flags.Changed("no-rankings") {
		cfg.Build.Rankings = !f.noRankings
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = f.dataDir
	}
}

var fetchFlags rankingsFlags

// fetchCmd downloads the raw Sackmann files.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the Sackmann ATP match and ranking files",
	Long: `Download atp_matches_YYYY.csv for each season in range, the weekly ranking files and
atp_players.csv into the data directory. Files already present are kept; files the
server does not have are reported and skipped.

Examples:
  tennisfeat fetch --year-from 2015 --year-to 2024
  tennisfeat fetch --no-rankings --data-dir /tmp/atp`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchFlags.register(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	fetchFlags.apply(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return fetchData(ctx)
}

// fetchData syncs the files the current configuration needs.
func fetchData(ctx context.Context) error {
	b := cfg.Build
	client := sackmann.NewClient(cfg.BaseURL, logger)
	res, err := client.Sync(ctx, cfg.DataDir, sackmann.Files(b.YearFrom, b.YearTo, b.Rankings))
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Downloaded %d, already present %d, missing on server %d (%s)\n",
		len(res.Downloaded), len(res.Skipped), len(res.Missing), cfg.DataDir)
	for _, name := range res.Missing {
		fmt.Fprintf(os.Stdout, "  missing: %s\n", name)
	}
	return nil
}
