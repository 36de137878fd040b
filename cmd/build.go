package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/go-tennis-features/internal/dataset"
	"github.com/pable/go-tennis-features/internal/export"
	"github.com/pable/go-tennis-features/internal/loader"
	"github.com/pable/go-tennis-features/internal/model"
	"github.com/pable/go-tennis-features/internal/rankings"
	"github.com/pable/go-tennis-features/internal/storage"
)

// build command flags.
var (
	buildFlags rankingsFlags

	buildSeed              int64
	buildPriming           string
	buildDefaultRank       float64
	buildDefaultRankPoints float64
	buildRollN             int
	buildOut               string
	buildFormat            string
	buildStore             bool
	buildFetch             bool
)

// buildCmd runs the chronological feature pass and writes the dataset.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the pre-match feature dataset",
	Long: `Load the match files for the selected seasons, process every main-draw match in
chronological order and write one feature row per match. Each row only uses information
available before the match; the P1/P2 roles are assigned by a seeded coin flip.

Qualifying rounds never produce rows. With --priming interleaved or prepass they update
ratings and form without being emitted.

Examples:
  tennisfeat build --year-from 2015 --year-to 2024 --out atp.csv
  tennisfeat build --fetch --priming interleaved --format xlsx --out atp.xlsx`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildFlags.register(buildCmd)
	f := buildCmd.Flags()
	f.Int64Var(&buildSeed, "seed", 7, "seed for the P1/P2 coin flip")
	f.StringVar(&buildPriming, "priming", "off", "qualifying matches as update-only input: off, interleaved or prepass")
	f.Float64Var(&buildDefaultRank, "default-rank", 2000, "rank assumed when none is known")
	f.Float64Var(&buildDefaultRankPoints, "default-rank-points", 0, "ranking points assumed when none are known")
	f.IntVar(&buildRollN, "roll-n", 20, "number of past matches in the serve-stat averages")
	f.StringVarP(&buildOut, "out", "o", "atp_match_prediction_full.csv", "output file")
	f.StringVar(&buildFormat, "format", "csv", "output format: csv or xlsx")
	f.BoolVar(&buildStore, "store", true, "also store the rows in the database")
	f.BoolVar(&buildFetch, "fetch", false, "download missing input files first")
}

func applyBuildFlags(cmd *cobra.Command) {
	buildFlags.apply(cmd)
	flags := cmd.Flags()
	b := &cfg.Build
	if flags.Changed("seed") {
		b.Seed = buildSeed
	}
	if flags.Changed("priming") {
		b.Priming = buildPriming
	}
	if flags.Changed("default-rank") {
		b.DefaultRank = buildDefaultRank
	}
	if flags.Changed("default-rank-points") {
		b.DefaultRankPoints = buildDefaultRankPoints
	}
	if flags.Changed("roll-n") {
		b.RollN = buildRollN
	}
	if flags.Changed("out") {
		b.Out = buildOut
	}
	if flags.Changed("format") {
		b.Format = buildFormat
	}
	if flags.Changed("store") {
		b.Store = buildStore
	}
	if flags.Changed("fetch") {
		b.Fetch = buildFetch
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	applyBuildFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	b := cfg.Build
	if b.Fetch {
		if err := fetchData(ctx); err != nil {
			return err
		}
	}

	ld := loader.New(cfg.DataDir, logger)
	all, err := ld.Matches(b.YearFrom, b.YearTo)
	if err != nil {
		if errors.Is(err, loader.ErrNoMatches) {
			return fmt.Errorf("%w (run 'tennisfeat fetch' first?)", err)
		}
		return err
	}
	mainDraw, qual := loader.Split(all)
	logger.Info("loaded matches",
		zap.Int("main", len(mainDraw)),
		zap.Int("qualifying", len(qual)),
		zap.Int("year_from", b.YearFrom),
		zap.Int("year_to", b.YearTo))

	idx := rankings.Empty()
	if b.Rankings {
		snaps, err := ld.Rankings(b.YearFrom, b.YearTo)
		if err != nil {
			return fmt.Errorf("load rankings: %w", err)
		}
		idx = rankings.Build(snaps)
		logger.Info("ranking index ready", zap.Int("players", idx.Players()))
	}

	return writeDataset(ctx, mainDraw, qual, idx)
}

// writeDataset runs the builder into the output file and, when enabled, the
// database. The stored run is rolled back if anything fails.
func writeDataset(ctx context.Context, mainDraw, qual []model.Match, idx *rankings.Index) (err error) {
	b := cfg.Build
	out, err := export.Create(b.Out, b.Format)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	sinks := export.Multi{out}

	var rw *storage.RunWriter
	if b.Store {
		var db *storage.DB
		db, err = openDB()
		if err != nil {
			out.Close()
			return err
		}
		defer db.Close()
		rw, err = db.BeginRun(storage.Run{
			YearFrom: b.YearFrom,
			YearTo:   b.YearTo,
			Seed:     b.Seed,
			Priming:  b.Priming,
			Rankings: b.Rankings,
			RollN:    b.RollN,
			Output:   b.Out,
		})
		if err != nil {
			out.Close()
			return fmt.Errorf("begin run: %w", err)
		}
		defer func() {
			if err != nil {
				rw.Rollback()
			}
		}()
		sinks = append(sinks, rw)
	}

	builder := dataset.New(b.Options(), idx, logger)
	stats, err := builder.Build(mainDraw, qual, cancelable{ctx, sinks})
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close output: %w", cerr)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Wrote %d rows to %s (P1 wins %.1f%%, primed %d)\n",
		stats.Rows, b.Out, 100*float64(stats.P1Wins)/float64(stats.Rows), stats.Primed)
	if rw != nil {
		run, err := rw.Commit()
		if err != nil {
			return fmt.Errorf("store run: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Stored run %s\n", run.ID)
	}
	return nil
}

// cancelable stops a build at the next row once ctx is done.
type cancelable struct {
	ctx  context.Context
	sink dataset.RowSink
}

func (c cancelable) Write(r model.Row) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	return c.sink.Write(r)
}
