package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/go-tennis-features/internal/config"
	"github.com/pable/go-tennis-features/internal/logging"
	"github.com/pable/go-tennis-features/internal/storage"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	// cfg and logger are set by the root pre-run hook.
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tennisfeat",
	Short: "Pre-match tennis feature dataset builder",
	Long: `Build leakage-free pre-match feature datasets from the Sackmann ATP match files.

Every row describes a match using only information available before it was played:
Elo ratings, recent form, fatigue, head-to-head records, rolling serve statistics,
ranking history and tournament load.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default ~/.tennisfeat/datasets.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file (default ~/.tennisfeat/config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(shellCmd)
}

// setup loads the configuration, applies the persistent flags on top of it
// and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		c.DBPath = dbPath
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	l, err := logging.New(c.LogLevel)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}

// openDB opens the configured database, creating its directory if needed.
func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}
