// Package config loads tool settings from defaults, TENNISFEAT_* environment
// variables and an optional YAML file, in increasing order of precedence.
// Command-line flags are applied on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/pable/go-tennis-features/internal/dataset"
	"github.com/pable/go-tennis-features/internal/export"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TENNISFEAT"

// Config is the full tool configuration.
type Config struct {
	DataDir  string      `yaml:"data_dir" envconfig:"DATA_DIR" default:"data/raw/atp"`
	DBPath   string      `yaml:"db" envconfig:"DB"`
	BaseURL  string      `yaml:"base_url" envconfig:"BASE_URL"`
	LogLevel string      `yaml:"log_level" envconfig:"LOG_LEVEL" default:"info"`
	Build    BuildConfig `yaml:"build" envconfig:"BUILD"`
}

// BuildConfig holds the settings of a dataset build.
type BuildConfig struct {
	YearFrom          int     `yaml:"year_from" envconfig:"YEAR_FROM" default:"2010"`
	YearTo            int     `yaml:"year_to" envconfig:"YEAR_TO" default:"2024"`
	Seed              int64   `yaml:"seed" envconfig:"SEED" default:"7"`
	Rankings          bool    `yaml:"rankings" envconfig:"RANKINGS" default:"true"`
	Priming           string  `yaml:"priming" envconfig:"PRIMING" default:"off"`
	DefaultRank       float64 `yaml:"default_rank" envconfig:"DEFAULT_RANK" default:"2000"`
	DefaultRankPoints float64 `yaml:"default_rank_points" envconfig:"DEFAULT_RANK_POINTS" default:"0"`
	RollN             int     `yaml:"roll_n" envconfig:"ROLL_N" default:"20"`
	Out               string  `yaml:"out" envconfig:"OUT" default:"atp_match_prediction_full.csv"`
	Format            string  `yaml:"format" envconfig:"FORMAT" default:"csv"`
	Store             bool    `yaml:"store" envconfig:"STORE" default:"true"`
	Fetch             bool    `yaml:"fetch" envconfig:"FETCH" default:"false"`
}

// Dir is the per-user directory holding the default database and config file.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".tennisfeat")
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string { return filepath.Join(Dir(), "config.yaml") }

// DefaultDBPath is the database used when none is configured.
func DefaultDBPath() string { return filepath.Join(Dir(), "datasets.db") }

// Load reads defaults and environment, then overlays the YAML file at path.
// An empty path uses DefaultPath when that file exists; an explicit path
// must exist. The result is validated.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read config: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	return c.Build.Validate()
}

// Validate checks the build settings.
func (b *BuildConfig) Validate() error {
	if b.YearFrom > b.YearTo {
		return fmt.Errorf("year_from %d is after year_to %d", b.YearFrom, b.YearTo)
	}
	if b.RollN <= 0 {
		return fmt.Errorf("roll_n must be positive, got %d", b.RollN)
	}
	if _, err := dataset.ParsePrimingMode(b.Priming); err != nil {
		return err
	}
	switch b.Format {
	case export.FormatCSV, export.FormatXLSX:
	default:
		return fmt.Errorf("unknown format %q (want csv or xlsx)", b.Format)
	}
	return nil
}

// Options converts the build settings to builder options.
func (b *BuildConfig) Options() dataset.Options {
	return dataset.Options{
		Seed:              b.Seed,
		Priming:           dataset.PrimingMode(b.Priming),
		DefaultRank:       b.DefaultRank,
		DefaultRankPoints: b.DefaultRankPoints,
		RollN:             b.RollN,
	}
}
