package util

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds runtime settings and flags.
type Config struct {
	Backend      string `env:"TENSIONCURVE_BACKEND" envDefault:"file"`
	DataDir      string `env:"TENSIONCURVE_DATA_DIR"`
	DSN          string `env:"DATABASE_URL"`
	StoreKey     string `env:"TENSIONCURVE_STORE_KEY" envDefault:"dndCampaign"`
	ExportDir    string `env:"TENSIONCURVE_EXPORT_DIR"`
	Theme        string `env:"TENSIONCURVE_THEME" envDefault:"catppuccin"`
	AdvicePolicy string `env:"TENSIONCURVE_ADVICE" envDefault:"trend"` // trend|bands
	SeedText     string `env:"TENSIONCURVE_SEED"`
	LogLevel     string `env:"TENSIONCURVE_LOG_LEVEL" envDefault:"info"`
	LogFile      string `env:"TENSIONCURVE_LOG_FILE"`
	Watch        bool   `env:"TENSIONCURVE_WATCH" envDefault:"true"`
}

// Load reads the environment and fills directory defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.FillDefaults()
	return cfg, nil
}

// FillDefaults derives unset paths from DataDir (itself defaulting to ~/.tensioncurve).
func (c *Config) FillDefaults() {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.DataDir = filepath.Join(home, ".tensioncurve")
	}
	if c.ExportDir == "" {
		c.ExportDir = filepath.Join(c.DataDir, "exports")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "tensioncurve.log")
	}
	if c.StoreKey == "" {
		c.StoreKey = "dndCampaign"
	}
}

// Validate checks combinations env tags cannot express.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite:
	case BackendPostgres:
		if strings.TrimSpace(c.DSN) == "" {
			return fmt.Errorf("postgres backend requires a DSN")
		}
	default:
		return fmt.Errorf("unknown backend %q (want file|sqlite|postgres)", c.Backend)
	}
	return nil
}

// SQLitePath is where the sqlite backend keeps its database.
func (c Config) SQLitePath() string { return filepath.Join(c.DataDir, "tensioncurve.db") }

// SlogLevel maps LogLevel onto slog, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
