package util

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TENSIONCURVE_DATA_DIR", dir)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendFile || cfg.StoreKey != "dndCampaign" || cfg.AdvicePolicy != "trend" || !cfg.Watch {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ExportDir != filepath.Join(dir, "exports") {
		t.Fatalf("export dir = %q", cfg.ExportDir)
	}
	if cfg.SQLitePath() != filepath.Join(dir, "tensioncurve.db") {
		t.Fatalf("sqlite path = %q", cfg.SQLitePath())
	}
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("TENSIONCURVE_WATCH", "sometimes")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		cfg Config
		ok  bool
	}{
		{Config{Backend: BackendFile}, true},
		{Config{Backend: BackendSQLite}, true},
		{Config{Backend: BackendPostgres}, false},
		{Config{Backend: BackendPostgres, DSN: "postgres://x"}, true},
		{Config{Backend: "redis"}, false},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); (err == nil) != tc.ok {
			t.Fatalf("Validate(%+v) = %v", tc.cfg, err)
		}
	}
}

func TestSlogLevel(t *testing.T) {
	if (Config{LogLevel: "DEBUG"}).SlogLevel() != slog.LevelDebug {
		t.Fatal("debug not mapped")
	}
	if (Config{}).SlogLevel() != slog.LevelInfo {
		t.Fatal("default should be info")
	}
}
