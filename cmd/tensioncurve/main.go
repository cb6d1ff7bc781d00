package main

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/DaanHessen/tensioncurve/internal/engine"
	"github.com/DaanHessen/tensioncurve/internal/export"
	"github.com/DaanHessen/tensioncurve/internal/store"
	"github.com/DaanHessen/tensioncurve/internal/text"
	"github.com/DaanHessen/tensioncurve/internal/ui"
	"github.com/DaanHessen/tensioncurve/internal/util"
)

var (
	version      = "0.1.0"
	seedAlphabet = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg, err := util.Load()
	if err != nil {
		log.Fatal(err)
	}

	backend := flag.String("backend", cfg.Backend, "Storage backend: file|sqlite|postgres")
	dataDir := flag.String("data-dir", "", "Directory for campaigns, exports and logs (default ~/.tensioncurve)")
	dsn := flag.String("dsn", cfg.DSN, "PostgreSQL DSN for the postgres backend")
	storeKey := flag.String("key", cfg.StoreKey, "Key the campaign is saved under")
	exportDir := flag.String("export-dir", cfg.ExportDir, "Directory PNG exports are written to")
	theme := flag.String("theme", cfg.Theme, "Colour theme")
	advice := flag.String("advice", cfg.AdvicePolicy, "Advice policy: trend|bands")
	seedFlag := flag.String("seed", cfg.SeedText, "Seed string for advice rolls (optional; random if omitted)")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	noWatch := flag.Bool("no-watch", !cfg.Watch, "Do not watch the campaign file for outside changes")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tensioncurve [flags] | migrate up|down | version\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg.Backend = *backend
	cfg.DSN = *dsn
	cfg.StoreKey = *storeKey
	cfg.ExportDir = *exportDir
	cfg.Theme = *theme
	cfg.AdvicePolicy = *advice
	cfg.SeedText = *seedFlag
	cfg.LogLevel = *logLevel
	cfg.Watch = !*noWatch
	if *dataDir != "" {
		cfg.DataDir = *dataDir
		// Paths derived from the old data dir follow the new one.
		if !flagSet("export-dir") && os.Getenv("TENSIONCURVE_EXPORT_DIR") == "" {
			cfg.ExportDir = ""
		}
		if os.Getenv("TENSIONCURVE_LOG_FILE") == "" {
			cfg.LogFile = ""
		}
		cfg.FillDefaults()
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "version":
			fmt.Println("tensioncurve", version)
			return
		case "migrate":
			if len(args) < 2 {
				log.Fatal("migrate requires 'up' or 'down'")
			}
			runMigrate(cfg, args[1])
			return
		default:
			flag.Usage()
			os.Exit(2)
		}
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	seedText := strings.TrimSpace(cfg.SeedText)
	if seedText == "" {
		if seedText, err = generateSeed(); err != nil {
			log.Fatalf("failed to generate seed: %v", err)
		}
	}
	seed, err := engine.NewSessionSeed(seedText)
	if err != nil {
		log.Fatal(err)
	}
	policy, err := engine.PolicyFor(cfg.AdvicePolicy, seed.Stream("advice"))
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	openCtx, cancelOpen := context.WithTimeout(ctx, 30*time.Second)
	kv, err := store.Open(openCtx, cfg, logger)
	cancelOpen()
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer kv.Close()
	files, _ := kv.(*store.FileStore)

	logger.Info("session started",
		"version", version,
		"backend", cfg.Backend,
		"advice", policy.Name(),
		"seed", seedText,
		"export_dir", cfg.ExportDir,
	)

	err = ui.Run(ctx, ui.Deps{
		Campaign: engine.NewCampaign(),
		Store:    kv,
		Files:    files,
		Exporter: export.NewExporter(cfg.ExportDir, logger),
		Policy:   policy,
		Renderer: adviceRenderer,
		Config:   cfg,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("ui exited", "err", err)
		log.Fatal(err)
	}
	logger.Info("session ended")
}

func runMigrate(cfg util.Config, action string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	migrator, err := store.NewMigrator(cfg)
	if err != nil {
		log.Fatal(err)
	}
	switch action {
	case "up":
		if err := migrator.Up(ctx); err != nil && err != store.ErrNoChange {
			log.Fatal(err)
		}
		fmt.Println("Migrations applied")
	case "down":
		if err := migrator.Down(ctx); err != nil && err != store.ErrNoChange {
			log.Fatal(err)
		}
		fmt.Println("Migrations rolled back")
	default:
		log.Fatal("unknown migrate action; use up|down")
	}
}

// newLogger writes to a rotating file; the terminal belongs to the UI.
func newLogger(cfg util.Config) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger := slog.New(slog.NewTextHandler(rotator, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return logger, func() { _ = rotator.Close() }, nil
}

func adviceRenderer(width int) text.Renderer {
	plain := text.Plain(width)
	g, err := text.NewGlamour("dark", width)
	if err != nil {
		return plain
	}
	return text.WithFallback(g, plain)
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func generateSeed() (string, error) {
	buf := make([]byte, 15) // 24 characters base32
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToLower(seedAlphabet.EncodeToString(buf)), nil
}
