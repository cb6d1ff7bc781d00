package store

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/DaanHessen/tensioncurve/internal/util"
)

var ErrNoChange = errors.New("no change")

// KV is the string-keyed blob store campaigns are saved into.
type KV interface {
	// Get returns the value under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open connects to the backend selected by cfg, applying migrations for the
// SQL backends.
func Open(ctx context.Context, cfg util.Config, logger *slog.Logger) (KV, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		kv  KV
		err error
	)
	switch cfg.Backend {
	case util.BackendSQLite:
		var s *SQLiteStore
		if s, err = OpenSQLite(ctx, cfg.SQLitePath()); err == nil {
			kv = s
		}
	case util.BackendPostgres:
		mig, merr := NewMigrator(cfg)
		if merr != nil {
			return nil, merr
		}
		if merr := mig.Up(ctx); merr != nil && merr != ErrNoChange {
			return nil, wrap(merr, "postgres migrations")
		}
		var p *PostgresStore
		if p, err = OpenPostgres(ctx, cfg.DSN); err == nil {
			kv = p
		}
	default:
		var f *FileStore
		if f, err = NewFileStore(cfg.DataDir); err == nil {
			kv = f
		}
	}
	if err != nil {
		return nil, err
	}
	logger.Info("store opened", "backend", cfg.Backend, "data_dir", cfg.DataDir)
	return kv, nil
}

// Helper error wrap
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
