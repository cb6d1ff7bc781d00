package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/DaanHessen/tensioncurve/internal/store/migrations"
	"github.com/DaanHessen/tensioncurve/internal/util"
)

// Migrator handles DB schema migrations using golang-migrate and the
// embedded SQL files of the selected backend.
type Migrator struct {
	backend string
	url     string
}

// NewMigrator builds a migrator for the SQL backend in cfg.
func NewMigrator(cfg util.Config) (*Migrator, error) {
	switch cfg.Backend {
	case util.BackendPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("missing DSN")
		}
		return &Migrator{backend: util.BackendPostgres, url: cfg.DSN}, nil
	case util.BackendSQLite:
		return sqliteMigrator(cfg.SQLitePath())
	default:
		return nil, fmt.Errorf("backend %q has no schema to migrate", cfg.Backend)
	}
}

func sqliteMigrator(path string) (*Migrator, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, wrap(err, "create sqlite dir")
	}
	return &Migrator{backend: util.BackendSQLite, url: "sqlite://" + path}, nil
}

func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, func(mig *migrate.Migrate) error { return mig.Up() })
}

func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, func(mig *migrate.Migrate) error { return mig.Steps(-1) })
}

func (m *Migrator) run(ctx context.Context, step func(*migrate.Migrate) error) error {
	mig, closer, err := m.migrateInstance()
	if err != nil {
		return err
	}
	defer closer()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			mig.GracefulStop <- true
		case <-done:
		}
	}()
	if err := step(mig); err != nil {
		if err == migrate.ErrNoChange {
			return ErrNoChange
		}
		return err
	}
	return nil
}

func (m *Migrator) migrateInstance() (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrations.FS, m.backend)
	if err != nil {
		return nil, func() {}, wrap(err, "load embedded migrations")
	}
	mig, err := migrate.NewWithSourceInstance("iofs", src, m.url)
	if err != nil {
		return nil, func() {}, err
	}
	return mig, func() { mig.Close() }, nil
}
