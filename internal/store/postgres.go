package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type documentRecord struct {
	DocKey    string    `gorm:"column:doc_key;primaryKey"`
	Body      string    `gorm:"column:body"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (documentRecord) TableName() string { return "campaign_documents" }

// PostgresStore wraps gorm.DB for campaign documents.
type PostgresStore struct {
	gorm *gorm.DB
	sql  *sql.DB
}

// OpenPostgres connects to dsn. Migrations are expected to be applied.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(4)
	sdb.SetMaxIdleConns(2)
	if err := sdb.PingContext(ctx); err != nil {
		return nil, err
	}
	return &PostgresStore{gorm: gdb, sql: sdb}, nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var rec documentRecord
	err := p.gorm.WithContext(ctx).Where("doc_key = ?", key).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, wrap(err, "get campaign document")
	}
	return []byte(rec.Body), true, nil
}

func (p *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	rec := documentRecord{DocKey: key, Body: string(value), UpdatedAt: time.Now().UTC()}
	err := p.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&rec).Error
	return wrap(err, "put campaign document")
}

func (p *PostgresStore) Close() error { return p.sql.Close() }
