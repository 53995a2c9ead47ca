package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kudoslab/kudos-bot/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// DB wraps the bun connection and implements Store.
type DB struct {
	db *bun.DB
}

// Ensure DB implements Store
var _ Store = (*DB)(nil)

// New establishes a PostgreSQL connection from config values.
func New(cfg *config.Config) (*DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithAddr(fmt.Sprintf("%s:%d", cfg.DBHost, cfg.DBPort)),
		pgdriver.WithUser(cfg.DBUser),
		pgdriver.WithPassword(cfg.DBPassword),
		pgdriver.WithDatabase(cfg.DBName),
		pgdriver.WithInsecure(true),
		pgdriver.WithApplicationName("kudos-bot"),
	))

	sqldb.SetMaxOpenConns(10)
	sqldb.SetMaxIdleConns(5)
	sqldb.SetConnMaxLifetime(30 * time.Minute)

	db := bun.NewDB(sqldb, pgdialect.New())

	if err := sqldb.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Infof("Connected to PostgreSQL at %s:%d/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)

	return &DB{db: db}, nil
}

// Close shuts down the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Bun returns the underlying bun.DB instance.
func (d *DB) Bun() *bun.DB {
	return d.db
}
