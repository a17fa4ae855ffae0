// Package postgres manages the PostgreSQL connection pool and schema
// migrations for persisted docking jobs and their pose results.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq"

	"github.com/arqgene/dockprep/internal/config"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// sqlOpen is a variable to allow mocking in tests.
var sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

// Connection manages the PostgreSQL connection pool.
type Connection struct {
	db     *sql.DB
	cfg    config.DatabaseConfig
	logger logging.Logger
}

// NewConnection opens a pool against the configured database and verifies it
// with a ping.
func NewConnection(cfg config.DatabaseConfig, log logging.Logger) (*Connection, error) {
	db, err := sqlOpen("postgres", BuildDSN(cfg))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to open database connection")
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "database connection failed")
	}

	log.Info("connected to postgres",
		logging.String("host", cfg.Host),
		logging.Int("port", cfg.Port),
		logging.String("database", cfg.DBName))
	return &Connection{db: db, cfg: cfg, logger: log}, nil
}

// DB exposes the underlying pool for repositories.
func (c *Connection) DB() *sql.DB { return c.db }

// Ping checks liveness; the health endpoint calls this.
func (c *Connection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close shuts down the pool.
func (c *Connection) Close() error {
	return c.db.Close()
}

// BuildDSN renders a keyword/value lib/pq connection string.
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// BuildURL renders a postgres:// URL, the form golang-migrate expects.
func BuildURL(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=" + cfg.SSLMode,
	}
	return u.String()
}
