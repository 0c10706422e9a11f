// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

// Package store owns the relational target of an import: connection
// setup for each supported dialect, schema bootstrap, and the transaction
// wrapper every importer writes through.
//
// All statements are written with ? placeholders and rebound for the
// dialect. Every statement runs under the configured statement timeout;
// an expired timeout surfaces as an error classified ErrorClassTimeout
// and aborts the surrounding file transaction.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"

	"github.com/tomtom215/soundtrail/internal/config"
	"github.com/tomtom215/soundtrail/internal/logging"
)

// Store is an open connection pool to the target database.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	timeout time.Duration
}

// Open connects to the database described by cfg and verifies the
// connection with a ping.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	if cfg.IsFileBacked() && cfg.DSN == "" && cfg.Path != "" {
		// 0750 per gosec G301
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	db, err := sqlx.Open(dialect.DriverName, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name, err)
	}

	// One writer at a time. File-backed engines allow a single writer
	// anyway and the import loop is sequential.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	timeout := cfg.StatementTimeout
	if timeout <= 0 {
		timeout = config.DefaultStatementTimeout
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect.Name, err)
	}

	logging.Debug().Str("driver", dialect.Name).Dur("statement_timeout", timeout).Msg("Database connected")

	return &Store{db: db, dialect: dialect, timeout: timeout}, nil
}

// Dialect returns the dialect the store was opened with.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// StatementTimeout returns the per-statement timeout.
func (s *Store) StatementTimeout() time.Duration {
	return s.timeout
}

// EnsureSchema creates every table and index that does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.DDL() {
		stmtCtx, cancel := context.WithTimeout(ctx, s.timeout)
		_, err := s.db.ExecContext(stmtCtx, stmt)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	logging.Debug().Str("driver", s.dialect.Name).Int("tables", len(Tables)).Msg("Schema ensured")
	return nil
}

// Begin opens a transaction. Callers must Commit or Rollback it.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx, dialect: s.dialect, timeout: s.timeout}, nil
}

// Count returns the number of rows in table outside of any transaction.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	stmtCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var n int64
	if err := s.db.GetContext(stmtCtx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// DB exposes the underlying pool for read-side helpers and tests.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
