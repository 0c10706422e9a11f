// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

// Package storetest provides throwaway stores for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/soundtrail/internal/config"
	"github.com/tomtom215/soundtrail/internal/store"
)

// SQLiteConfig returns a database config for a fresh SQLite file inside
// the test's temp directory.
func SQLiteConfig(tb testing.TB) *config.DatabaseConfig {
	tb.Helper()
	return &config.DatabaseConfig{
		Driver:           config.DriverSQLite,
		Path:             filepath.Join(tb.TempDir(), "soundtrail.db"),
		StatementTimeout: 10 * time.Second,
	}
}

// NewSQLite opens a SQLite store with the schema in place and closes it
// when the test ends.
func NewSQLite(tb testing.TB) *store.Store {
	tb.Helper()
	return Open(tb, SQLiteConfig(tb))
}

// Open opens a store for cfg, ensures the schema, and registers cleanup.
func Open(tb testing.TB, cfg *config.DatabaseConfig) *store.Store {
	tb.Helper()

	ctx := context.Background()
	s, err := store.Open(ctx, cfg)
	if err != nil {
		tb.Fatalf("open store: %v", err)
	}
	tb.Cleanup(func() { _ = s.Close() })

	if err := s.EnsureSchema(ctx); err != nil {
		tb.Fatalf("ensure schema: %v", err)
	}
	return s
}

// Count returns the row count of table, failing the test on error.
func Count(tb testing.TB, s *store.Store, table string) int64 {
	tb.Helper()
	n, err := s.Count(context.Background(), table)
	if err != nil {
		tb.Fatalf("count %s: %v", table, err)
	}
	return n
}
