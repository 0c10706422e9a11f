// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Querier is the statement surface the dimension resolver needs.
// *Tx satisfies it; tests can substitute a fake.
type Querier interface {
	Get(ctx context.Context, dest any, query string, args ...any) (bool, error)
	InsertReturningID(ctx context.Context, table string, cols []string, args ...any) (int64, error)
}

// Tx is a transaction whose statements each run under the store's
// statement timeout. Queries use ? placeholders.
type Tx struct {
	tx      *sqlx.Tx
	dialect Dialect
	timeout time.Duration
	done    bool
}

var _ Querier = (*Tx)(nil)

func (t *Tx) stmtContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, t.timeout)
}

// Exec runs a statement that returns no rows.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) error {
	ctx, cancel := t.stmtContext(ctx)
	defer cancel()

	if _, err := t.tx.ExecContext(ctx, t.dialect.Rebind(query), args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// Get scans a single row into dest. It reports false, with no error, when
// the query matched no rows.
func (t *Tx) Get(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	ctx, cancel := t.stmtContext(ctx)
	defer cancel()

	err := t.tx.GetContext(ctx, dest, t.dialect.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query: %w", err)
	}
	return true, nil
}

// InsertReturningID inserts one row and returns its generated id.
func (t *Tx) InsertReturningID(ctx context.Context, table string, cols []string, args ...any) (int64, error) {
	ctx, cancel := t.stmtContext(ctx)
	defer cancel()

	var id int64
	if err := t.tx.GetContext(ctx, &id, t.dialect.InsertReturningID(table, cols), args...); err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	return id, nil
}

// Insert inserts one row without reading back its id.
func (t *Tx) Insert(ctx context.Context, table string, cols []string, args ...any) error {
	ctx, cancel := t.stmtContext(ctx)
	defer cancel()

	if _, err := t.tx.ExecContext(ctx, t.dialect.Insert(table, cols), args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Count returns the number of rows in table as seen by the transaction.
func (t *Tx) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	if _, err := t.Get(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, err
	}
	return n, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Calling it after Commit is a no-op,
// so it is safe to defer.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
