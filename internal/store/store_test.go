// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/soundtrail/internal/config"
	"github.com/tomtom215/soundtrail/internal/store"
	"github.com/tomtom215/soundtrail/internal/store/storetest"
)

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	s := storetest.NewSQLite(t)

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.Equal(t, int64(0), storetest.Count(t, s, "stream"))
}

func TestInsertReturningIDAndGet(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewSQLite(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	first, err := tx.InsertReturningID(ctx, "artist", []string{"name"}, "Radiohead")
	require.NoError(t, err)
	second, err := tx.InsertReturningID(ctx, "artist", []string{"name"}, "Portishead")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	var id int64
	found, err := tx.Get(ctx, &id, "SELECT id FROM artist WHERE name = ?", "Radiohead")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, first, id)

	found, err = tx.Get(ctx, &id, "SELECT id FROM artist WHERE name = ?", "Massive Attack")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, tx.Commit())
	assert.Equal(t, int64(2), storetest.Count(t, s, "artist"))

	// Rollback after commit is a no-op.
	assert.NoError(t, tx.Rollback())
}

func TestRollbackDiscardsRows(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewSQLite(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	_, err = tx.InsertReturningID(ctx, "artist", []string{"name"}, "Björk")
	require.NoError(t, err)
	n, err := tx.Count(ctx, "artist")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, tx.Rollback())
	assert.Equal(t, int64(0), storetest.Count(t, s, "artist"))
}

func TestUniqueViolationIsConstraintError(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewSQLite(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	require.NoError(t, tx.Insert(ctx, "track", []string{"uri", "name"}, "spotify:track:1", "One"))
	err = tx.Insert(ctx, "track", []string{"uri", "name"}, "spotify:track:1", "One again")
	require.Error(t, err)
	assert.Equal(t, store.ErrorClassConstraint, store.ClassifyError(err))
}

func TestStatementTimeoutIsTimeoutError(t *testing.T) {
	s := storetest.NewSQLite(t)

	ctx, cancel := context.WithCancel(context.Background())
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	cancel()
	err = tx.Insert(ctx, "artist", []string{"name"}, "Late")
	require.Error(t, err)
	assert.Equal(t, store.ErrorClassTimeout, store.ClassifyError(err))
}

func TestClassifyErrorFallbacks(t *testing.T) {
	assert.Equal(t, store.ErrorClassNone, store.ClassifyError(nil))
	assert.Equal(t, store.ErrorClassTimeout, store.ClassifyError(context.DeadlineExceeded))
	assert.Equal(t, store.ErrorClassConnection, store.ClassifyError(sql.ErrConnDone))
	assert.Equal(t, store.ErrorClassOther, store.ClassifyError(assert.AnError))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := store.Open(context.Background(), &config.DatabaseConfig{Driver: "oracle", StatementTimeout: time.Second})
	assert.Error(t, err)
}

func TestDuckDBInMemory(t *testing.T) {
	ctx := context.Background()
	s := storetest.Open(t, &config.DatabaseConfig{
		Driver:           config.DriverDuckDB,
		Path:             "",
		StatementTimeout: 10 * time.Second,
	})

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	artist, err := tx.InsertReturningID(ctx, "artist", []string{"name"}, "Nina Simone")
	require.NoError(t, err)
	album, err := tx.InsertReturningID(ctx, "album", []string{"name", "artist_id"}, "Pastel Blues", artist)
	require.NoError(t, err)
	require.NoError(t, tx.Insert(ctx, "track", []string{"uri", "name", "album_id"},
		"spotify:track:sinnerman", "Sinnerman", album))
	require.NoError(t, tx.Commit())

	assert.Equal(t, int64(1), storetest.Count(t, s, "track"))

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	err = tx.Insert(ctx, "artist", []string{"name"}, "Nina Simone")
	require.Error(t, err)
	assert.Equal(t, store.ErrorClassConstraint, store.ClassifyError(err))
}
