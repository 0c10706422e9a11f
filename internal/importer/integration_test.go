// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

//go:build integration

package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/soundtrail/internal/config"
	"github.com/tomtom215/soundtrail/internal/store"
	"github.com/tomtom215/soundtrail/internal/store/storetest"
	"github.com/tomtom215/soundtrail/internal/testinfra"
)

// runServerImport imports the three-stream fixture into s twice and checks
// dimension idempotency and constraint classification on a real server.
func runServerImport(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	writeExport(t, dir, "Streaming_History_Audio_2023_0.json", threeStreams)
	writeExport(t, dir, "SearchQueries.json", `[{"searchTime": "2023-03-01T12:00:00Z", "searchQuery": "radiohead"}]`)

	for run := 0; run < 2; run++ {
		imp := New(s, config.SourceConfig{Dir: dir})
		_, err := imp.Run(ctx, []Category{CategoryStreaming, CategorySearch})
		require.NoError(t, err, "run %d", run)
	}

	assert.Equal(t, int64(1), storetest.Count(t, s, "artist"))
	assert.Equal(t, int64(2), storetest.Count(t, s, "track"))
	assert.Equal(t, int64(6), storetest.Count(t, s, "stream"))
	assert.Equal(t, int64(2), storetest.Count(t, s, "import_run"))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	_, err = tx.InsertReturningID(ctx, "artist", []string{"name"}, "Radiohead")
	require.Error(t, err)
	assert.Equal(t, store.ErrorClassConstraint, store.ClassifyError(err))
}

func TestImportPostgres(t *testing.T) {
	testinfra.SkipIfNoDocker(t)
	ctx := context.Background()

	pg, err := testinfra.NewPostgresContainer(ctx)
	require.NoError(t, err)
	defer testinfra.CleanupContainer(t, ctx, pg)

	runServerImport(t, storetest.Open(t, pg.DatabaseConfig()))
}

func TestImportSQLServer(t *testing.T) {
	testinfra.SkipIfNoDocker(t)
	ctx := context.Background()

	ms, err := testinfra.NewSQLServerContainer(ctx)
	require.NoError(t, err)
	defer testinfra.CleanupContainer(t, ctx, ms)

	runServerImport(t, storetest.Open(t, ms.DatabaseConfig()))
}
