// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/soundtrail/internal/config"
	"github.com/tomtom215/soundtrail/internal/store"
	"github.com/tomtom215/soundtrail/internal/store/storetest"
)

// newTestImporter returns an importer over an empty export directory and
// a fresh SQLite store.
func newTestImporter(t *testing.T) (*Importer, *store.Store, string) {
	t.Helper()
	s := storetest.NewSQLite(t)
	dir := t.TempDir()
	return New(s, config.SourceConfig{Dir: dir}), s, dir
}

func writeExport(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func queryInt(t *testing.T, s *store.Store, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB().QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	all, err := ParseCategory("all")
	require.NoError(t, err)
	assert.Equal(t, Categories(), all)
	assert.Equal(t, CategoryStreaming, all[0])

	one, err := ParseCategory("search")
	require.NoError(t, err)
	assert.Equal(t, []Category{CategorySearch}, one)

	_, err = ParseCategory("podcasts")
	assert.Error(t, err)
}

func TestCheckSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.NoError(t, CheckSource(dir))

	err := CheckSource(filepath.Join(dir, "missing"))
	assert.True(t, errors.Is(err, ErrSourceNotFound))

	file := filepath.Join(dir, "file.json")
	require.NoError(t, os.WriteFile(file, []byte("[]"), 0o600))
	assert.True(t, errors.Is(CheckSource(file), ErrSourceNotFound))

	assert.True(t, errors.Is(CheckSource(""), ErrSourceNotFound))
}

func TestNewTechnicalDir(t *testing.T) {
	t.Parallel()

	imp := New(nil, config.SourceConfig{Dir: "/exports/me"})
	assert.Equal(t, filepath.Join("/exports/me", config.DefaultTechnicalDir), imp.technicalDir)

	imp = New(nil, config.SourceConfig{Dir: "/exports/me", TechnicalDir: "/logs"})
	assert.Equal(t, "/logs", imp.technicalDir)
}

func TestMissingFilesAreNotFound(t *testing.T) {
	imp, s, _ := newTestImporter(t)
	ctx := context.Background()

	for _, c := range Categories() {
		stats, err := imp.ImportCategory(ctx, c)
		require.NoError(t, err, c)
		assert.True(t, stats.NotFound, c)
		assert.Zero(t, stats.Files, c)
		assert.Zero(t, stats.Imported, c)
	}
	assert.Zero(t, storetest.Count(t, s, "stream"))
}

func TestUnknownCategory(t *testing.T) {
	imp, _, _ := newTestImporter(t)
	_, err := imp.ImportCategory(context.Background(), Category("nope"))
	assert.Error(t, err)
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := &RecordError{File: "a.json", Index: 3, Err: cause}
	assert.Equal(t, "a.json: record 3: boom", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestStatsAndSummary(t *testing.T) {
	t.Parallel()

	a := &Stats{Category: CategoryStreaming}
	a.add(fileResult{Imported: 3, Skipped: 1})
	a.add(fileResult{Imported: 2})
	b := &Stats{Category: CategorySearch}
	b.addRecords(fileResult{Imported: 1, Skipped: 4})

	assert.Equal(t, 2, a.Files)
	assert.Equal(t, 0, b.Files)

	sum := &Summary{Categories: []*Stats{a, b}}
	imported, skipped := sum.Totals()
	assert.Equal(t, int64(6), imported)
	assert.Equal(t, int64(5), skipped)
}
