// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package importer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/soundtrail/internal/config"
	"github.com/tomtom215/soundtrail/internal/store/storetest"
)

func TestImportTechnical(t *testing.T) {
	imp, s, dir := newTestImporter(t)
	tech := config.DefaultTechnicalDir

	writeExport(t, dir, filepath.Join(tech, "AddedToPlaylist.json"), `[
	  {"timestamp_utc": "2023-01-01T00:00:00Z", "context_platform": "android", "context_conn_country": "SE",
	   "playlist_uri": "spotify:playlist:x", "message": "hello", "count": 2},
	  {"timestamp_utc": "2023-01-02T00:00:00Z", "playlist_uri": "spotify:playlist:y"}
	]`)
	writeExport(t, dir, filepath.Join(tech, "AddedToPlaylist_1.json"), `[
	  {"timestamp_utc": "2023-01-03T00:00:00Z", "playlist_uri": "spotify:playlist:z"},
	  {"playlist_uri": "spotify:playlist:no-time"}
	]`)
	writeExport(t, dir, filepath.Join(tech, "Login.json"), `{"context_time": 1690000000000, "context_os_name": "ios"}`)
	writeExport(t, dir, filepath.Join(tech, "notes.txt"), `not json`)

	stats, err := imp.ImportTechnical(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, int64(4), stats.Imported)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.Equal(t, map[string]int64{"AddedToPlaylist": 3, "Login": 1}, stats.ByType)

	assert.Equal(t, int64(4), storetest.Count(t, s, "event"))
	assert.Equal(t, int64(3), queryInt(t, s, `SELECT COUNT(*) FROM event WHERE record_type = 'AddedToPlaylist'`))
	assert.Equal(t, int64(1), queryInt(t, s, `SELECT COUNT(*) FROM event WHERE record_type = 'Login' AND os_name = 'ios'`))

	var payload, platform, country string
	require.NoError(t, s.DB().QueryRowContext(context.Background(),
		`SELECT payload, platform, conn_country FROM event WHERE platform IS NOT NULL`).
		Scan(&payload, &platform, &country))
	assert.Equal(t, `{"count":2,"message":"hello","playlist_uri":"spotify:playlist:x"}`, payload)
	assert.Equal(t, "android", platform)
	assert.Equal(t, "SE", country)
}

func TestImportTechnicalBadFileHaltsWithEarlierFilesKept(t *testing.T) {
	imp, s, dir := newTestImporter(t)
	tech := config.DefaultTechnicalDir

	writeExport(t, dir, filepath.Join(tech, "A.json"), `[{"timestamp_utc": "2023-01-01T00:00:00Z"}]`)
	writeExport(t, dir, filepath.Join(tech, "B.json"), `{"broken": `)

	_, err := imp.ImportTechnical(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(1), storetest.Count(t, s, "event"))
}

func TestPopEventTime(t *testing.T) {
	t.Parallel()

	fields := map[string]any{
		"timestamp_utc": "garbage",
		"context_time":  json.Number("1690000000000"),
		"other":         "kept",
	}
	at, ok := popEventTime(fields)
	require.True(t, ok)
	assert.Equal(t, time.UnixMilli(1690000000000).UTC(), at.UTC())
	assert.Equal(t, map[string]any{"other": "kept"}, fields)

	fields = map[string]any{"timestamp_utc": "2023-01-01T00:00:00Z", "context_time": "2020-01-01T00:00:00Z"}
	at, ok = popEventTime(fields)
	require.True(t, ok)
	assert.Equal(t, 2023, at.Year())
	assert.Empty(t, fields)

	_, ok = popEventTime(map[string]any{"x": 1})
	assert.False(t, ok)
}
