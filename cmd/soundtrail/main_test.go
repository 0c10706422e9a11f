// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/soundtrail/internal/importer"
)

// runCLI executes the root command with args in an isolated directory.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{"SOUNDTRAIL_CONFIG", "SOUNDTRAIL_SOURCE_DIR", "SOUNDTRAIL_DB_DRIVER", "SOUNDTRAIL_DB_PATH", "SOUNDTRAIL_DB_DSN"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportMissingSourceFailsBeforeConnecting(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	// A server driver with no reachable host proves no connection is attempted.
	_, err := runCLI(t, "import", "all", "--source", missing,
		"--driver", "postgres", "--host", "unreachable.invalid", "--database", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, importer.ErrSourceNotFound))
}

func TestImportUnknownCategory(t *testing.T) {
	_, err := runCLI(t, "import", "everything", "--source", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestImportStreamingIntoSQLite(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "Streaming_History_Audio_2023_0.json"), []byte(`[
	  {"ts": "2023-05-01T10:00:00Z", "ms_played": 1000, "master_metadata_album_artist_name": "A",
	   "master_metadata_album_album_name": "B", "master_metadata_track_name": "C", "spotify_track_uri": "spotify:track:c"}
	]`), 0o600))
	dbPath := filepath.Join(t.TempDir(), "out.db")
	metricsFile := filepath.Join(t.TempDir(), "soundtrail.prom")

	out, err := runCLI(t, "import", "streaming", "--source", src,
		"--driver", "sqlite", "--db-path", dbPath, "--metrics-file", metricsFile, "--log-level", "disabled")
	require.NoError(t, err)
	assert.Contains(t, out, "streaming")
	assert.Contains(t, out, "Total: 1 imported, 0 skipped")

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "soundtrail_records_imported_total")
}

func TestSchemaPrint(t *testing.T) {
	out, err := runCLI(t, "schema", "--print", "--driver", "sqlserver", "--host", "db", "--database", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "IF OBJECT_ID(N'artist', N'U') IS NULL")
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "soundtrail dev"))
}

func TestOverridesOnlyIncludesChangedFlags(t *testing.T) {
	cmd := newRootCmd()
	importCmd, _, err := cmd.Find([]string{"import"})
	require.NoError(t, err)
	require.NoError(t, importCmd.ParseFlags([]string{"--driver", "sqlite", "--port", "5433", "--statement-timeout", "5s", "--source", "/exports"}))

	got := overrides(importCmd)
	assert.Equal(t, "sqlite", got["database.driver"])
	assert.Equal(t, 5433, got["database.port"])
	assert.Equal(t, 5*time.Second, got["database.statement_timeout"])
	assert.Equal(t, "/exports", got["source.dir"])
	assert.NotContains(t, got, "database.host")
	assert.NotContains(t, got, "metrics.file")
}

func TestPrintSummary(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &importer.Summary{
		RunID:     "run-1",
		SourceDir: "/exports",
		StartTime: start,
		EndTime:   start.Add(2 * time.Second),
		Categories: []*importer.Stats{
			{Category: importer.CategoryStreaming, Files: 3, Imported: 123456, Skipped: 2, StartTime: start, EndTime: start.Add(time.Second)},
			{Category: importer.CategoryLibrary, NotFound: true},
			{Category: importer.CategoryTechnical, Files: 2, Imported: 10, ByType: map[string]int64{"Login": 4, "AddedToPlaylist": 6},
				StartTime: start, EndTime: start.Add(time.Second)},
		},
	}

	var buf bytes.Buffer
	printSummary(&buf, s)
	out := buf.String()

	assert.Contains(t, out, "123,456")
	assert.Contains(t, out, "not found")
	assert.Contains(t, out, "Total: 123,466 imported, 2 skipped in 2s")
	assert.Less(t, strings.Index(out, "AddedToPlaylist"), strings.Index(out, "Login"))
}
