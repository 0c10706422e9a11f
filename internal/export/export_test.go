// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

type play struct {
	TS       string `json:"ts"`
	MsPlayed int64  `json:"ms_played"`
}

func TestReadRecordsArray(t *testing.T) {
	p := writeFile(t, t.TempDir(), "Streaming_History_Audio_2023.json",
		`[{"ts":"2023-05-01T10:00:00Z","ms_played":1000},{"ts":"2023-05-01T10:05:00Z","ms_played":2000}]`)

	records, err := ReadRecords[play](p)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2000), records[1].MsPlayed)
}

func TestReadRecordsSingleObject(t *testing.T) {
	p := writeFile(t, t.TempDir(), "one.json", "\xEF\xBB\xBF  {\"ts\":\"x\",\"ms_played\":5}")

	records, err := ReadRecords[play](p)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(5), records[0].MsPlayed)
}

func TestReadRecordsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadRecords[play](filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ReadRecords[play](writeFile(t, dir, "empty.json", "   \n"))
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = ReadRecords[play](writeFile(t, dir, "bad.json", `[{"ts":`))
	assert.Error(t, err)

	_, err = ReadRecords[play](writeFile(t, dir, "scalar.json", `42`))
	assert.Error(t, err)
}

func TestReadGenericKeepsNumbers(t *testing.T) {
	p := writeFile(t, t.TempDir(), "Events.json",
		`[{"timestamp_utc":1690000000000,"message":"hi"}]`)

	records, err := ReadGeneric(p)
	require.NoError(t, err)
	require.Len(t, records, 1)

	n, ok := records[0]["timestamp_utc"].(json.Number)
	require.True(t, ok)
	assert.Equal(t, "1690000000000", n.String())
}

func TestReadObject(t *testing.T) {
	dir := t.TempDir()
	var v struct {
		Tracks []struct {
			URI string `json:"uri"`
		} `json:"tracks"`
	}

	require.NoError(t, ReadObject(writeFile(t, dir, "YourLibrary.json", `{"tracks":[{"uri":"spotify:track:1"}]}`), &v))
	require.Len(t, v.Tracks, 1)

	assert.Error(t, ReadObject(writeFile(t, dir, "arr.json", `[]`), &v))
}

func TestDiscoverSeries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Playlist1.json", "{}")
	writeFile(t, dir, "Playlist2.json", "{}")
	writeFile(t, dir, "Playlist4.json", "{}") // after the gap, never reached

	files := DiscoverSeries(dir, "Playlist", "")
	assert.Equal(t, []string{
		filepath.Join(dir, "Playlist1.json"),
		filepath.Join(dir, "Playlist2.json"),
	}, files)

	writeFile(t, dir, "SearchQueries.json", "[]")
	writeFile(t, dir, "SearchQueries_1.json", "[]")
	assert.Equal(t, []string{
		filepath.Join(dir, "SearchQueries.json"),
		filepath.Join(dir, "SearchQueries_1.json"),
	}, DiscoverSeries(dir, "SearchQueries", "_"))

	assert.Empty(t, DiscoverSeries(dir, "Nothing", "_"))
}

func TestGlobSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "StreamingHistory_music_1.json", "[]")
	writeFile(t, dir, "StreamingHistory_music_0.json", "[]")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "StreamingHistory_music_dir.json"), 0o750))

	files, err := Glob(dir, "StreamingHistory_music_*.json")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "StreamingHistory_music_0.json"),
		filepath.Join(dir, "StreamingHistory_music_1.json"),
	}, files)
}

func TestFindAndIsDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Userdata.json", "{}")

	p, err := Find(dir, "Userdata.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Userdata.json"), p)

	_, err = Find(dir, "Follow.json")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(p))
	assert.False(t, IsDir(filepath.Join(dir, "nope")))
}

func TestRecordTypeName(t *testing.T) {
	tests := map[string]string{
		"AddedToPlaylist.json":              "AddedToPlaylist",
		"AddedToPlaylist_1.json":            "AddedToPlaylist",
		"dir/AddedToPlaylist_12.json":       "AddedToPlaylist",
		"Ad_Impression_v2.json":             "Ad_Impression_v2",
		"Streaming_History_Audio_2023.json": "Streaming_History_Audio",
	}
	for in, want := range tests {
		assert.Equal(t, want, RecordTypeName(in), in)
	}
}

func TestGroupByRecordType(t *testing.T) {
	types, groups := GroupByRecordType([]string{"A.json", "A_1.json", "B.json", "A_2.json"})
	assert.Equal(t, []string{"A", "B"}, types)
	assert.Equal(t, []string{"A.json", "A_1.json", "A_2.json"}, groups["A"])
	assert.Equal(t, []string{"B.json"}, groups["B"])
}
