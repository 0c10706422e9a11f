// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package importer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/soundtrail/internal/export"
	"github.com/tomtom215/soundtrail/internal/logging"
	"github.com/tomtom215/soundtrail/internal/normalize"
	"github.com/tomtom215/soundtrail/internal/store"
)

// Content types of a stream. A stream references at most one of track,
// episode or chapter, chosen in that order of precedence.
const (
	ContentMusic     = "music"
	ContentPodcast   = "podcast"
	ContentAudiobook = "audiobook"
	ContentUnknown   = "unknown"
)

// Streaming history file patterns, imported in this order.
const (
	extendedPattern       = "Streaming_History_Audio_*.json"
	accountMusicPattern   = "StreamingHistory_music_*.json"
	accountPodcastPattern = "StreamingHistory_podcast_*.json"
	accountLegacyPattern  = "StreamingHistory[0-9]*.json"
)

// extendedStream is one record of the extended streaming history.
type extendedStream struct {
	TS               any     `json:"ts"`
	Username         *string `json:"username"`
	Platform         *string `json:"platform"`
	MsPlayed         any     `json:"ms_played"`
	ConnCountry      *string `json:"conn_country"`
	IPAddr           *string `json:"ip_addr"`
	IPAddrDecrypted  *string `json:"ip_addr_decrypted"`
	UserAgent        *string `json:"user_agent_decrypted"`
	TrackName        *string `json:"master_metadata_track_name"`
	ArtistName       *string `json:"master_metadata_album_artist_name"`
	AlbumName        *string `json:"master_metadata_album_album_name"`
	TrackURI         *string `json:"spotify_track_uri"`
	EpisodeName      *string `json:"episode_name"`
	ShowName         *string `json:"episode_show_name"`
	EpisodeURI       *string `json:"spotify_episode_uri"`
	AudiobookTitle   *string `json:"audiobook_title"`
	AudiobookURI     *string `json:"audiobook_uri"`
	ChapterURI       *string `json:"audiobook_chapter_uri"`
	ChapterTitle     *string `json:"audiobook_chapter_title"`
	ReasonStart      *string `json:"reason_start"`
	ReasonEnd        *string `json:"reason_end"`
	Shuffle          *bool   `json:"shuffle"`
	Skipped          *bool   `json:"skipped"`
	Offline          *bool   `json:"offline"`
	OfflineTimestamp any     `json:"offline_timestamp"`
	IncognitoMode    *bool   `json:"incognito_mode"`
}

// accountStream is one record of the account-data streaming history,
// which has names but no URIs.
type accountStream struct {
	EndTime     any     `json:"endTime"`
	ArtistName  *string `json:"artistName"`
	TrackName   *string `json:"trackName"`
	PodcastName *string `json:"podcastName"`
	EpisodeName *string `json:"episodeName"`
	MsPlayed    any     `json:"msPlayed"`
}

// streamRow is one row of the stream fact table.
type streamRow struct {
	PlayedAt    time.Time
	MsPlayed    int64
	ContentType string

	TrackID     sql.NullInt64
	EpisodeID   sql.NullInt64
	ChapterID   sql.NullInt64
	ArtistID    sql.NullInt64
	ShowID      sql.NullInt64
	AudiobookID sql.NullInt64

	TrackName      sql.NullString
	ArtistName     sql.NullString
	AlbumName      sql.NullString
	EpisodeName    sql.NullString
	ShowName       sql.NullString
	AudiobookTitle sql.NullString
	ChapterTitle   sql.NullString

	Username    sql.NullString
	Platform    sql.NullString
	ConnCountry sql.NullString
	IPAddr      sql.NullString
	UserAgent   sql.NullString
	ReasonStart sql.NullString
	ReasonEnd   sql.NullString

	Shuffle   sql.NullBool
	Skipped   sql.NullBool
	Offline   sql.NullBool
	OfflineAt sql.NullTime
	Incognito sql.NullBool

	SourceFile string
}

var streamColumns = []string{
	"played_at", "ms_played", "content_type",
	"track_id", "episode_id", "chapter_id", "artist_id", "show_id", "audiobook_id",
	"track_name", "artist_name", "album_name", "episode_name", "show_name", "audiobook_title", "chapter_title",
	"username", "platform", "conn_country", "ip_addr", "user_agent", "reason_start", "reason_end",
	"shuffle", "skipped", "offline", "offline_at", "incognito",
	"source_file",
}

func (r *streamRow) values() []any {
	return []any{
		r.PlayedAt, r.MsPlayed, r.ContentType,
		r.TrackID, r.EpisodeID, r.ChapterID, r.ArtistID, r.ShowID, r.AudiobookID,
		r.TrackName, r.ArtistName, r.AlbumName, r.EpisodeName, r.ShowName, r.AudiobookTitle, r.ChapterTitle,
		r.Username, r.Platform, r.ConnCountry, r.IPAddr, r.UserAgent, r.ReasonStart, r.ReasonEnd,
		r.Shuffle, r.Skipped, r.Offline, r.OfflineAt, r.Incognito,
		r.SourceFile,
	}
}

// ImportStreaming imports the extended streaming history followed by the
// account-data streaming history. An unparseable play timestamp aborts
// the file.
func (imp *Importer) ImportStreaming(ctx context.Context) (*Stats, error) {
	ctx = logging.ContextWithCategory(ctx, string(CategoryStreaming))
	stats := &Stats{Category: CategoryStreaming, StartTime: time.Now()}
	defer func() { stats.EndTime = time.Now() }()

	extended, err := export.Glob(imp.sourceDir, extendedPattern)
	if err != nil {
		return stats, err
	}
	for _, path := range extended {
		res, err := importFile(ctx, imp, CategoryStreaming, path, imp.extendedStream(sourceName(path)))
		if err != nil {
			return stats, err
		}
		stats.add(res)
	}

	var account []string
	for _, pattern := range []string{accountLegacyPattern, accountMusicPattern, accountPodcastPattern} {
		files, err := export.Glob(imp.sourceDir, pattern)
		if err != nil {
			return stats, err
		}
		account = append(account, files...)
	}
	for _, path := range account {
		res, err := importFile(ctx, imp, CategoryStreaming, path, imp.accountStream(sourceName(path)))
		if err != nil {
			return stats, err
		}
		stats.add(res)
	}

	if len(extended)+len(account) == 0 {
		stats.NotFound = true
		notFound(ctx, CategoryStreaming, extendedPattern)
	}
	return stats, nil
}

// streamContentType picks the content type by URI precedence.
func streamContentType(rec *extendedStream) string {
	switch {
	case normalize.Text(rec.TrackURI) != "":
		return ContentMusic
	case normalize.Text(rec.EpisodeURI) != "":
		return ContentPodcast
	case normalize.Text(rec.ChapterURI) != "" || normalize.Text(rec.AudiobookURI) != "":
		return ContentAudiobook
	default:
		return ContentUnknown
	}
}

func (imp *Importer) extendedStream(source string) recordFunc[extendedStream] {
	return func(ctx context.Context, tx *store.Tx, rec *extendedStream) (bool, error) {
		playedAt, err := normalize.ParseTimestampValue(rec.TS)
		if err != nil {
			return false, fmt.Errorf("ts: %w", err)
		}
		msPlayed, err := normalize.Int64Value(rec.MsPlayed)
		if err != nil {
			return false, fmt.Errorf("ms_played: %w", err)
		}

		ip := rec.IPAddr
		if normalize.Text(ip) == "" {
			ip = rec.IPAddrDecrypted
		}

		row := streamRow{
			PlayedAt:       playedAt,
			MsPlayed:       msPlayed,
			ContentType:    streamContentType(rec),
			TrackName:      nullText(rec.TrackName, store.LongNameMax),
			ArtistName:     nullText(rec.ArtistName, store.NameMax),
			AlbumName:      nullText(rec.AlbumName, store.LongNameMax),
			EpisodeName:    nullText(rec.EpisodeName, store.LongNameMax),
			ShowName:       nullText(rec.ShowName, store.LongNameMax),
			AudiobookTitle: nullText(rec.AudiobookTitle, store.LongNameMax),
			ChapterTitle:   nullText(rec.ChapterTitle, store.LongNameMax),
			Username:       nullText(rec.Username, store.NameMax),
			Platform:       nullText(rec.Platform, store.PlatformMax),
			ConnCountry:    nullText(rec.ConnCountry, store.ShortMax),
			IPAddr:         nullText(ip, store.ShortMax),
			UserAgent:      nullText(rec.UserAgent, store.TextMax),
			ReasonStart:    nullText(rec.ReasonStart, store.ShortMax),
			ReasonEnd:      nullText(rec.ReasonEnd, store.ShortMax),
			Shuffle:        nullBool(rec.Shuffle),
			Skipped:        nullBool(rec.Skipped),
			Offline:        nullBool(rec.Offline),
			OfflineAt:      offlineTime(rec.OfflineTimestamp),
			Incognito:      nullBool(rec.IncognitoMode),
			SourceFile:     source,
		}

		if err := imp.resolveStream(ctx, tx, rec, &row); err != nil {
			return false, err
		}

		if err := tx.Insert(ctx, "stream", streamColumns, row.values()...); err != nil {
			return false, err
		}
		return true, nil
	}
}

// resolveStream fills the dimension ids for the record's content slot.
func (imp *Importer) resolveStream(ctx context.Context, tx *store.Tx, rec *extendedStream, row *streamRow) error {
	r := imp.resolver
	var err error

	switch row.ContentType {
	case ContentMusic:
		var album sql.NullInt64
		if row.ArtistID, err = r.Artist(ctx, tx, normalize.Text(rec.ArtistName)); err != nil {
			return err
		}
		if album, err = r.Album(ctx, tx, normalize.Text(rec.AlbumName), row.ArtistID); err != nil {
			return err
		}
		row.TrackID, err = r.Track(ctx, tx, normalize.Text(rec.TrackURI), normalize.Text(rec.TrackName), album)
		return err

	case ContentPodcast:
		if row.ShowID, err = r.Show(ctx, tx, normalize.Text(rec.ShowName)); err != nil {
			return err
		}
		row.EpisodeID, err = r.Episode(ctx, tx, normalize.Text(rec.EpisodeURI), normalize.Text(rec.EpisodeName), row.ShowID)
		return err

	case ContentAudiobook:
		if row.AudiobookID, err = r.Audiobook(ctx, tx, normalize.Text(rec.AudiobookURI), normalize.Text(rec.AudiobookTitle)); err != nil {
			return err
		}
		row.ChapterID, err = r.Chapter(ctx, tx, normalize.Text(rec.ChapterURI), normalize.Text(rec.ChapterTitle), row.AudiobookID)
		return err
	}
	return nil
}

// offlineTime converts offline_timestamp, which appears both in epoch
// seconds and epoch milliseconds. Zero and unparseable values are NULL.
func offlineTime(v any) sql.NullTime {
	n := normalize.OptionalInt64(v)
	if n == nil || *n <= 0 {
		return sql.NullTime{}
	}
	const secondsCutoff = 100_000_000_000 // year 5138 in seconds, 1973 in milliseconds
	if *n < secondsCutoff {
		return sql.NullTime{Time: time.Unix(*n, 0).UTC(), Valid: true}
	}
	return sql.NullTime{Time: normalize.FromEpochMillis(*n), Valid: true}
}

func accountContentType(rec *accountStream) string {
	switch {
	case normalize.Text(rec.ArtistName) != "" || normalize.Text(rec.TrackName) != "":
		return ContentMusic
	case normalize.Text(rec.PodcastName) != "" || normalize.Text(rec.EpisodeName) != "":
		return ContentPodcast
	default:
		return ContentUnknown
	}
}

func (imp *Importer) accountStream(source string) recordFunc[accountStream] {
	return func(ctx context.Context, tx *store.Tx, rec *accountStream) (bool, error) {
		playedAt, err := normalize.ParseTimestampValue(rec.EndTime)
		if err != nil {
			return false, fmt.Errorf("endTime: %w", err)
		}
		msPlayed, err := normalize.Int64Value(rec.MsPlayed)
		if err != nil {
			return false, fmt.Errorf("msPlayed: %w", err)
		}

		row := streamRow{
			PlayedAt:    playedAt,
			MsPlayed:    msPlayed,
			ContentType: accountContentType(rec),
			TrackName:   nullText(rec.TrackName, store.LongNameMax),
			ArtistName:  nullText(rec.ArtistName, store.NameMax),
			EpisodeName: nullText(rec.EpisodeName, store.LongNameMax),
			ShowName:    nullText(rec.PodcastName, store.LongNameMax),
			SourceFile:  source,
		}

		// Without URIs only the name-keyed dimensions can be resolved.
		switch row.ContentType {
		case ContentMusic:
			row.ArtistID, err = imp.resolver.Artist(ctx, tx, normalize.Text(rec.ArtistName))
		case ContentPodcast:
			row.ShowID, err = imp.resolver.Show(ctx, tx, normalize.Text(rec.PodcastName))
		}
		if err != nil {
			return false, err
		}

		if err := tx.Insert(ctx, "stream", streamColumns, row.values()...); err != nil {
			return false, err
		}
		return true, nil
	}
}
