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

// Playlist files are numbered without a separator: Playlist1.json, Playlist2.json, ...
const (
	playlistBase = "Playlist"
	playlistSep  = ""
)

type playlistDoc struct {
	Playlists []playlist `json:"playlists"`
}

type playlist struct {
	Name              *string        `json:"name"`
	LastModifiedDate  *string        `json:"lastModifiedDate"`
	Description       *string        `json:"description"`
	NumberOfFollowers any            `json:"numberOfFollowers"`
	Collaborators     []any          `json:"collaborators"`
	Items             []playlistItem `json:"items"`
}

type playlistItem struct {
	Track      *playlistTrack     `json:"track"`
	Episode    *playlistEpisode   `json:"episode"`
	Audiobook  *playlistAudiobook `json:"audiobook"`
	LocalTrack *playlistLocal     `json:"localTrack"`
	AddedDate  *string            `json:"addedDate"`
}

type playlistTrack struct {
	TrackName  *string `json:"trackName"`
	ArtistName *string `json:"artistName"`
	AlbumName  *string `json:"albumName"`
	TrackURI   *string `json:"trackUri"`
}

type playlistEpisode struct {
	EpisodeName *string `json:"episodeName"`
	ShowName    *string `json:"showName"`
	EpisodeURI  *string `json:"episodeUri"`
}

type playlistAudiobook struct {
	AudiobookName *string `json:"audiobookName"`
	AudiobookURI  *string `json:"audiobookUri"`
	ChapterName   *string `json:"chapterName"`
	ChapterURI    *string `json:"chapterUri"`
}

type playlistLocal struct {
	URI *string `json:"uri"`
}

var (
	playlistColumns     = []string{"name", "last_modified", "description", "follower_count", "collaborators", "source_file"}
	playlistItemColumns = []string{
		"playlist_id", "position", "added_at", "track_id", "episode_id", "chapter_id", "local_track", "source_file",
	}
)

// ImportPlaylists imports every file of the playlist series, one
// transaction per file. Unparseable dates are stored as NULL.
func (imp *Importer) ImportPlaylists(ctx context.Context) (*Stats, error) {
	ctx = logging.ContextWithCategory(ctx, string(CategoryPlaylists))
	stats := &Stats{Category: CategoryPlaylists, StartTime: time.Now()}
	defer func() { stats.EndTime = time.Now() }()

	files := export.DiscoverSeries(imp.sourceDir, playlistBase, playlistSep)
	if len(files) == 0 {
		stats.NotFound = true
		notFound(ctx, CategoryPlaylists, playlistBase+"1.json")
		return stats, nil
	}

	for _, path := range files {
		var doc playlistDoc
		if err := export.ReadObject(path, &doc); err != nil {
			return stats, err
		}
		res, err := importRecords(ctx, imp, CategoryPlaylists, path, doc.Playlists, imp.playlist(sourceName(path)))
		if err != nil {
			return stats, err
		}
		stats.add(res)
	}
	return stats, nil
}

func (imp *Importer) playlist(source string) recordFunc[playlist] {
	return func(ctx context.Context, tx *store.Tx, rec *playlist) (bool, error) {
		name := normalize.Truncate(normalize.Text(rec.Name), store.LongNameMax)

		var collaborators sql.NullString
		if len(rec.Collaborators) > 0 {
			collaborators = sql.NullString{String: normalize.StringValue(rec.Collaborators), Valid: true}
		}

		playlistID, err := tx.InsertReturningID(ctx, "playlist", playlistColumns,
			name,
			nullTime(normalize.ParseOptionalDate(rec.LastModifiedDate)),
			nullText(rec.Description, 0),
			nullInt(normalize.OptionalInt64(rec.NumberOfFollowers)),
			collaborators,
			source,
		)
		if err != nil {
			return false, err
		}

		for pos := range rec.Items {
			if err := imp.playlistItem(ctx, tx, playlistID, pos, &rec.Items[pos], source); err != nil {
				return false, fmt.Errorf("item %d: %w", pos, err)
			}
		}
		return true, nil
	}
}

func (imp *Importer) playlistItem(ctx context.Context, tx *store.Tx, playlistID int64, pos int,
	item *playlistItem, source string) error {
	r := imp.resolver
	var (
		trackID, episodeID, chapterID sql.NullInt64
		local                         sql.NullString
		err                           error
	)

	switch {
	case item.Track != nil:
		var artist, album sql.NullInt64
		if artist, err = r.Artist(ctx, tx, normalize.Text(item.Track.ArtistName)); err != nil {
			return err
		}
		if album, err = r.Album(ctx, tx, normalize.Text(item.Track.AlbumName), artist); err != nil {
			return err
		}
		if trackID, err = r.Track(ctx, tx, normalize.Text(item.Track.TrackURI), normalize.Text(item.Track.TrackName), album); err != nil {
			return err
		}
	case item.Episode != nil:
		var show sql.NullInt64
		if show, err = r.Show(ctx, tx, normalize.Text(item.Episode.ShowName)); err != nil {
			return err
		}
		if episodeID, err = r.Episode(ctx, tx, normalize.Text(item.Episode.EpisodeURI), normalize.Text(item.Episode.EpisodeName), show); err != nil {
			return err
		}
	case item.Audiobook != nil:
		var book sql.NullInt64
		if book, err = r.Audiobook(ctx, tx, normalize.Text(item.Audiobook.AudiobookURI), normalize.Text(item.Audiobook.AudiobookName)); err != nil {
			return err
		}
		if chapterID, err = r.Chapter(ctx, tx, normalize.Text(item.Audiobook.ChapterURI), normalize.Text(item.Audiobook.ChapterName), book); err != nil {
			return err
		}
	case item.LocalTrack != nil:
		local = nullText(item.LocalTrack.URI, store.LongNameMax)
	}

	return tx.Insert(ctx, "playlist_item", playlistItemColumns,
		playlistID,
		int64(pos),
		nullTime(normalize.ParseOptionalDate(item.AddedDate)),
		trackID, episodeID, chapterID,
		local,
		source,
	)
}
