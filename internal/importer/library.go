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

const libraryFile = "YourLibrary.json"

// Library item types.
const (
	ItemTrack        = "track"
	ItemAlbum        = "album"
	ItemArtist       = "artist"
	ItemShow         = "show"
	ItemEpisode      = "episode"
	ItemBannedTrack  = "banned_track"
	ItemBannedArtist = "banned_artist"
)

type libraryDoc struct {
	Tracks        []libraryTrack   `json:"tracks"`
	Albums        []libraryAlbum   `json:"albums"`
	Artists       []libraryArtist  `json:"artists"`
	Shows         []libraryShow    `json:"shows"`
	Episodes      []libraryEpisode `json:"episodes"`
	BannedTracks  []libraryTrack   `json:"bannedTracks"`
	BannedArtists []libraryArtist  `json:"bannedArtists"`
}

type libraryTrack struct {
	Artist *string `json:"artist"`
	Album  *string `json:"album"`
	Track  *string `json:"track"`
	URI    *string `json:"uri"`
}

type libraryAlbum struct {
	Artist *string `json:"artist"`
	Album  *string `json:"album"`
	URI    *string `json:"uri"`
}

type libraryArtist struct {
	Name *string `json:"name"`
	URI  *string `json:"uri"`
}

type libraryShow struct {
	Name      *string `json:"name"`
	Publisher *string `json:"publisher"`
	URI       *string `json:"uri"`
}

type libraryEpisode struct {
	Name *string `json:"name"`
	Show *string `json:"show"`
	URI  *string `json:"uri"`
}

type libraryRow struct {
	ItemType  string
	ArtistID  sql.NullInt64
	AlbumID   sql.NullInt64
	TrackID   sql.NullInt64
	ShowID    sql.NullInt64
	EpisodeID sql.NullInt64
	URI       sql.NullString
	Name      sql.NullString
}

var libraryColumns = []string{
	"item_type", "artist_id", "album_id", "track_id", "show_id", "episode_id", "uri", "name", "source_file",
}

func insertLibraryItem(ctx context.Context, tx *store.Tx, row *libraryRow, source string) error {
	return tx.Insert(ctx, "library_item", libraryColumns,
		row.ItemType, row.ArtistID, row.AlbumID, row.TrackID, row.ShowID, row.EpisodeID, row.URI, row.Name, source)
}

// ImportLibrary imports the saved library. Each section is imported in its
// own transaction.
func (imp *Importer) ImportLibrary(ctx context.Context) (*Stats, error) {
	ctx = logging.ContextWithCategory(ctx, string(CategoryLibrary))
	stats := &Stats{Category: CategoryLibrary, StartTime: time.Now()}
	defer func() { stats.EndTime = time.Now() }()

	path, err := export.Find(imp.sourceDir, libraryFile)
	if err != nil {
		stats.NotFound = true
		notFound(ctx, CategoryLibrary, libraryFile)
		return stats, nil
	}

	var doc libraryDoc
	if err := export.ReadObject(path, &doc); err != nil {
		return stats, err
	}
	source := sourceName(path)

	if err := librarySection(ctx, imp, stats, path, "tracks", doc.Tracks, imp.libraryTrack(ItemTrack, source)); err != nil {
		return stats, err
	}
	if err := librarySection(ctx, imp, stats, path, "albums", doc.Albums, imp.libraryAlbum(source)); err != nil {
		return stats, err
	}
	if err := librarySection(ctx, imp, stats, path, "artists", doc.Artists, imp.libraryArtist(ItemArtist, source)); err != nil {
		return stats, err
	}
	if err := librarySection(ctx, imp, stats, path, "shows", doc.Shows, imp.libraryShow(source)); err != nil {
		return stats, err
	}
	if err := librarySection(ctx, imp, stats, path, "episodes", doc.Episodes, imp.libraryEpisode(source)); err != nil {
		return stats, err
	}
	if err := librarySection(ctx, imp, stats, path, "bannedTracks", doc.BannedTracks, imp.libraryTrack(ItemBannedTrack, source)); err != nil {
		return stats, err
	}
	if err := librarySection(ctx, imp, stats, path, "bannedArtists", doc.BannedArtists, imp.libraryArtist(ItemBannedArtist, source)); err != nil {
		return stats, err
	}

	stats.Files++
	return stats, nil
}

func librarySection[T any](ctx context.Context, imp *Importer, stats *Stats, path, section string,
	records []T, fn recordFunc[T]) error {
	if len(records) == 0 {
		return nil
	}
	res, err := importRecords(ctx, imp, CategoryLibrary, path, records, fn)
	if err != nil {
		return fmt.Errorf("library section %s: %w", section, err)
	}
	stats.addRecords(res)
	return nil
}

func (imp *Importer) libraryTrack(itemType, source string) recordFunc[libraryTrack] {
	return func(ctx context.Context, tx *store.Tx, rec *libraryTrack) (bool, error) {
		row := libraryRow{
			ItemType: itemType,
			URI:      nullText(rec.URI, store.URIMax),
			Name:     nullText(rec.Track, store.LongNameMax),
		}

		var err error
		if row.ArtistID, err = imp.resolver.Artist(ctx, tx, normalize.Text(rec.Artist)); err != nil {
			return false, err
		}
		if row.AlbumID, err = imp.resolver.Album(ctx, tx, normalize.Text(rec.Album), row.ArtistID); err != nil {
			return false, err
		}
		if row.TrackID, err = imp.resolver.Track(ctx, tx, normalize.Text(rec.URI), normalize.Text(rec.Track), row.AlbumID); err != nil {
			return false, err
		}

		return true, insertLibraryItem(ctx, tx, &row, source)
	}
}

func (imp *Importer) libraryAlbum(source string) recordFunc[libraryAlbum] {
	return func(ctx context.Context, tx *store.Tx, rec *libraryAlbum) (bool, error) {
		row := libraryRow{
			ItemType: ItemAlbum,
			URI:      nullText(rec.URI, store.URIMax),
			Name:     nullText(rec.Album, store.LongNameMax),
		}

		var err error
		if row.ArtistID, err = imp.resolver.Artist(ctx, tx, normalize.Text(rec.Artist)); err != nil {
			return false, err
		}
		if row.AlbumID, err = imp.resolver.Album(ctx, tx, normalize.Text(rec.Album), row.ArtistID); err != nil {
			return false, err
		}

		return true, insertLibraryItem(ctx, tx, &row, source)
	}
}

func (imp *Importer) libraryArtist(itemType, source string) recordFunc[libraryArtist] {
	return func(ctx context.Context, tx *store.Tx, rec *libraryArtist) (bool, error) {
		row := libraryRow{
			ItemType: itemType,
			URI:      nullText(rec.URI, store.URIMax),
			Name:     nullText(rec.Name, store.NameMax),
		}

		var err error
		if row.ArtistID, err = imp.resolver.Artist(ctx, tx, normalize.Text(rec.Name)); err != nil {
			return false, err
		}

		return true, insertLibraryItem(ctx, tx, &row, source)
	}
}

func (imp *Importer) libraryShow(source string) recordFunc[libraryShow] {
	return func(ctx context.Context, tx *store.Tx, rec *libraryShow) (bool, error) {
		row := libraryRow{
			ItemType: ItemShow,
			URI:      nullText(rec.URI, store.URIMax),
			Name:     nullText(rec.Name, store.LongNameMax),
		}

		var err error
		if row.ShowID, err = imp.resolver.Show(ctx, tx, normalize.Text(rec.Name)); err != nil {
			return false, err
		}

		return true, insertLibraryItem(ctx, tx, &row, source)
	}
}

func (imp *Importer) libraryEpisode(source string) recordFunc[libraryEpisode] {
	return func(ctx context.Context, tx *store.Tx, rec *libraryEpisode) (bool, error) {
		row := libraryRow{
			ItemType: ItemEpisode,
			URI:      nullText(rec.URI, store.URIMax),
			Name:     nullText(rec.Name, store.LongNameMax),
		}

		var err error
		if row.ShowID, err = imp.resolver.Show(ctx, tx, normalize.Text(rec.Show)); err != nil {
			return false, err
		}
		if row.EpisodeID, err = imp.resolver.Episode(ctx, tx, normalize.Text(rec.URI), normalize.Text(rec.Name), row.ShowID); err != nil {
			return false, err
		}

		return true, insertLibraryItem(ctx, tx, &row, source)
	}
}
