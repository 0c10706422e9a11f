// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package resolver

import (
	"context"
	"database/sql"

	"github.com/tomtom215/soundtrail/internal/store"
)

var noParent = sql.NullInt64{}

// Artist resolves an artist by name.
func (r *Resolver) Artist(ctx context.Context, q store.Querier, name string) (sql.NullInt64, error) {
	return r.Resolve(ctx, q, Artist, name, noParent, "")
}

// Album resolves an album by name under artistID. The same name under two
// artists yields two albums.
func (r *Resolver) Album(ctx context.Context, q store.Querier, name string, artistID sql.NullInt64) (sql.NullInt64, error) {
	return r.Resolve(ctx, q, Album, name, artistID, "")
}

// Track resolves a track by URI.
func (r *Resolver) Track(ctx context.Context, q store.Querier, uri, name string, albumID sql.NullInt64) (sql.NullInt64, error) {
	return r.Resolve(ctx, q, Track, uri, albumID, name)
}

// Show resolves a podcast show by name.
func (r *Resolver) Show(ctx context.Context, q store.Querier, name string) (sql.NullInt64, error) {
	return r.Resolve(ctx, q, PodcastShow, name, noParent, "")
}

// Episode resolves a podcast episode by URI.
func (r *Resolver) Episode(ctx context.Context, q store.Querier, uri, name string, showID sql.NullInt64) (sql.NullInt64, error) {
	return r.Resolve(ctx, q, PodcastEpisode, uri, showID, name)
}

// Audiobook resolves an audiobook by URI.
func (r *Resolver) Audiobook(ctx context.Context, q store.Querier, uri, title string) (sql.NullInt64, error) {
	return r.Resolve(ctx, q, Audiobook, uri, noParent, title)
}

// Chapter resolves an audiobook chapter by URI.
func (r *Resolver) Chapter(ctx context.Context, q store.Querier, uri, title string, audiobookID sql.NullInt64) (sql.NullInt64, error) {
	return r.Resolve(ctx, q, AudiobookChapter, uri, audiobookID, title)
}
