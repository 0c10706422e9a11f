// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package resolver

import "github.com/tomtom215/soundtrail/internal/store"

// Kind identifies one dimension table.
type Kind int

const (
	Artist Kind = iota
	Album
	Track
	PodcastShow
	PodcastEpisode
	Audiobook
	AudiobookChapter

	numKinds
)

// kindSpec describes how a kind maps onto its table.
type kindSpec struct {
	name   string
	table  string
	keyCol string
	keyMax int

	// parentCol is empty for root kinds.
	parentCol string
	// parentInKey makes the parent part of the natural key (Album only).
	parentInKey bool

	labelCol string
	labelMax int
}

var kinds = [numKinds]kindSpec{
	Artist: {name: "artist", table: "artist", keyCol: "name", keyMax: store.NameMax},
	Album: {
		name: "album", table: "album", keyCol: "name", keyMax: store.LongNameMax,
		parentCol: "artist_id", parentInKey: true,
	},
	Track: {
		name: "track", table: "track", keyCol: "uri", keyMax: store.URIMax,
		parentCol: "album_id", labelCol: "name", labelMax: store.LongNameMax,
	},
	PodcastShow: {name: "podcast_show", table: "podcast_show", keyCol: "name", keyMax: store.LongNameMax},
	PodcastEpisode: {
		name: "podcast_episode", table: "podcast_episode", keyCol: "uri", keyMax: store.URIMax,
		parentCol: "show_id", labelCol: "name", labelMax: store.LongNameMax,
	},
	Audiobook: {
		name: "audiobook", table: "audiobook", keyCol: "uri", keyMax: store.URIMax,
		labelCol: "title", labelMax: store.LongNameMax,
	},
	AudiobookChapter: {
		name: "audiobook_chapter", table: "audiobook_chapter", keyCol: "uri", keyMax: store.URIMax,
		parentCol: "audiobook_id", labelCol: "title", labelMax: store.LongNameMax,
	},
}

// String returns the kind's table-style name.
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kinds[k].name
}

// Kinds returns every dimension kind in dependency order.
func Kinds() []Kind {
	return []Kind{Artist, Album, Track, PodcastShow, PodcastEpisode, Audiobook, AudiobookChapter}
}
