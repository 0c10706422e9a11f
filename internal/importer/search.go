// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package importer

import (
	"context"
	"database/sql"
	"time"

	"github.com/tomtom215/soundtrail/internal/export"
	"github.com/tomtom215/soundtrail/internal/logging"
	"github.com/tomtom215/soundtrail/internal/normalize"
	"github.com/tomtom215/soundtrail/internal/store"
)

const searchBase = "SearchQueries"

type searchQuery struct {
	Platform        *string `json:"platform"`
	SearchTime      any     `json:"searchTime"`
	SearchQuery     *string `json:"searchQuery"`
	InteractionURIs []any   `json:"searchInteractionURIs"`
}

var searchColumns = []string{"searched_at", "platform", "query", "interaction_uris", "source_file"}

// ImportSearch imports search queries. Records without a parseable
// searchTime are skipped.
func (imp *Importer) ImportSearch(ctx context.Context) (*Stats, error) {
	ctx = logging.ContextWithCategory(ctx, string(CategorySearch))
	stats := &Stats{Category: CategorySearch, StartTime: time.Now()}
	defer func() { stats.EndTime = time.Now() }()

	files := export.DiscoverSeries(imp.sourceDir, searchBase, "_")
	if len(files) == 0 {
		stats.NotFound = true
		notFound(ctx, CategorySearch, searchBase+".json")
		return stats, nil
	}

	for _, path := range files {
		res, err := importFile(ctx, imp, CategorySearch, path, searchQueryRecord(sourceName(path)))
		if err != nil {
			return stats, err
		}
		stats.add(res)
	}
	return stats, nil
}

func searchQueryRecord(source string) recordFunc[searchQuery] {
	return func(ctx context.Context, tx *store.Tx, rec *searchQuery) (bool, error) {
		searchedAt, err := normalize.ParseTimestampValue(rec.SearchTime)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("file", source).Msg("Skipping search query without timestamp")
			return false, nil
		}

		var uris sql.NullString
		if len(rec.InteractionURIs) > 0 {
			uris = sql.NullString{String: normalize.StringValue(rec.InteractionURIs), Valid: true}
		}

		err = tx.Insert(ctx, "search_query", searchColumns,
			searchedAt,
			nullText(rec.Platform, store.PlatformMax),
			nullText(rec.SearchQuery, store.TextMax),
			uris,
			source,
		)
		return err == nil, err
	}
}
