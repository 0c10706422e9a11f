// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tomtom215/soundtrail/internal/export"
	"github.com/tomtom215/soundtrail/internal/logging"
	"github.com/tomtom215/soundtrail/internal/metrics"
	"github.com/tomtom215/soundtrail/internal/store"
)

// recordFunc writes one record inside the file transaction. It returns
// false when the feed's policy skipped the record.
type recordFunc[T any] func(ctx context.Context, tx *store.Tx, rec *T) (bool, error)

// importFile parses path as an array of T (a single object becomes one
// record) and imports it in one transaction. A parse failure returns
// before any transaction is opened.
func importFile[T any](ctx context.Context, imp *Importer, c Category, path string, fn recordFunc[T]) (fileResult, error) {
	records, err := export.ReadRecords[T](path)
	if err != nil {
		metrics.RecordFileImport(string(c), 0, 0, 0, err)
		logging.Ctx(ctx).Error().Err(err).Str("file", filepath.Base(path)).Msg("Failed to parse file")
		return fileResult{}, err
	}
	return importRecords(ctx, imp, c, path, records, fn)
}

// importRecords imports already-parsed records of one file atomically.
// On error the transaction is rolled back, resolver entries created since
// the last commit are discarded, and a *RecordError is returned.
func importRecords[T any](ctx context.Context, imp *Importer, c Category, path string, records []T,
	fn recordFunc[T]) (fileResult, error) {
	start := time.Now()
	name := filepath.Base(path)
	log := logging.Ctx(ctx)

	tx, err := imp.store.Begin(ctx)
	if err != nil {
		imp.abort(ctx, c, nil, start, err)
		return fileResult{}, fmt.Errorf("import %s: %w", name, err)
	}

	var res fileResult
	for i := range records {
		written, err := fn(ctx, tx, &records[i])
		if err != nil {
			log.Error().
				Err(err).
				Str("file", name).
				Int("record", i).
				Str("error_class", string(store.ClassifyError(err))).
				Msg("Record failed, rolling back file")
			imp.abort(ctx, c, tx, start, err)
			return fileResult{}, &RecordError{File: path, Index: i, Err: err}
		}
		if written {
			res.Imported++
		} else {
			res.Skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		imp.abort(ctx, c, tx, start, err)
		return fileResult{}, fmt.Errorf("import %s: %w", name, err)
	}
	imp.resolver.Commit()

	metrics.RecordFileImport(string(c), time.Since(start), res.Imported, res.Skipped, nil)
	log.Info().
		Str("file", name).
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Dur("duration", time.Since(start)).
		Msg("File imported")

	return res, nil
}

// abort rolls back tx (when open), drops uncommitted resolver entries and
// records the failure.
func (imp *Importer) abort(ctx context.Context, c Category, tx *store.Tx, start time.Time, cause error) {
	if tx != nil {
		if err := tx.Rollback(); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Rollback failed")
		}
	}
	if n := imp.resolver.Discard(); n > 0 {
		logging.Ctx(ctx).Debug().Int("entries", n).Msg("Discarded uncommitted resolver entries")
	}

	metrics.RecordFileImport(string(c), time.Since(start), 0, 0, cause)
	if class := store.ClassifyError(cause); class != store.ErrorClassOther {
		metrics.RecordStorageError(string(class))
	}
}

// notFound logs and records an absent optional file.
func notFound(ctx context.Context, c Category, what string) {
	metrics.RecordFileNotFound(string(c))
	logging.Ctx(ctx).Info().Str("file", what).Msg("Not found, skipping")
}

// sourceName is the provenance value stored with each fact row.
func sourceName(path string) string {
	return filepath.Base(path)
}
