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

	"github.com/goccy/go-json"

	"github.com/tomtom215/soundtrail/internal/export"
	"github.com/tomtom215/soundtrail/internal/logging"
	"github.com/tomtom215/soundtrail/internal/metrics"
	"github.com/tomtom215/soundtrail/internal/normalize"
	"github.com/tomtom215/soundtrail/internal/store"
)

// Time keys of technical log records, in order of preference.
var eventTimeKeys = []string{"timestamp_utc", "context_time"}

// eventContext maps well-known context keys to their event columns.
var eventContext = []struct {
	key    string
	column string
	max    int
}{
	{"context_conn_country", "conn_country", store.ShortMax},
	{"context_ip_addr_decrypted", "ip_addr", store.ShortMax},
	{"context_user_agent_decrypted", "user_agent", store.TextMax},
	{"context_platform", "platform", store.PlatformMax},
	{"context_application_version", "app_version", store.ShortMax},
	{"context_device_model", "device_model", store.NameMax},
	{"context_os_name", "os_name", store.ShortMax},
}

var eventColumns = func() []string {
	cols := []string{"record_type", "occurred_at"}
	for _, c := range eventContext {
		cols = append(cols, c.column)
	}
	return append(cols, "payload", "source_file")
}()

// ImportTechnical imports every JSON file of the technical log directory
// into the event table. Files sharing a record type are imported in name
// order and their counts are summed per type.
func (imp *Importer) ImportTechnical(ctx context.Context) (*Stats, error) {
	ctx = logging.ContextWithCategory(ctx, string(CategoryTechnical))
	stats := &Stats{Category: CategoryTechnical, StartTime: time.Now(), ByType: make(map[string]int64)}
	defer func() { stats.EndTime = time.Now() }()

	if !export.IsDir(imp.technicalDir) {
		stats.NotFound = true
		notFound(ctx, CategoryTechnical, imp.technicalDir)
		return stats, nil
	}

	files, err := export.Glob(imp.technicalDir, "*.json")
	if err != nil {
		return stats, err
	}
	types, groups := export.GroupByRecordType(files)
	for _, recordType := range types {
		for _, path := range groups[recordType] {
			res, err := imp.importGeneric(ctx, path, recordType)
			if err != nil {
				return stats, err
			}
			stats.add(res)
			stats.ByType[recordType] += int64(res.Imported)
		}
	}

	logging.Ctx(ctx).Info().
		Int("record_types", len(types)).
		Int("files", len(files)).
		Msg("Technical log imported")
	return stats, nil
}

// importGeneric imports one file of arbitrary records as events of
// recordType. Records without a parseable time are skipped.
func (imp *Importer) importGeneric(ctx context.Context, path, recordType string) (fileResult, error) {
	records, err := export.ReadGeneric(path)
	if err != nil {
		metrics.RecordFileImport(string(CategoryTechnical), 0, 0, 0, err)
		logging.Ctx(ctx).Error().Err(err).Str("file", sourceName(path)).Msg("Failed to parse file")
		return fileResult{}, err
	}
	return importRecords(ctx, imp, CategoryTechnical, path, records, eventRecord(recordType, sourceName(path)))
}

func eventRecord(recordType, source string) recordFunc[map[string]any] {
	return func(ctx context.Context, tx *store.Tx, rec *map[string]any) (bool, error) {
		fields := *rec

		occurredAt, ok := popEventTime(fields)
		if !ok {
			logging.Ctx(ctx).Debug().Str("file", source).Str("record_type", recordType).Msg("Skipping event without timestamp")
			return false, nil
		}

		args := make([]any, 0, len(eventColumns))
		args = append(args, normalize.Truncate(recordType, store.NameMax), occurredAt)
		for _, c := range eventContext {
			args = append(args, popText(fields, c.key, c.max))
		}

		payload, err := json.Marshal(fields)
		if err != nil {
			return false, fmt.Errorf("encode payload: %w", err)
		}
		args = append(args, string(payload), source)

		if err := tx.Insert(ctx, "event", eventColumns, args...); err != nil {
			return false, err
		}
		return true, nil
	}
}

// popEventTime removes the time keys from fields and returns the first
// parseable one.
func popEventTime(fields map[string]any) (time.Time, bool) {
	var (
		t     time.Time
		found bool
	)
	for _, key := range eventTimeKeys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		delete(fields, key)
		if found {
			continue
		}
		if parsed, err := normalize.ParseTimestampValue(v); err == nil {
			t, found = parsed, true
		}
	}
	return t, found
}

func popText(fields map[string]any, key string, max int) sql.NullString {
	v, ok := fields[key]
	if !ok {
		return sql.NullString{}
	}
	delete(fields, key)
	return nullString(normalize.StringValue(v), max)
}
