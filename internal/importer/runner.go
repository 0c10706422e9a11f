// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/soundtrail/internal/logging"
	"github.com/tomtom215/soundtrail/internal/metrics"
	"github.com/tomtom215/soundtrail/internal/normalize"
	"github.com/tomtom215/soundtrail/internal/store"
)

// Run statuses recorded in import_run.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

var importRunColumns = []string{"run_id", "source_dir", "category", "started_at", "status"}

// Run imports categories in order and stops at the first failing file.
// The returned summary covers the categories attempted, including the
// failing one. The run is recorded in import_run.
func (imp *Importer) Run(ctx context.Context, categories []Category) (*Summary, error) {
	runID := logging.NewRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	log := logging.Ctx(ctx)

	summary := &Summary{
		RunID:     runID.String(),
		SourceDir: imp.sourceDir,
		StartTime: time.Now(),
	}

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}

	if err := imp.inTx(ctx, func(tx *store.Tx) error {
		return tx.Insert(ctx, "import_run", importRunColumns,
			summary.RunID,
			imp.sourceDir,
			nullString(strings.Join(names, ","), store.ShortMax),
			summary.StartTime,
			RunRunning,
		)
	}); err != nil {
		return summary, fmt.Errorf("record import run: %w", err)
	}

	log.Info().
		Str("source", imp.sourceDir).
		Strs("categories", names).
		Msg("Starting import")

	var runErr error
	for _, c := range categories {
		stats, err := imp.ImportCategory(ctx, c)
		if stats != nil {
			summary.Categories = append(summary.Categories, stats)
		}
		if err != nil {
			runErr = fmt.Errorf("import %s: %w", c, err)
			break
		}
	}
	summary.EndTime = time.Now()

	imp.recordResolverStats()
	imp.finishRun(ctx, summary, runErr)

	if runErr != nil {
		log.Error().Err(runErr).Dur("duration", summary.Duration()).Msg("Import failed")
		return summary, runErr
	}

	imported, skipped := summary.Totals()
	metrics.RecordRunSuccess(summary.EndTime)
	log.Info().
		Int64("imported", imported).
		Int64("skipped", skipped).
		Dur("duration", summary.Duration()).
		Msg("Import complete")
	return summary, nil
}

// finishRun updates the import_run row. Failures are logged only, so the
// import outcome is never masked.
func (imp *Importer) finishRun(ctx context.Context, summary *Summary, runErr error) {
	status := RunSucceeded
	var message any
	if runErr != nil {
		status = RunFailed
		message = normalize.Truncate(runErr.Error(), store.TextMax)
	}
	imported, skipped := summary.Totals()

	err := imp.inTx(ctx, func(tx *store.Tx) error {
		return tx.Exec(ctx,
			`UPDATE import_run
			 SET finished_at = ?, status = ?, records_imported = ?, records_skipped = ?, error_message = ?
			 WHERE run_id = ?`,
			summary.EndTime, status, imported, skipped, message, summary.RunID)
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to update import run")
	}
}

func (imp *Importer) recordResolverStats() {
	for kind, s := range imp.resolver.Stats() {
		metrics.RecordResolver(kind, s.Hits, s.Lookups, s.Inserts)
	}
}

// inTx runs fn in its own transaction.
func (imp *Importer) inTx(ctx context.Context, fn func(tx *store.Tx) error) error {
	tx, err := imp.store.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
