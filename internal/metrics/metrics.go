// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

// Package metrics records Prometheus metrics for an import run.
//
// The loader is a one-shot CLI, so nothing is scraped. Metrics live on a
// private registry and are written once at the end of the run in the
// node-exporter textfile format when a metrics file is configured:
//
//	soundtrail import all --source ./my_spotify_data --metrics-file /var/lib/node_exporter/soundtrail.prom
//
// Available metrics:
//   - soundtrail_records_imported_total{category}
//   - soundtrail_records_skipped_total{category}
//   - soundtrail_files_total{category,status}: status is imported, failed or not_found
//   - soundtrail_file_import_duration_seconds{category}
//   - soundtrail_resolver_operations_total{kind,result}: result is hit, lookup or insert
//   - soundtrail_storage_errors_total{class}
//   - soundtrail_last_run_success_timestamp_seconds
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every Soundtrail metric. It is separate from the default
// registry so the textfile contains no Go runtime series.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	RecordsImported = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundtrail_records_imported_total",
			Help: "Total number of export records written to the store",
		},
		[]string{"category"},
	)

	RecordsSkipped = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundtrail_records_skipped_total",
			Help: "Total number of export records skipped by a feed policy",
		},
		[]string{"category"},
	)

	FilesProcessed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundtrail_files_total",
			Help: "Total number of export files handled, by outcome",
		},
		[]string{"category", "status"},
	)

	FileImportDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soundtrail_file_import_duration_seconds",
			Help:    "Duration of one file transaction in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"category"},
	)

	ResolverOperations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundtrail_resolver_operations_total",
			Help: "Dimension resolver cache hits, storage lookups and inserts",
		},
		[]string{"kind", "result"},
	)

	StorageErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundtrail_storage_errors_total",
			Help: "Total number of storage errors that aborted a file, by class",
		},
		[]string{"class"},
	)

	LastRunSuccess = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "soundtrail_last_run_success_timestamp_seconds",
			Help: "Unix timestamp of the last fully successful import run",
		},
	)
)

// File outcome labels.
const (
	FileImported = "imported"
	FileFailed   = "failed"
	FileNotFound = "not_found"
)

// RecordFileImport records one file transaction.
func RecordFileImport(category string, duration time.Duration, imported, skipped int, err error) {
	FileImportDuration.WithLabelValues(category).Observe(duration.Seconds())
	if err != nil {
		FilesProcessed.WithLabelValues(category, FileFailed).Inc()
		return
	}
	FilesProcessed.WithLabelValues(category, FileImported).Inc()
	RecordsImported.WithLabelValues(category).Add(float64(imported))
	RecordsSkipped.WithLabelValues(category).Add(float64(skipped))
}

// RecordFileNotFound records an expected file that was absent.
func RecordFileNotFound(category string) {
	FilesProcessed.WithLabelValues(category, FileNotFound).Inc()
}

// RecordStorageError records a file-aborting storage error by class.
func RecordStorageError(class string) {
	if class == "" {
		class = "other"
	}
	StorageErrors.WithLabelValues(class).Inc()
}

// RecordResolver adds one kind's resolver counters.
func RecordResolver(kind string, hits, lookups, inserts int64) {
	ResolverOperations.WithLabelValues(kind, "hit").Add(float64(hits))
	ResolverOperations.WithLabelValues(kind, "lookup").Add(float64(lookups))
	ResolverOperations.WithLabelValues(kind, "insert").Add(float64(inserts))
}

// RecordRunSuccess marks the end of a successful run.
func RecordRunSuccess(at time.Time) {
	LastRunSuccess.Set(float64(at.Unix()))
}

// WriteTextfile writes every metric to path in the Prometheus text format.
// The file is written to a temporary name and renamed into place.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", path, err)
	}
	return nil
}
