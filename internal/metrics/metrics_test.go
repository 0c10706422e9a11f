// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// writeMetric extracts the protobuf form of a single metric
func writeMetric(t *testing.T, m prometheus.Metric) *io_prometheus_client.Metric {
	t.Helper()
	var out io_prometheus_client.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return &out
}

// TestRecordFileImport tests per-file counters for success and failure
func TestRecordFileImport(t *testing.T) {
	const category = "test_file_import"

	RecordFileImport(category, 20*time.Millisecond, 10, 2, nil)
	RecordFileImport(category, 5*time.Millisecond, 0, 0, errors.New("constraint"))

	if got := testutil.ToFloat64(RecordsImported.WithLabelValues(category)); got != 10 {
		t.Errorf("records imported = %v, want 10", got)
	}
	if got := testutil.ToFloat64(RecordsSkipped.WithLabelValues(category)); got != 2 {
		t.Errorf("records skipped = %v, want 2", got)
	}
	if got := testutil.ToFloat64(FilesProcessed.WithLabelValues(category, FileImported)); got != 1 {
		t.Errorf("files imported = %v, want 1", got)
	}
	if got := testutil.ToFloat64(FilesProcessed.WithLabelValues(category, FileFailed)); got != 1 {
		t.Errorf("files failed = %v, want 1", got)
	}
}

// TestRecordFileNotFound tests the not-found outcome
func TestRecordFileNotFound(t *testing.T) {
	const category = "test_not_found"

	RecordFileNotFound(category)
	RecordFileNotFound(category)

	if got := testutil.ToFloat64(FilesProcessed.WithLabelValues(category, FileNotFound)); got != 2 {
		t.Errorf("files not found = %v, want 2", got)
	}
}

// TestRecordStorageError tests error class labelling
func TestRecordStorageError(t *testing.T) {
	before := testutil.ToFloat64(StorageErrors.WithLabelValues("other"))

	RecordStorageError("")

	if got := testutil.ToFloat64(StorageErrors.WithLabelValues("other")); got != before+1 {
		t.Errorf("empty class should count as other: got %v, want %v", got, before+1)
	}
}

// TestRecordResolver tests resolver counters by result
func TestRecordResolver(t *testing.T) {
	RecordResolver("test_artist", 7, 3, 2)

	tests := map[string]float64{"hit": 7, "lookup": 3, "insert": 2}
	for result, want := range tests {
		if got := testutil.ToFloat64(ResolverOperations.WithLabelValues("test_artist", result)); got != want {
			t.Errorf("resolver %s = %v, want %v", result, got, want)
		}
	}
}

// TestWriteTextfile tests the node-exporter textfile output
func TestWriteTextfile(t *testing.T) {
	RecordRunSuccess(time.Unix(1700000000, 0))
	RecordFileImport("test_textfile", time.Millisecond, 1, 0, nil)

	path := filepath.Join(t.TempDir(), "soundtrail.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics file: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"soundtrail_last_run_success_timestamp_seconds 1.7e+09",
		`soundtrail_records_imported_total{category="test_textfile"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics file missing %q", want)
		}
	}
	if strings.Contains(out, "go_goroutines") {
		t.Error("metrics file should not contain Go runtime metrics")
	}
}

// TestWriteTextfileBadPath tests error reporting for an unwritable path
func TestWriteTextfileBadPath(t *testing.T) {
	if err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")); err == nil {
		t.Error("expected error for missing directory")
	}
}

// TestFileImportDurationObserved tests that every file outcome is timed
func TestFileImportDurationObserved(t *testing.T) {
	const category = "test_duration"

	RecordFileImport(category, 150*time.Millisecond, 1, 0, nil)
	RecordFileImport(category, 2*time.Second, 0, 0, errors.New("boom"))

	h := writeMetric(t, FileImportDuration.WithLabelValues(category).(prometheus.Metric)).GetHistogram()
	if got := h.GetSampleCount(); got != 2 {
		t.Errorf("sample count = %d, want 2", got)
	}
	if got := h.GetSampleSum(); got < 2.1 || got > 2.2 {
		t.Errorf("sample sum = %v, want 2.15", got)
	}
}

// TestRecordRunSuccess tests the last-success gauge
func TestRecordRunSuccess(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	RecordRunSuccess(at)

	if got := writeMetric(t, LastRunSuccess).GetGauge().GetValue(); got != float64(at.Unix()) {
		t.Errorf("last success = %v, want %d", got, at.Unix())
	}
}
