// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package importer

import (
	"errors"
	"fmt"
	"time"
)

// Category names one logical importer.
type Category string

const (
	CategoryStreaming Category = "streaming"
	CategoryLibrary   Category = "library"
	CategoryPlaylists Category = "playlists"
	CategorySearch    Category = "search"
	CategoryProfile   Category = "profile"
	CategoryFollow    Category = "follow"
	CategoryTechnical Category = "technical"
)

// CategoryAll selects every category.
const CategoryAll = "all"

// Categories returns every category in run order. Streaming owns most
// dimension rows, so it runs first.
func Categories() []Category {
	return []Category{
		CategoryStreaming,
		CategoryLibrary,
		CategoryPlaylists,
		CategorySearch,
		CategoryProfile,
		CategoryFollow,
		CategoryTechnical,
	}
}

// ParseCategory resolves a command-line argument into the categories to run.
func ParseCategory(arg string) ([]Category, error) {
	if arg == CategoryAll {
		return Categories(), nil
	}
	for _, c := range Categories() {
		if string(c) == arg {
			return []Category{c}, nil
		}
	}
	return nil, fmt.Errorf("unknown category %q (want one of %v or %s)", arg, Categories(), CategoryAll)
}

// ErrSourceNotFound reports that the export directory does not exist.
var ErrSourceNotFound = errors.New("source directory not found")

// RecordError locates a failure at one record of one file. The file's
// transaction has been rolled back when it is returned.
type RecordError struct {
	File  string
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: record %d: %v", e.File, e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Stats holds statistics about one category of an import run.
type Stats struct {
	Category Category

	// Files is the number of files committed.
	Files int

	// Imported is the number of records written.
	Imported int64

	// Skipped is the number of records a feed policy dropped.
	Skipped int64

	// NotFound is set when none of the category's files were present.
	NotFound bool

	// ByType holds per record-type counts for the technical log.
	ByType map[string]int64

	StartTime time.Time
	EndTime   time.Time
}

// Duration returns the duration of the category import.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// RecordsPerSecond returns the import rate.
func (s *Stats) RecordsPerSecond() float64 {
	duration := s.Duration().Seconds()
	if duration == 0 {
		return 0
	}
	return float64(s.Imported) / duration
}

func (s *Stats) add(r fileResult) {
	s.Files++
	s.addRecords(r)
}

func (s *Stats) addRecords(r fileResult) {
	s.Imported += int64(r.Imported)
	s.Skipped += int64(r.Skipped)
}

// Summary holds the outcome of a whole run.
type Summary struct {
	RunID      string
	SourceDir  string
	Categories []*Stats
	StartTime  time.Time
	EndTime    time.Time
}

// Totals sums imported and skipped records over all categories.
func (s *Summary) Totals() (imported, skipped int64) {
	for _, c := range s.Categories {
		imported += c.Imported
		skipped += c.Skipped
	}
	return imported, skipped
}

// Duration returns the wall time of the run.
func (s *Summary) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// fileResult is the outcome of one committed file transaction.
type fileResult struct {
	Imported int
	Skipped  int
}
