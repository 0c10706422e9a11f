// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

// Package importer loads the files of a data export into the store.
//
// Every category rides on one loop: read and fully parse a file, open a
// transaction, handle records in input order (normalize fields, resolve
// dimension ids through the shared resolver, insert the fact row), then
// commit. Any error rolls back the whole file, including dimension rows
// it created, and halts the run. Reruns are the recovery mechanism:
// dimension resolution is idempotent by natural key, while multi-row fact
// tables are not guarded and duplicate on rerun.
//
// Per-feed timestamp policy:
//
//	streaming history   unparseable timestamp aborts the file
//	search queries      record skipped
//	technical log       record skipped
//	playlist dates      stored as NULL
//	profile creation    stored as NULL
package importer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tomtom215/soundtrail/internal/config"
	"github.com/tomtom215/soundtrail/internal/export"
	"github.com/tomtom215/soundtrail/internal/resolver"
	"github.com/tomtom215/soundtrail/internal/store"
)

// Importer imports export files from one source directory.
type Importer struct {
	store        *store.Store
	resolver     *resolver.Resolver
	sourceDir    string
	technicalDir string
}

// New creates an importer writing to s. The resolver cache lives as long
// as the importer.
func New(s *store.Store, src config.SourceConfig) *Importer {
	technical := src.TechnicalDir
	if technical == "" {
		technical = config.DefaultTechnicalDir
	}
	if !filepath.IsAbs(technical) {
		technical = filepath.Join(src.Dir, technical)
	}

	return &Importer{
		store:        s,
		resolver:     resolver.New(),
		sourceDir:    src.Dir,
		technicalDir: technical,
	}
}

// Resolver exposes the dimension resolver, mainly for statistics.
func (imp *Importer) Resolver() *resolver.Resolver {
	return imp.resolver
}

// CheckSource verifies that dir exists and is a directory. Callers run it
// before connecting to storage.
func CheckSource(dir string) error {
	if dir == "" || !export.IsDir(dir) {
		return fmt.Errorf("%w: %q", ErrSourceNotFound, dir)
	}
	return nil
}

// ImportCategory runs one category and returns its statistics.
func (imp *Importer) ImportCategory(ctx context.Context, c Category) (*Stats, error) {
	switch c {
	case CategoryStreaming:
		return imp.ImportStreaming(ctx)
	case CategoryLibrary:
		return imp.ImportLibrary(ctx)
	case CategoryPlaylists:
		return imp.ImportPlaylists(ctx)
	case CategorySearch:
		return imp.ImportSearch(ctx)
	case CategoryProfile:
		return imp.ImportProfile(ctx)
	case CategoryFollow:
		return imp.ImportFollow(ctx)
	case CategoryTechnical:
		return imp.ImportTechnical(ctx)
	default:
		return nil, fmt.Errorf("unknown category %q", c)
	}
}
