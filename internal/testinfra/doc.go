// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

// Package testinfra provides database containers for integration tests.
//
// The embedded drivers (SQLite, DuckDB) are covered by ordinary unit tests.
// The server drivers need a real server, which this package starts with
// testcontainers-go:
//
//	func TestImportPostgres(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg)
//
//	    s := storetest.Open(t, pg.DatabaseConfig())
//	    // ...
//	}
//
// All files are behind the integration build tag:
//
//	go test -tags integration ./...
//
// Tests are skipped when Docker is unavailable. The first run pulls the
// images.
package testinfra
