// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

// Package main is the soundtrail command line tool.
//
// Soundtrail loads an unpacked streaming-service data export (a directory
// of JSON files) into a relational store: DuckDB by default, or SQLite,
// PostgreSQL and SQL Server. Dimension rows (artists, albums, tracks,
// shows, episodes, audiobooks, chapters) are deduplicated by natural key;
// each file is imported in one transaction and the first failing file
// halts the run.
//
// # Configuration
//
// Settings are layered with Koanf v2 (highest priority wins):
//   - Command line flags
//   - Environment variables (SOUNDTRAIL_DB_DRIVER, SOUNDTRAIL_SOURCE_DIR, LOG_LEVEL, ...)
//   - Config file (soundtrail.yaml, or --config)
//   - Built-in defaults
//
// # Example Usage
//
//	soundtrail import all --source ~/Downloads/my_spotify_data
//	soundtrail import streaming --source ./export --driver postgres \
//	  --host localhost --database listening --user loader --password secret
//	soundtrail schema --driver sqlite --db-path ./listening.db
//
// The import exits non-zero when the source directory does not exist,
// before any database connection is made.
package main

func main() {
	Execute()
}
