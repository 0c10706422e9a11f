// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package store

import (
	"fmt"
	"strings"

	"github.com/tomtom215/soundtrail/internal/config"
)

// Column caps. Values longer than a cap are truncated before insert.
const (
	ShortMax    = 50
	URIMax      = 100
	NameMax     = 200
	LongNameMax = 400
	PlatformMax = 200
	TextMax     = 1000
)

// ColumnType is a dialect-neutral column type.
type ColumnType int

const (
	TypeBigInt ColumnType = iota
	TypeVarchar
	TypeText
	TypeTimestamp
	TypeBool
	TypeRef
)

// Column describes one non-id column.
type Column struct {
	Name    string
	Type    ColumnType
	Size    int
	NotNull bool
	Ref     string // referenced table for TypeRef
}

// Table is the dialect-neutral model a CREATE TABLE is rendered from.
// Every table gets a surrogate id column.
type Table struct {
	Name    string
	Columns []Column
	Unique  []string
	Indexes [][]string
}

func varchar(name string, size int) Column { return Column{Name: name, Type: TypeVarchar, Size: size} }
func required(c Column) Column             { c.NotNull = true; return c }
func ref(name, table string) Column        { return Column{Name: name, Type: TypeRef, Ref: table} }
func text(name string) Column              { return Column{Name: name, Type: TypeText} }
func timestamp(name string) Column         { return Column{Name: name, Type: TypeTimestamp} }
func boolean(name string) Column           { return Column{Name: name, Type: TypeBool} }
func bigint(name string) Column            { return Column{Name: name, Type: TypeBigInt} }

// Tables lists the schema in dependency order: referenced tables first.
var Tables = []Table{
	{
		Name:    "artist",
		Columns: []Column{required(varchar("name", NameMax))},
		Unique:  []string{"name"},
	},
	{
		Name:    "album",
		Columns: []Column{required(varchar("name", LongNameMax)), ref("artist_id", "artist")},
		Unique:  []string{"name", "artist_id"},
	},
	{
		Name: "track",
		Columns: []Column{
			required(varchar("uri", URIMax)),
			varchar("name", LongNameMax),
			ref("album_id", "album"),
		},
		Unique: []string{"uri"},
	},
	{
		Name:    "podcast_show",
		Columns: []Column{required(varchar("name", LongNameMax))},
		Unique:  []string{"name"},
	},
	{
		Name: "podcast_episode",
		Columns: []Column{
			required(varchar("uri", URIMax)),
			varchar("name", LongNameMax),
			ref("show_id", "podcast_show"),
		},
		Unique: []string{"uri"},
	},
	{
		Name: "audiobook",
		Columns: []Column{
			required(varchar("uri", URIMax)),
			varchar("title", LongNameMax),
		},
		Unique: []string{"uri"},
	},
	{
		Name: "audiobook_chapter",
		Columns: []Column{
			required(varchar("uri", URIMax)),
			varchar("title", LongNameMax),
			ref("audiobook_id", "audiobook"),
		},
		Unique: []string{"uri"},
	},
	{
		Name: "stream",
		Columns: []Column{
			required(timestamp("played_at")),
			required(bigint("ms_played")),
			required(varchar("content_type", ShortMax)),
			ref("track_id", "track"),
			ref("episode_id", "podcast_episode"),
			ref("chapter_id", "audiobook_chapter"),
			ref("artist_id", "artist"),
			ref("show_id", "podcast_show"),
			ref("audiobook_id", "audiobook"),
			varchar("track_name", LongNameMax),
			varchar("artist_name", NameMax),
			varchar("album_name", LongNameMax),
			varchar("episode_name", LongNameMax),
			varchar("show_name", LongNameMax),
			varchar("audiobook_title", LongNameMax),
			varchar("chapter_title", LongNameMax),
			varchar("username", NameMax),
			varchar("platform", PlatformMax),
			varchar("conn_country", ShortMax),
			varchar("ip_addr", ShortMax),
			varchar("user_agent", TextMax),
			varchar("reason_start", ShortMax),
			varchar("reason_end", ShortMax),
			boolean("shuffle"),
			boolean("skipped"),
			boolean("offline"),
			timestamp("offline_at"),
			boolean("incognito"),
			required(varchar("source_file", NameMax)),
		},
		Indexes: [][]string{{"played_at"}, {"track_id"}},
	},
	{
		Name: "library_item",
		Columns: []Column{
			required(varchar("item_type", ShortMax)),
			ref("artist_id", "artist"),
			ref("album_id", "album"),
			ref("track_id", "track"),
			ref("show_id", "podcast_show"),
			ref("episode_id", "podcast_episode"),
			varchar("uri", URIMax),
			varchar("name", LongNameMax),
			required(varchar("source_file", NameMax)),
		},
	},
	{
		Name: "playlist",
		Columns: []Column{
			required(varchar("name", LongNameMax)),
			timestamp("last_modified"),
			text("description"),
			bigint("follower_count"),
			text("collaborators"),
			required(varchar("source_file", NameMax)),
		},
	},
	{
		Name: "playlist_item",
		Columns: []Column{
			required(ref("playlist_id", "playlist")),
			required(bigint("position")),
			timestamp("added_at"),
			ref("track_id", "track"),
			ref("episode_id", "podcast_episode"),
			ref("chapter_id", "audiobook_chapter"),
			varchar("local_track", LongNameMax),
			required(varchar("source_file", NameMax)),
		},
		Indexes: [][]string{{"playlist_id"}},
	},
	{
		Name: "search_query",
		Columns: []Column{
			required(timestamp("searched_at")),
			varchar("platform", PlatformMax),
			varchar("query", TextMax),
			text("interaction_uris"),
			required(varchar("source_file", NameMax)),
		},
	},
	{
		Name: "profile",
		Columns: []Column{
			varchar("username", NameMax),
			varchar("email", NameMax),
			varchar("country", ShortMax),
			varchar("birthdate", ShortMax),
			varchar("gender", ShortMax),
			varchar("postal_code", ShortMax),
			varchar("mobile_number", ShortMax),
			varchar("mobile_operator", NameMax),
			varchar("mobile_brand", NameMax),
			boolean("created_from_facebook"),
			timestamp("creation_time"),
			required(varchar("source_file", NameMax)),
		},
	},
	{
		Name: "follow_summary",
		Columns: []Column{
			bigint("follower_count"),
			bigint("following_count"),
			bigint("blocking_count"),
			required(varchar("source_file", NameMax)),
		},
	},
	{
		Name: "event",
		Columns: []Column{
			required(varchar("record_type", NameMax)),
			required(timestamp("occurred_at")),
			varchar("conn_country", ShortMax),
			varchar("ip_addr", ShortMax),
			varchar("user_agent", TextMax),
			varchar("platform", PlatformMax),
			varchar("app_version", ShortMax),
			varchar("device_model", NameMax),
			varchar("os_name", ShortMax),
			text("payload"),
			required(varchar("source_file", NameMax)),
		},
		Indexes: [][]string{{"record_type"}},
	},
	{
		Name: "import_run",
		Columns: []Column{
			required(varchar("run_id", ShortMax)),
			text("source_dir"),
			varchar("category", ShortMax),
			required(timestamp("started_at")),
			timestamp("finished_at"),
			required(varchar("status", ShortMax)),
			bigint("records_imported"),
			bigint("records_skipped"),
			text("error_message"),
		},
		Unique: []string{"run_id"},
	},
}

// DDL renders the statements that create every table and index for the
// dialect. Each statement is idempotent.
func (d Dialect) DDL() []string {
	var stmts []string
	for _, t := range Tables {
		stmts = append(stmts, d.createTable(t)...)
	}
	for _, t := range Tables {
		for _, cols := range t.Indexes {
			stmts = append(stmts, d.createIndex(t.Name, cols))
		}
	}
	return stmts
}

func (d Dialect) createTable(t Table) []string {
	defs := []string{d.idColumn(t.Name)}
	for _, c := range t.Columns {
		def := c.Name + " " + d.columnType(c)
		if c.NotNull {
			def += " NOT NULL"
		}
		if c.Type == TypeRef {
			def += fmt.Sprintf(" REFERENCES %s(id)", c.Ref)
		}
		defs = append(defs, def)
	}
	if len(t.Unique) > 0 {
		defs = append(defs, fmt.Sprintf("UNIQUE (%s)", strings.Join(t.Unique, ", ")))
	}

	body := fmt.Sprintf("(\n\t%s\n)", strings.Join(defs, ",\n\t"))

	switch d.Name {
	case config.DriverDuckDB:
		return []string{
			fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START 1", sequenceName(t.Name)),
			fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s %s", t.Name, body),
		}
	case config.DriverSQLServer:
		return []string{fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\nCREATE TABLE %s %s\nEND", t.Name, t.Name, body)}
	default:
		return []string{fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s %s", t.Name, body)}
	}
}

func (d Dialect) createIndex(table string, cols []string) string {
	name := fmt.Sprintf("idx_%s_%s", table, strings.Join(cols, "_"))
	colList := strings.Join(cols, ", ")
	if d.Name == config.DriverSQLServer {
		return fmt.Sprintf("IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = '%s')\nCREATE INDEX %s ON %s(%s)",
			name, name, table, colList)
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", name, table, colList)
}
