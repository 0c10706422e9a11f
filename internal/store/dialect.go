// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package store

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tomtom215/soundtrail/internal/config"
)

// Dialect captures the per-database differences the loader cares about:
// driver registration name, placeholder style, column types and how an
// insert hands back its generated id.
type Dialect struct {
	// Name is the configuration name (duckdb, sqlite, postgres, sqlserver).
	Name string

	// DriverName is the database/sql driver the dialect opens.
	DriverName string

	bindType int
}

var dialects = map[string]Dialect{
	config.DriverDuckDB:    {Name: config.DriverDuckDB, DriverName: "duckdb", bindType: sqlx.QUESTION},
	config.DriverSQLite:    {Name: config.DriverSQLite, DriverName: "sqlite", bindType: sqlx.QUESTION},
	config.DriverPostgres:  {Name: config.DriverPostgres, DriverName: "pgx", bindType: sqlx.DOLLAR},
	config.DriverSQLServer: {Name: config.DriverSQLServer, DriverName: "sqlserver", bindType: sqlx.AT},
}

// DialectFor returns the dialect registered for a configuration driver name.
func DialectFor(driver string) (Dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
	return d, nil
}

// Rebind rewrites ? placeholders into the dialect's native style.
func (d Dialect) Rebind(query string) string {
	return sqlx.Rebind(d.bindType, query)
}

// InsertReturningID builds an INSERT that yields the generated id as a
// single-row result set.
func (d Dialect) InsertReturningID(table string, cols []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	colList := strings.Join(cols, ", ")

	var q string
	if d.Name == config.DriverSQLServer {
		q = fmt.Sprintf("INSERT INTO %s (%s) OUTPUT INSERTED.id VALUES (%s)", table, colList, placeholders)
	} else {
		q = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id", table, colList, placeholders)
	}
	return d.Rebind(q)
}

// Insert builds a plain INSERT for fact rows whose ids are not needed.
func (d Dialect) Insert(table string, cols []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return d.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders))
}

// columnType renders a logical column type for this dialect.
func (d Dialect) columnType(c Column) string {
	switch c.Type {
	case TypeBigInt, TypeRef:
		if d.Name == config.DriverSQLite {
			return "INTEGER"
		}
		return "BIGINT"
	case TypeVarchar:
		switch d.Name {
		case config.DriverSQLite:
			return "TEXT"
		case config.DriverSQLServer:
			return fmt.Sprintf("NVARCHAR(%d)", c.Size)
		default:
			return fmt.Sprintf("VARCHAR(%d)", c.Size)
		}
	case TypeText:
		if d.Name == config.DriverSQLServer {
			return "NVARCHAR(MAX)"
		}
		return "TEXT"
	case TypeTimestamp:
		if d.Name == config.DriverSQLServer {
			return "DATETIME2"
		}
		return "TIMESTAMP"
	case TypeBool:
		switch d.Name {
		case config.DriverSQLite:
			return "INTEGER"
		case config.DriverSQLServer:
			return "BIT"
		default:
			return "BOOLEAN"
		}
	default:
		return "TEXT"
	}
}

// idColumn renders the surrogate key definition.
func (d Dialect) idColumn(table string) string {
	switch d.Name {
	case config.DriverDuckDB:
		return fmt.Sprintf("id BIGINT PRIMARY KEY DEFAULT nextval('%s')", sequenceName(table))
	case config.DriverSQLite:
		return "id INTEGER PRIMARY KEY AUTOINCREMENT"
	case config.DriverPostgres:
		return "id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	case config.DriverSQLServer:
		return "id BIGINT IDENTITY(1,1) PRIMARY KEY"
	default:
		return "id BIGINT PRIMARY KEY"
	}
}

func sequenceName(table string) string {
	return "seq_" + table + "_id"
}
