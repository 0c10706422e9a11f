// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

// Package config loads Soundtrail configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every optional setting
//  2. Config File: Optional YAML config file (soundtrail.yaml)
//  3. Environment Variables: SOUNDTRAIL_* and LOG_* overrides
//  4. Command-line flags: applied by the CLI through Overrides
//
// Config is immutable after Load() returns.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Supported database drivers.
const (
	DriverDuckDB    = "duckdb"
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	DriverSQLServer = "sqlserver"
)

// Config holds all application configuration.
type Config struct {
	Source   SourceConfig   `koanf:"source"`
	Database DatabaseConfig `koanf:"database"`
	Logging  LoggingConfig  `koanf:"logging"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// SourceConfig describes where the export archive was unpacked.
//
// Environment Variables:
//   - SOUNDTRAIL_SOURCE_DIR: directory holding the export JSON files
//   - SOUNDTRAIL_TECHNICAL_DIR: technical-log subdirectory (relative to the source dir)
type SourceConfig struct {
	Dir          string `koanf:"dir"`
	TechnicalDir string `koanf:"technical_dir"`
}

// DatabaseConfig holds target store settings.
//
// File-backed drivers (duckdb, sqlite) use Path. Server drivers (postgres,
// sqlserver) use the connection coordinates, or DSN when set explicitly.
//
// Environment Variables:
//   - SOUNDTRAIL_DB_DRIVER: duckdb, sqlite, postgres or sqlserver (default: duckdb)
//   - SOUNDTRAIL_DB_PATH: database file for duckdb/sqlite
//   - SOUNDTRAIL_DB_HOST, SOUNDTRAIL_DB_PORT, SOUNDTRAIL_DB_NAME
//   - SOUNDTRAIL_DB_USER, SOUNDTRAIL_DB_PASSWORD, SOUNDTRAIL_DB_SSLMODE
//   - SOUNDTRAIL_DB_DSN: full connection string, overrides the coordinates
//   - SOUNDTRAIL_STATEMENT_TIMEOUT: per-statement timeout (default: 30s)
type DatabaseConfig struct {
	Driver           string        `koanf:"driver" validate:"required,oneof=duckdb sqlite postgres sqlserver"`
	Path             string        `koanf:"path"`
	Host             string        `koanf:"host"`
	Port             int           `koanf:"port" validate:"gte=0,lte=65535"`
	Name             string        `koanf:"name"`
	User             string        `koanf:"user"`
	Password         string        `koanf:"password"`
	SSLMode          string        `koanf:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	DSN              string        `koanf:"dsn"`
	StatementTimeout time.Duration `koanf:"statement_timeout" validate:"gt=0"`
	MaxMemory        string        `koanf:"max_memory"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig controls the Prometheus textfile written at the end of a run.
type MetricsConfig struct {
	File string `koanf:"file"`
}

// IsFileBacked reports whether the driver stores data in a local file.
func (c *DatabaseConfig) IsFileBacked() bool {
	return c.Driver == DriverDuckDB || c.Driver == DriverSQLite
}

// ConnectionString builds the driver-specific data source name.
// An explicit DSN always wins.
func (c *DatabaseConfig) ConnectionString() string {
	if c.DSN != "" {
		return c.DSN
	}

	switch c.Driver {
	case DriverDuckDB:
		if c.MaxMemory == "" {
			return c.Path
		}
		return fmt.Sprintf("%s?max_memory=%s", c.Path, c.MaxMemory)
	case DriverSQLite:
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", c.Path)
	case DriverPostgres:
		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   c.hostPort(5432),
			Path:   "/" + c.Name,
		}
		if c.SSLMode != "" {
			u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
		}
		return u.String()
	case DriverSQLServer:
		u := &url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.hostPort(1433),
			RawQuery: url.Values{"database": {c.Name}}.Encode(),
		}
		return u.String()
	default:
		return ""
	}
}

func (c *DatabaseConfig) hostPort(defaultPort int) string {
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}
