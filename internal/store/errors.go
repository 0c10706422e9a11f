// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrorClass groups storage failures for logging and metrics.
type ErrorClass string

const (
	ErrorClassNone       ErrorClass = ""
	ErrorClassConstraint ErrorClass = "constraint"
	ErrorClassTimeout    ErrorClass = "timeout"
	ErrorClassConnection ErrorClass = "connection"
	ErrorClassOther      ErrorClass = "other"
)

// SQL Server error numbers.
const (
	mssqlUniqueIndex      = 2601
	mssqlUniqueConstraint = 2627
	mssqlForeignKey       = 547
	mssqlNotNull          = 515
	mssqlTimeout          = -2
)

// ClassifyError maps a driver error onto an ErrorClass using each driver's
// typed error. A nil error is ErrorClassNone.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassNone
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorClassTimeout
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrorClassConnection
	}

	var duckErr *duckdb.Error
	if errors.As(err, &duckErr) {
		switch duckErr.Type {
		case duckdb.ErrorTypeConstraint:
			return ErrorClassConstraint
		case duckdb.ErrorTypeInterrupt:
			return ErrorClassTimeout
		case duckdb.ErrorTypeConnection:
			return ErrorClassConnection
		default:
			return ErrorClassOther
		}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return ErrorClassConstraint
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return ErrorClassTimeout
		case sqlite3.SQLITE_CANTOPEN:
			return ErrorClassConnection
		default:
			return ErrorClassOther
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return ErrorClassConstraint
		case pgErr.Code == "57014":
			return ErrorClassTimeout
		case strings.HasPrefix(pgErr.Code, "08"):
			return ErrorClassConnection
		default:
			return ErrorClassOther
		}
	}
	if pgconn.Timeout(err) {
		return ErrorClassTimeout
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		switch msErr.Number {
		case mssqlUniqueIndex, mssqlUniqueConstraint, mssqlForeignKey, mssqlNotNull:
			return ErrorClassConstraint
		case mssqlTimeout:
			return ErrorClassTimeout
		default:
			return ErrorClassOther
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorClassTimeout
		}
		return ErrorClassConnection
	}

	return ErrorClassOther
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
