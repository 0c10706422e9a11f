// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package config

import (
	"fmt"

	"github.com/tomtom215/soundtrail/internal/validation"
)

// Validate checks that required configuration is present and valid.
// The source directory is checked by the importer, not here, so that
// schema-only commands work without one.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	return c.validateDatabase()
}

// validateDatabase enforces the per-driver connection requirements
func (c *Config) validateDatabase() error {
	db := &c.Database
	if db.DSN != "" {
		return nil
	}

	if db.IsFileBacked() {
		if db.Driver == DriverSQLite && db.Path == "" {
			return fmt.Errorf("database.path is required for driver %s", db.Driver)
		}
		return nil
	}

	if db.Host == "" {
		return fmt.Errorf("database.host is required for driver %s (or set database.dsn)", db.Driver)
	}
	if db.Name == "" {
		return fmt.Errorf("database.name is required for driver %s (or set database.dsn)", db.Driver)
	}
	return nil
}
