// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDatabase struct {
	Driver  string        `koanf:"driver" validate:"required,oneof=duckdb sqlite"`
	Timeout time.Duration `koanf:"statement_timeout" validate:"gt=0"`
}

type testConfig struct {
	Database testDatabase `koanf:"database"`
}

func TestGetValidatorSingleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	require.NotNil(t, v1)
	assert.Same(t, v1, v2)
}

func TestValidateStructValid(t *testing.T) {
	cfg := testConfig{Database: testDatabase{Driver: "duckdb", Timeout: time.Second}}
	assert.NoError(t, ValidateStruct(&cfg))
}

func TestValidateStructReportsKoanfPaths(t *testing.T) {
	cfg := testConfig{Database: testDatabase{Driver: "oracle"}}

	err := ValidateStruct(&cfg)
	require.Error(t, err)

	var verr *Errors
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields(), 2)

	assert.Equal(t, "database.driver", verr.Fields()[0].Field())
	assert.Equal(t, "oneof", verr.Fields()[0].Tag())
	assert.Equal(t, "database.driver must be one of: duckdb sqlite", verr.Fields()[0].Error())

	assert.Equal(t, "database.statement_timeout", verr.Fields()[1].Field())
	assert.Contains(t, err.Error(), "database.statement_timeout must be greater than 0")
}

func TestValidateStructRequired(t *testing.T) {
	err := ValidateStruct(&testConfig{Database: testDatabase{Timeout: time.Second}})
	require.Error(t, err)
	assert.Equal(t, "database.driver is required", err.Error())
}
