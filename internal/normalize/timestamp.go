// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

// Package normalize holds the field-normalization helpers shared by every
// importer: timestamp parsing, lossy string truncation and optional-value
// conversion.
package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ErrUnparseableTimestamp is returned when no accepted timestamp rule matches.
// Callers decide per feed whether this is fatal, skips the record, or maps to NULL.
var ErrUnparseableTimestamp = errors.New("unparseable timestamp")

// NaiveMinuteLayout is the account-data export pattern (no seconds, no zone).
const NaiveMinuteLayout = "2006-01-02 15:04"

// isoLayouts are tried in order after the bracketed zone suffix is stripped.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
}

// naiveLayouts are parsed without a zone and stored as-is.
var naiveLayouts = []string{
	NaiveMinuteLayout,
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a raw timestamp string using the accepted rules:
//
//   - ISO-8601 with an optional trailing bracketed zone name ("...Z[UTC]")
//   - "2006-01-02 15:04" (and "2006-01-02 15:04:05"), naive
//   - an all-digit string, interpreted as Unix epoch milliseconds
//
// Zoned values are converted to UTC. Naive values keep their wall clock.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnparseableTimestamp)
	}

	if isEpochDigits(s) {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %v", ErrUnparseableTimestamp, raw, err)
		}
		return FromEpochMillis(ms), nil
	}

	s = stripZoneSuffix(s)

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTimestamp, raw)
}

// ParseTimestampValue parses a decoded JSON value: a string (see ParseTimestamp)
// or a number interpreted as Unix epoch milliseconds.
func ParseTimestampValue(v any) (time.Time, error) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("%w: missing value", ErrUnparseableTimestamp)
	case string:
		return ParseTimestamp(val)
	case json.Number:
		ms, err := val.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %v", ErrUnparseableTimestamp, val.String(), err)
		}
		return FromEpochMillis(ms), nil
	case float64:
		return FromEpochMillis(int64(val)), nil
	case int64:
		return FromEpochMillis(val), nil
	case int:
		return FromEpochMillis(int64(val)), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrUnparseableTimestamp, v)
	}
}

// ParseOptionalTimestamp returns nil for an absent or unparseable value.
func ParseOptionalTimestamp(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, err := ParseTimestamp(*raw)
	if err != nil {
		return nil
	}
	return &t
}

// FromEpochMillis converts Unix epoch milliseconds to a UTC time.
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// stripZoneSuffix removes a trailing "[Zone/Name]" annotation.
func stripZoneSuffix(s string) string {
	if !strings.HasSuffix(s, "]") {
		return s
	}
	if i := strings.LastIndexByte(s, '['); i > 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func isEpochDigits(s string) bool {
	if s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
