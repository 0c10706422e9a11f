// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ErrNotNumeric is returned when a required numeric field holds something else.
var ErrNotNumeric = errors.New("not a number")

// DateLayout is the date-only form used by playlist and profile files.
const DateLayout = "2006-01-02"

// Int64Value converts a decoded JSON value to an integer. Fractional
// numbers are truncated toward zero.
func Int64Value(v any) (int64, error) {
	switch val := v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: missing value", ErrNotNumeric)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, nil
		}
		f, err := val.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, val.String())
		}
		return floatToInt(f)
	case float64:
		return floatToInt(val)
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrNotNumeric, v)
	}
}

func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%w: %v out of range", ErrNotNumeric, f)
	}
	return int64(f), nil
}

// OptionalInt64 converts an optional numeric value, returning nil when it
// is absent or not numeric.
func OptionalInt64(v any) *int64 {
	if v == nil {
		return nil
	}
	n, err := Int64Value(v)
	if err != nil {
		return nil
	}
	return &n
}

// ParseDate accepts a date-only value ("2023-05-01") or anything
// ParseTimestamp accepts.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, strings.TrimSpace(raw)); err == nil {
		return t, nil
	}
	return ParseTimestamp(raw)
}

// ParseOptionalDate returns nil for an absent or unparseable date.
func ParseOptionalDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, err := ParseDate(*raw)
	if err != nil {
		return nil
	}
	return &t
}

// StringValue renders a decoded JSON scalar as text. Strings are returned
// unchanged, numbers keep their literal form, and composite values are
// re-encoded as JSON. nil becomes "".
func StringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
