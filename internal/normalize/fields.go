// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package normalize

import (
	"strings"
	"unicode/utf8"
)

// Truncate cuts s to at most max characters (runes). Longer values are
// shortened, never rejected. max <= 0 disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// TruncatePtr truncates an optional string. nil stays nil.
func TruncatePtr(s *string, max int) *string {
	if s == nil {
		return nil
	}
	v := Truncate(*s, max)
	return &v
}

// Text returns the trimmed value of an optional string, or "" when absent.
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// NullableText returns nil for an absent or blank string, otherwise the
// truncated value. It is the usual shape for optional text columns.
func NullableText(s *string, max int) *string {
	v := Text(s)
	if v == "" {
		return nil
	}
	v = Truncate(v, max)
	return &v
}
