// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

// Package export reads the JSON files of a personal data export.
//
// Three document shapes occur:
//   - an array of homogeneous records (streaming history, search queries)
//   - an object with named sections (library, playlists)
//   - an object that is itself one record (profile, follow summary)
//
// Files are bounded and decoded fully in memory. Numbers decode as
// json.Number when the target is untyped so epoch milliseconds survive
// without float rounding.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-json"
)

// ErrNotFound reports that an expected export file is absent.
var ErrNotFound = errors.New("export file not found")

// ErrEmptyDocument reports a file with no JSON value in it.
var ErrEmptyDocument = errors.New("empty JSON document")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readFile loads a file and strips a leading byte-order mark.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from directory discovery
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return bytes.TrimPrefix(data, utf8BOM), nil
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// firstByte returns the first non-whitespace byte of data.
func firstByte(data []byte) byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// ReadRecords decodes a file holding either an array of records or a
// single record object. A single object becomes a one-element slice.
func ReadRecords[T any](path string) ([]T, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	switch firstByte(data) {
	case '[':
		var records []T
		if err := decode(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return records, nil
	case '{':
		var record T
		if err := decode(data, &record); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return []T{record}, nil
	case 0:
		return nil, fmt.Errorf("failed to parse %s: %w", path, ErrEmptyDocument)
	default:
		return nil, fmt.Errorf("failed to parse %s: expected a JSON array or object", path)
	}
}

// ReadObject decodes a file holding one JSON object into v. It serves both
// sectioned documents and singleton records.
func ReadObject(path string, v any) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	if firstByte(data) != '{' {
		if firstByte(data) == 0 {
			return fmt.Errorf("failed to parse %s: %w", path, ErrEmptyDocument)
		}
		return fmt.Errorf("failed to parse %s: expected a JSON object", path)
	}
	if err := decode(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ReadGeneric decodes a file of arbitrary records into string-keyed maps.
func ReadGeneric(path string) ([]map[string]any, error) {
	return ReadRecords[map[string]any](path)
}
