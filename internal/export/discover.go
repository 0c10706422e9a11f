// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// maxSeries bounds series probing against a pathological directory.
const maxSeries = 10000

// DiscoverSeries returns the files of a chunked series in order: base.json
// when present, then base<sep>1.json, base<sep>2.json, ... until the first
// missing ordinal.
func DiscoverSeries(dir, base, sep string) []string {
	var files []string

	if p := filepath.Join(dir, base+".json"); isFile(p) {
		files = append(files, p)
	}
	for i := 1; i <= maxSeries; i++ {
		p := filepath.Join(dir, base+sep+strconv.Itoa(i)+".json")
		if !isFile(p) {
			break
		}
		files = append(files, p)
	}
	return files
}

// Glob returns the files in dir matching pattern, sorted by name.
func Glob(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	files := matches[:0]
	for _, m := range matches {
		if isFile(m) {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Find returns dir/name, or an error wrapping ErrNotFound when absent.
func Find(dir, name string) (string, error) {
	p := filepath.Join(dir, name)
	if !isFile(p) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return p, nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

var seriesSuffix = regexp.MustCompile(`_\d+$`)

// RecordTypeName derives the logical record type from a file name by
// dropping the directory, the .json extension and a numeric _N suffix:
// "Dir/AddedToPlaylist_3.json" becomes "AddedToPlaylist".
func RecordTypeName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return seriesSuffix.ReplaceAllString(name, "")
}

// GroupByRecordType groups sorted files by RecordTypeName, keeping the
// first-seen order of types and the input order of files within a type.
func GroupByRecordType(files []string) (types []string, groups map[string][]string) {
	groups = make(map[string][]string)
	for _, f := range files {
		t := RecordTypeName(f)
		if _, seen := groups[t]; !seen {
			types = append(types, t)
		}
		groups[t] = append(groups[t], f)
	}
	return types, groups
}
