// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tomtom215/soundtrail/internal/importer"
)

// printSummary writes a per-category table of the run to w.
func printSummary(w io.Writer, s *importer.Summary) {
	fmt.Fprintf(w, "\nImport run %s\n", s.RunID)
	fmt.Fprintf(w, "Source: %s\n\n", s.SourceDir)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tFILES\tIMPORTED\tSKIPPED\tRATE\tDURATION")
	for _, c := range s.Categories {
		if c.NotFound {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\tnot found\n", c.Category)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s/s\t%s\n",
			c.Category,
			c.Files,
			humanize.Comma(c.Imported),
			humanize.Comma(c.Skipped),
			humanize.CommafWithDigits(c.RecordsPerSecond(), 1),
			c.Duration().Round(time.Millisecond),
		)
		for _, t := range sortedTypes(c.ByType) {
			fmt.Fprintf(tw, "  %s\t\t%s\t\t\t\n", t, humanize.Comma(c.ByType[t]))
		}
	}
	_ = tw.Flush()

	imported, skipped := s.Totals()
	fmt.Fprintf(w, "\nTotal: %s imported, %s skipped in %s\n",
		humanize.Comma(imported),
		humanize.Comma(skipped),
		s.Duration().Round(time.Millisecond),
	)
}

func sortedTypes(byType map[string]int64) []string {
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
