// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/soundtrail/internal/importer"
	"github.com/tomtom215/soundtrail/internal/logging"
	"github.com/tomtom215/soundtrail/internal/metrics"
)

func newImportCmd(opts *globalOptions) *cobra.Command {
	var (
		source       string
		technicalDir string
	)

	names := make([]string, 0, len(importer.Categories())+1)
	for _, c := range importer.Categories() {
		names = append(names, string(c))
	}
	names = append(names, importer.CategoryAll)

	cmd := &cobra.Command{
		Use:       "import <" + strings.Join(names, "|") + ">",
		Short:     "Import one category of the export, or all of them",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := importer.ParseCategory(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			// The source must exist before any storage connection is made.
			if err := importer.CheckSource(cfg.Source.Dir); err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := s.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing database")
				}
			}()

			imp := importer.New(s, cfg.Source)
			summary, runErr := imp.Run(ctx, categories)
			if summary != nil {
				printSummary(cmd.OutOrStdout(), summary)
			}

			if cfg.Metrics.File != "" {
				if err := metrics.WriteTextfile(cfg.Metrics.File); err != nil {
					logging.Warn().Err(err).Str("file", cfg.Metrics.File).Msg("Failed to write metrics textfile")
				}
			}

			if runErr != nil {
				return fmt.Errorf("import failed: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Directory holding the unpacked export JSON files")
	cmd.Flags().StringVar(&technicalDir, "technical-dir", "", "Technical log directory, relative to --source unless absolute")
	return cmd
}
