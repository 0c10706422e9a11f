// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/soundtrail/internal/store"
)

func newSchemaCmd(opts *globalOptions) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the tables and indexes in the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			if printOnly {
				d, err := store.DialectFor(cfg.Database.Driver)
				if err != nil {
					return err
				}
				for _, stmt := range d.DDL() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s;\n\n", stmt)
				}
				return nil
			}

			s, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			fmt.Fprintf(cmd.OutOrStdout(), "Schema ready (%s)\n", cfg.Database.Driver)
			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the DDL for the configured driver instead of applying it")
	return cmd
}
