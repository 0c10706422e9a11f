// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tomtom215/soundtrail/internal/config"
	"github.com/tomtom215/soundtrail/internal/logging"
	"github.com/tomtom215/soundtrail/internal/store"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath       string
	driver           string
	dbPath           string
	host             string
	port             int
	database         string
	user             string
	password         string
	dsn              string
	statementTimeout time.Duration
	metricsFile      string
	logLevel         string
	logFormat        string
}

// flagKeys maps flag names to koanf paths. Only flags set on the command
// line override lower layers.
var flagKeys = map[string]string{
	"driver":            "database.driver",
	"db-path":           "database.path",
	"host":              "database.host",
	"port":              "database.port",
	"database":          "database.name",
	"user":              "database.user",
	"password":          "database.password",
	"dsn":               "database.dsn",
	"statement-timeout": "database.statement_timeout",
	"metrics-file":      "metrics.file",
	"log-level":         "logging.level",
	"log-format":        "logging.format",
	"source":            "source.dir",
	"technical-dir":     "source.technical_dir",
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "soundtrail",
		Short:         "Load a streaming history data export into a relational store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Config file (default: soundtrail.yaml if present, or $"+config.ConfigPathEnvVar+")")
	f.StringVar(&opts.driver, "driver", "", "Database driver: duckdb, sqlite, postgres, sqlserver")
	f.StringVar(&opts.dbPath, "db-path", "", "Database file for duckdb and sqlite")
	f.StringVar(&opts.host, "host", "", "Database host for postgres and sqlserver")
	f.IntVar(&opts.port, "port", 0, "Database port")
	f.StringVar(&opts.database, "database", "", "Database name")
	f.StringVar(&opts.user, "user", "", "Database user")
	f.StringVar(&opts.password, "password", "", "Database password")
	f.StringVar(&opts.dsn, "dsn", "", "Full connection string, overrides the connection flags")
	f.DurationVar(&opts.statementTimeout, "statement-timeout", config.DefaultStatementTimeout, "Per-statement timeout")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", "", "Log format: console or json")

	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newSchemaCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// overrides collects the explicitly set flags of cmd as koanf overrides.
func overrides(cmd *cobra.Command) config.Overrides {
	out := config.Overrides{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		switch f.Value.Type() {
		case "int":
			v, _ := cmd.Flags().GetInt(f.Name)
			out[key] = v
		case "duration":
			v, _ := cmd.Flags().GetDuration(f.Name)
			out[key] = v
		default:
			out[key] = f.Value.String()
		}
	})
	return out
}

// loadConfig layers the command's flags over file and environment
// settings and initializes logging.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath, overrides(cmd))
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	return cfg, nil
}

// openStore connects to the configured database and bootstraps the schema.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	s, err := store.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	logging.Info().
		Str("driver", cfg.Database.Driver).
		Dur("statement_timeout", cfg.Database.StatementTimeout).
		Msg("Database ready")
	return s, nil
}
