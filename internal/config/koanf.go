// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"soundtrail.yaml",
	"soundtrail.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "SOUNDTRAIL_CONFIG"

// DefaultStatementTimeout bounds every single SQL statement.
const DefaultStatementTimeout = 30 * time.Second

// DefaultTechnicalDir is the technical-log folder name inside an export archive.
const DefaultTechnicalDir = "Spotify Technical Log Information"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Dir:          "",
			TechnicalDir: DefaultTechnicalDir,
		},
		Database: DatabaseConfig{
			Driver:           DriverDuckDB,
			Path:             "soundtrail.duckdb",
			Port:             0, // 0 = driver default (5432 / 1433)
			SSLMode:          "",
			StatementTimeout: DefaultStatementTimeout,
			MaxMemory:        "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
	}
}

// Overrides are koanf paths set from command-line flags, applied last.
type Overrides map[string]interface{}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config file: configPath if non-empty, else SOUNDTRAIL_CONFIG, else DefaultConfigPaths
//  3. Environment variables
//  4. Overrides (command-line flags)
func Load(configPath string, overrides Overrides) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath == "" {
		configPath = findConfigFile()
	} else if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for path, val := range overrides {
		if err := k.Set(path, val); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	"soundtrail_source_dir":    "source.dir",
	"soundtrail_technical_dir": "source.technical_dir",

	"soundtrail_db_driver":         "database.driver",
	"soundtrail_db_path":           "database.path",
	"soundtrail_db_host":           "database.host",
	"soundtrail_db_port":           "database.port",
	"soundtrail_db_name":           "database.name",
	"soundtrail_db_user":           "database.user",
	"soundtrail_db_password":       "database.password",
	"soundtrail_db_sslmode":        "database.sslmode",
	"soundtrail_db_dsn":            "database.dsn",
	"soundtrail_db_max_memory":     "database.max_memory",
	"soundtrail_statement_timeout": "database.statement_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"soundtrail_metrics_file": "metrics.file",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped so unrelated environment
// variables never leak into the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
