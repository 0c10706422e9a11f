// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tomtom215/soundtrail/internal/config"
)

const (
	// DefaultPostgresImage is the PostgreSQL image used for integration tests.
	DefaultPostgresImage = "postgres:16-alpine"

	postgresPort = "5432/tcp"
	postgresUser = "soundtrail"
)

// PostgresContainer is a running PostgreSQL server.
type PostgresContainer struct {
	testcontainers.Container
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// NewPostgresContainer starts a PostgreSQL container and waits until it
// accepts connections.
func NewPostgresContainer(ctx context.Context, opts ...Option) (*PostgresContainer, error) {
	o := applyOptions(options{
		image:        DefaultPostgresImage,
		password:     "soundtrail-test",
		database:     "listening",
		startTimeout: 60 * time.Second,
	}, opts)

	req := testcontainers.ContainerRequest{
		Image:        o.image,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": o.password,
			"POSTGRES_DB":       o.database,
		},
		// The server restarts once after initdb, so the message appears twice.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(postgresPort),
		).WithStartupTimeout(o.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get postgres host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get postgres port: %w", err)
	}

	return &PostgresContainer{
		Container: container,
		Host:      host,
		Port:      mapped.Int(),
		User:      postgresUser,
		Password:  o.password,
		Database:  o.database,
	}, nil
}

// DatabaseConfig returns a store configuration pointing at the container.
func (c *PostgresContainer) DatabaseConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Driver:           config.DriverPostgres,
		Host:             c.Host,
		Port:             c.Port,
		Name:             c.Database,
		User:             c.User,
		Password:         c.Password,
		SSLMode:          "disable",
		StatementTimeout: 30 * time.Second,
	}
}
