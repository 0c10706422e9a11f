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
	// DefaultSQLServerImage is the SQL Server image used for integration tests.
	DefaultSQLServerImage = "mcr.microsoft.com/mssql/server:2022-latest"

	sqlServerPort = "1433/tcp"
	sqlServerUser = "sa"
)

// SQLServerContainer is a running SQL Server instance. Database is "master":
// the image has no hook for creating a database at startup.
type SQLServerContainer struct {
	testcontainers.Container
	Host     string
	Port     int
	Password string
	Database string
}

// NewSQLServerContainer starts a SQL Server container and waits until it
// accepts connections.
func NewSQLServerContainer(ctx context.Context, opts ...Option) (*SQLServerContainer, error) {
	o := applyOptions(options{
		image:        DefaultSQLServerImage,
		password:     "Soundtrail-Test-1",
		database:     "master",
		startTimeout: 3 * time.Minute,
	}, opts)

	req := testcontainers.ContainerRequest{
		Image:        o.image,
		ExposedPorts: []string{sqlServerPort},
		Env: map[string]string{
			"ACCEPT_EULA":       "Y",
			"MSSQL_SA_PASSWORD": o.password,
			"MSSQL_PID":         "Developer",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("SQL Server is now ready for client connections"),
			wait.ForListeningPort(sqlServerPort),
		).WithStartupTimeout(o.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start sqlserver container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get sqlserver host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, sqlServerPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get sqlserver port: %w", err)
	}

	return &SQLServerContainer{
		Container: container,
		Host:      host,
		Port:      mapped.Int(),
		Password:  o.password,
		Database:  o.database,
	}, nil
}

// DatabaseConfig returns a store configuration pointing at the container.
func (c *SQLServerContainer) DatabaseConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Driver:           config.DriverSQLServer,
		Host:             c.Host,
		Port:             c.Port,
		Name:             c.Database,
		User:             sqlServerUser,
		Password:         c.Password,
		StatementTimeout: 30 * time.Second,
	}
}
