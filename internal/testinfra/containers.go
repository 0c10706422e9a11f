// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

//go:build integration

package testinfra

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// SkipIfNoDocker skips the test if Docker is not available.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if !IsDockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

// IsDockerAvailable checks if Docker daemon is running and accessible.
func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", "info")
	return cmd.Run() == nil
}

// CleanupContainer terminates container, logging instead of failing.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container != nil {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	}
}

// options configures a database container.
type options struct {
	image        string
	password     string
	database     string
	startTimeout time.Duration
}

// Option configures a database container.
type Option func(*options)

// WithImage sets a custom Docker image.
func WithImage(image string) Option {
	return func(o *options) {
		o.image = image
	}
}

// WithDatabase sets the database name created in the container.
func WithDatabase(name string) Option {
	return func(o *options) {
		o.database = name
	}
}

// WithStartTimeout sets the timeout for waiting for the server to start.
func WithStartTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.startTimeout = timeout
	}
}

func applyOptions(defaults options, opts []Option) options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}
