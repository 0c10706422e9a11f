// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	// runIDKey is the context key for the import run identifier.
	runIDKey contextKey = "run_id"

	// categoryKey is the context key for the importer category (streaming, library, ...).
	categoryKey contextKey = "category"
)

// NewRunID creates a new import run identifier.
func NewRunID() uuid.UUID {
	return uuid.New()
}

// ContextWithRunID returns a new context carrying the given run ID.
func ContextWithRunID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext retrieves the run ID from context.
// Returns uuid.Nil if not present.
func RunIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(runIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// ContextWithCategory returns a new context carrying the importer category.
func ContextWithCategory(ctx context.Context, category string) context.Context {
	return context.WithValue(ctx, categoryKey, category)
}

// CategoryFromContext retrieves the importer category from context.
func CategoryFromContext(ctx context.Context) string {
	if c, ok := ctx.Value(categoryKey).(string); ok {
		return c
	}
	return ""
}

// Ctx returns a logger with run_id and category automatically added.
//
//	logging.Ctx(ctx).Info().Str("file", path).Msg("Importing file")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := Logger().With()

	if id := RunIDFromContext(ctx); id != uuid.Nil {
		logCtx = logCtx.Str("run_id", id.String())
	}
	if c := CategoryFromContext(ctx); c != "" {
		logCtx = logCtx.Str("category", c)
	}

	l := logCtx.Logger()
	return &l
}
