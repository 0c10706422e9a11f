// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

// Package resolver maps dimension natural keys (artist name, album name
// plus artist, track URI, ...) to surrogate ids, creating dimension rows
// on first sight.
//
// A Resolver holds a per-kind cache for the lifetime of one import run.
// Lookups and inserts go through the caller's transaction, so rows the
// resolver creates commit or roll back with the file that needed them.
// Entries added since the last Commit are journaled; Discard drops them
// after a rollback so the cache never returns an id whose row was undone.
//
// Resolution order within a kind:
//  1. cache hit on (kind, key[, parent for Album])
//  2. SELECT by exact natural key (Album: exact parent, IS NULL when absent)
//  3. INSERT ... RETURNING id
//
// A blank key short-circuits to an invalid sql.NullInt64 with no storage
// round-trip. A child with an unresolved parent is created with a NULL
// parent reference and is never back-patched.
package resolver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/tomtom215/soundtrail/internal/normalize"
	"github.com/tomtom215/soundtrail/internal/store"
)

type cacheKey struct {
	key    string
	parent sql.NullInt64
}

type journalEntry struct {
	kind Kind
	key  cacheKey
}

// KindStats counts cache behaviour for one kind.
type KindStats struct {
	Hits    int64
	Lookups int64
	Inserts int64
}

// Resolver resolves natural keys to surrogate ids. The zero value is not
// usable; call New.
type Resolver struct {
	mu      sync.Mutex
	cache   [numKinds]map[cacheKey]int64
	journal []journalEntry
	stats   [numKinds]KindStats
}

// New creates a Resolver with empty caches.
func New() *Resolver {
	r := &Resolver{}
	for k := range r.cache {
		r.cache[k] = make(map[cacheKey]int64)
	}
	return r
}

// Resolve returns the surrogate id for naturalKey of the given kind,
// creating the dimension row when it does not exist yet.
//
// parent is the owning dimension's id for Album, Track, PodcastEpisode and
// AudiobookChapter; it is ignored for root kinds. label fills the
// descriptive column (track name, episode name, chapter title) on insert
// only.
func (r *Resolver) Resolve(ctx context.Context, q store.Querier, kind Kind, naturalKey string,
	parent sql.NullInt64, label string) (sql.NullInt64, error) {
	if kind < 0 || kind >= numKinds {
		return sql.NullInt64{}, fmt.Errorf("resolve: unknown dimension kind %d", kind)
	}
	if strings.TrimSpace(naturalKey) == "" {
		return sql.NullInt64{}, nil
	}

	ks := &kinds[kind]
	key := normalize.Truncate(naturalKey, ks.keyMax)
	if ks.parentCol == "" {
		parent = sql.NullInt64{}
	}

	ck := cacheKey{key: key}
	if ks.parentInKey {
		ck.parent = parent
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.cache[kind][ck]; ok {
		r.stats[kind].Hits++
		return sql.NullInt64{Int64: id, Valid: true}, nil
	}

	id, found, err := r.lookup(ctx, q, kind, key, parent)
	if err != nil {
		return sql.NullInt64{}, err
	}
	if !found {
		id, err = r.insert(ctx, q, ks, key, parent, label)
		if err != nil {
			return sql.NullInt64{}, err
		}
		r.stats[kind].Inserts++
	}

	r.cache[kind][ck] = id
	r.journal = append(r.journal, journalEntry{kind: kind, key: ck})
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

// lookup must be called with r.mu held.
func (r *Resolver) lookup(ctx context.Context, q store.Querier, kind Kind, key string,
	parent sql.NullInt64) (int64, bool, error) {
	ks := &kinds[kind]
	r.stats[kind].Lookups++

	query := fmt.Sprintf("SELECT id FROM %s WHERE %s = ?", ks.table, ks.keyCol)
	args := []any{key}
	if ks.parentInKey {
		if parent.Valid {
			query += fmt.Sprintf(" AND %s = ?", ks.parentCol)
			args = append(args, parent.Int64)
		} else {
			query += fmt.Sprintf(" AND %s IS NULL", ks.parentCol)
		}
	}

	var id int64
	found, err := q.Get(ctx, &id, query, args...)
	if err != nil {
		return 0, false, fmt.Errorf("look up %s %q: %w", ks.name, key, err)
	}
	return id, found, nil
}

// insert must be called with r.mu held.
func (*Resolver) insert(ctx context.Context, q store.Querier, ks *kindSpec, key string,
	parent sql.NullInt64, label string) (int64, error) {
	cols := []string{ks.keyCol}
	args := []any{key}

	if ks.parentCol != "" {
		cols = append(cols, ks.parentCol)
		args = append(args, parent)
	}
	if ks.labelCol != "" {
		label = normalize.Truncate(label, ks.labelMax)
		cols = append(cols, ks.labelCol)
		args = append(args, sql.NullString{String: label, Valid: label != ""})
	}

	id, err := q.InsertReturningID(ctx, ks.table, cols, args...)
	if err != nil {
		return 0, fmt.Errorf("create %s %q: %w", ks.name, key, err)
	}
	return id, nil
}

// Commit keeps every entry cached since the previous Commit or Discard.
// Call it after the surrounding transaction commits.
func (r *Resolver) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journal = r.journal[:0]
}

// Discard evicts every entry cached since the previous Commit or Discard.
// Call it after the surrounding transaction rolls back.
func (r *Resolver) Discard() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.journal)
	for _, e := range r.journal {
		delete(r.cache[e.kind], e.key)
	}
	r.journal = r.journal[:0]
	return n
}

// Len returns the number of cached entries for kind.
func (r *Resolver) Len(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if kind < 0 || kind >= numKinds {
		return 0
	}
	return len(r.cache[kind])
}

// Stats returns a snapshot of per-kind counters keyed by kind name.
func (r *Resolver) Stats() map[string]KindStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]KindStats, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		out[k.String()] = r.stats[k]
	}
	return out
}
