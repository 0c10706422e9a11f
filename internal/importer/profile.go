// Soundtrail - Streaming History Export Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundtrail

package importer

import (
	"context"
	"time"

	"github.com/tomtom215/soundtrail/internal/export"
	"github.com/tomtom215/soundtrail/internal/logging"
	"github.com/tomtom215/soundtrail/internal/normalize"
	"github.com/tomtom215/soundtrail/internal/store"
)

const (
	profileFile = "Userdata.json"
	followFile  = "Follow.json"
)

type userdata struct {
	Username            *string `json:"username"`
	Email               *string `json:"email"`
	Country             *string `json:"country"`
	CreatedFromFacebook *bool   `json:"createdFromFacebook"`
	Birthdate           *string `json:"birthdate"`
	Gender              *string `json:"gender"`
	PostalCode          *string `json:"postalCode"`
	MobileNumber        *string `json:"mobileNumber"`
	MobileOperator      *string `json:"mobileOperator"`
	MobileBrand         *string `json:"mobileBrand"`
	CreationTime        *string `json:"creationTime"`
}

var profileColumns = []string{
	"username", "email", "country", "birthdate", "gender", "postal_code",
	"mobile_number", "mobile_operator", "mobile_brand", "created_from_facebook", "creation_time",
	"source_file",
}

// follow holds either the list form or the count form of Follow.json.
type follow struct {
	UserIsFollowing      []any `json:"userIsFollowing"`
	UserIsFollowedBy     []any `json:"userIsFollowedBy"`
	UserIsBlocking       []any `json:"userIsBlocking"`
	FollowerCount        any   `json:"followerCount"`
	FollowingUsersCount  any   `json:"followingUsersCount"`
	DismissingUsersCount any   `json:"dismissingUsersCount"`
}

var followColumns = []string{"follower_count", "following_count", "blocking_count", "source_file"}

// ImportProfile imports the singleton profile record unless the profile
// table already has a row.
func (imp *Importer) ImportProfile(ctx context.Context) (*Stats, error) {
	return importSingleton(ctx, imp, CategoryProfile, profileFile, "profile", profileRecord)
}

// ImportFollow imports the singleton follow summary unless the
// follow_summary table already has a row.
func (imp *Importer) ImportFollow(ctx context.Context) (*Stats, error) {
	return importSingleton(ctx, imp, CategoryFollow, followFile, "follow_summary", followRecord)
}

func profileRecord(ctx context.Context, tx *store.Tx, rec *userdata, source string) error {
	return tx.Insert(ctx, "profile", profileColumns,
		nullText(rec.Username, store.NameMax),
		nullText(rec.Email, store.NameMax),
		nullText(rec.Country, store.ShortMax),
		nullText(rec.Birthdate, store.ShortMax),
		nullText(rec.Gender, store.ShortMax),
		nullText(rec.PostalCode, store.ShortMax),
		nullText(rec.MobileNumber, store.ShortMax),
		nullText(rec.MobileOperator, store.NameMax),
		nullText(rec.MobileBrand, store.NameMax),
		nullBool(rec.CreatedFromFacebook),
		nullTime(normalize.ParseOptionalDate(rec.CreationTime)),
		source,
	)
}

func followRecord(ctx context.Context, tx *store.Tx, rec *follow, source string) error {
	return tx.Insert(ctx, "follow_summary", followColumns,
		nullInt(countOf(rec.FollowerCount, rec.UserIsFollowedBy)),
		nullInt(countOf(rec.FollowingUsersCount, rec.UserIsFollowing)),
		nullInt(countOf(rec.DismissingUsersCount, rec.UserIsBlocking)),
		source,
	)
}

// countOf prefers an explicit count and falls back to the list length.
func countOf(count any, list []any) *int64 {
	if n := normalize.OptionalInt64(count); n != nil {
		return n
	}
	if list == nil {
		return nil
	}
	n := int64(len(list))
	return &n
}

// importSingleton imports a one-record file guarded by a row count on
// table: when any row exists the record is skipped.
func importSingleton[T any](ctx context.Context, imp *Importer, c Category, file, table string,
	write func(ctx context.Context, tx *store.Tx, rec *T, source string) error) (*Stats, error) {
	ctx = logging.ContextWithCategory(ctx, string(c))
	stats := &Stats{Category: c, StartTime: time.Now()}
	defer func() { stats.EndTime = time.Now() }()

	path, err := export.Find(imp.sourceDir, file)
	if err != nil {
		stats.NotFound = true
		notFound(ctx, c, file)
		return stats, nil
	}

	var rec T
	if err := export.ReadObject(path, &rec); err != nil {
		return stats, err
	}
	source := sourceName(path)

	res, err := importRecords(ctx, imp, c, path, []T{rec}, func(ctx context.Context, tx *store.Tx, rec *T) (bool, error) {
		n, err := tx.Count(ctx, table)
		if err != nil {
			return false, err
		}
		if n > 0 {
			logging.Ctx(ctx).Info().Str("table", table).Int64("rows", n).Msg("Already imported, skipping")
			return false, nil
		}
		return true, write(ctx, tx, rec, source)
	})
	if err != nil {
		return stats, err
	}
	stats.add(res)
	return stats, nil
}
