// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/loopfeedapp/loopfeed/internal/logging"
	"github.com/loopfeedapp/loopfeed/internal/models"
)

// Seed sizes. Small enough to keep startup fast, large enough that the
// discovery feed has material to mix.
const (
	seedUsers            = 25
	seedContentPerUser   = 8
	seedFollowsPerUser   = 5
	seedMaxPhotosPerPost = 4
)

// SeedMockData populates an empty database with generated users, a
// follow graph, mixed video/photo content, and interaction counters.
// It is a no-op when users already exist, so restarting a seeded
// instance never duplicates data.
func (db *DB) SeedMockData(ctx context.Context) error {
	var userCount int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if userCount > 0 {
		logging.Debug().Int("users", userCount).Msg("mock data seeding skipped, database not empty")
		return nil
	}

	faker := gofakeit.New(42)
	rng := rand.New(rand.NewSource(42)) //nolint:gosec // deterministic mock data

	start := time.Now()

	for u := int64(1); u <= seedUsers; u++ {
		if err := db.InsertUser(ctx, u, faker.Username()); err != nil {
			return err
		}
	}

	for u := int64(1); u <= seedUsers; u++ {
		for f := 0; f < seedFollowsPerUser; f++ {
			followee := int64(rng.Intn(seedUsers)) + 1
			if followee == u {
				continue
			}
			if err := db.InsertFollow(ctx, u, followee); err != nil {
				return err
			}
		}
	}

	contentID := int64(0)
	for u := int64(1); u <= seedUsers; u++ {
		for c := 0; c < seedContentPerUser; c++ {
			contentID++
			contentType := models.ContentTypeVideo
			if rng.Intn(3) == 0 {
				contentType = models.ContentTypePhoto
			}

			content := models.Content{
				ID:        contentID,
				AuthorID:  u,
				Type:      contentType,
				Caption:   faker.Sentence(6),
				MediaURL:  faker.URL(),
				CreatedAt: time.Now().UTC().Add(-time.Duration(rng.Intn(30*24)) * time.Hour),
			}
			if err := db.InsertContent(ctx, content); err != nil {
				return err
			}

			if contentType == models.ContentTypePhoto {
				// Some photo posts intentionally get zero attachments to
				// exercise the absent-photo-list path.
				for p := 0; p < rng.Intn(seedMaxPhotosPerPost+1); p++ {
					attachment := models.PhotoAttachment{
						ContentID:    contentID,
						URL:          faker.URL(),
						DisplayOrder: p,
					}
					if err := db.InsertPhotoAttachment(ctx, attachment); err != nil {
						return err
					}
				}
			}

			if err := db.seedCounters(ctx, contentID, rng); err != nil {
				return err
			}
		}
	}

	logging.Info().
		Int("users", seedUsers).
		Int64("content", contentID).
		Dur("elapsed", time.Since(start)).
		Msg("mock data seeded")

	return nil
}

// seedCounters gives a content random interaction counts through the
// same atomic adjust path production uses.
func (db *DB) seedCounters(ctx context.Context, contentID int64, rng *rand.Rand) error {
	adjustments := map[models.InteractionKind]int64{
		models.InteractionView:    int64(rng.Intn(500)),
		models.InteractionLike:    int64(rng.Intn(80)),
		models.InteractionComment: int64(rng.Intn(20)),
		models.InteractionSave:    int64(rng.Intn(15)),
		models.InteractionShare:   int64(rng.Intn(10)),
	}
	for kind, delta := range adjustments {
		if delta == 0 {
			continue
		}
		if _, err := db.AdjustCounter(ctx, contentID, kind, delta); err != nil {
			return err
		}
	}
	return nil
}
