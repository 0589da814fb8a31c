// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package database

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/loopfeedapp/loopfeed/internal/models"
)

func TestCommitInteractionLike(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustInsertUser(t, db, 1, "viewer")
	mustInsertUser(t, db, 2, "author")
	mustInsertContent(t, db, 10, 2, baseTime())

	res, err := db.CommitInteraction(ctx, 1, 10, models.InteractionLike, 1)
	if err != nil {
		t.Fatalf("CommitInteraction() error = %v", err)
	}
	if !res.Applied {
		t.Error("Applied = false, want true")
	}
	if res.Counters.Likes != 1 {
		t.Errorf("likes = %d, want 1", res.Counters.Likes)
	}
}

func TestCommitInteractionDuplicateLikeIsNoop(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustInsertUser(t, db, 1, "viewer")
	mustInsertUser(t, db, 2, "author")
	mustInsertContent(t, db, 10, 2, baseTime())

	if _, err := db.CommitInteraction(ctx, 1, 10, models.InteractionLike, 1); err != nil {
		t.Fatalf("first like error = %v", err)
	}
	res, err := db.CommitInteraction(ctx, 1, 10, models.InteractionLike, 1)
	if err != nil {
		t.Fatalf("second like error = %v", err)
	}
	if res.Applied {
		t.Error("duplicate like Applied = true, want false")
	}
	if res.Counters.Likes != 1 {
		t.Errorf("likes after duplicate = %d, want 1", res.Counters.Likes)
	}
}

func TestCommitInteractionUnlike(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustInsertUser(t, db, 1, "viewer")
	mustInsertUser(t, db, 2, "author")
	mustInsertContent(t, db, 10, 2, baseTime())

	if _, err := db.CommitInteraction(ctx, 1, 10, models.InteractionLike, 1); err != nil {
		t.Fatalf("like error = %v", err)
	}
	res, err := db.CommitInteraction(ctx, 1, 10, models.InteractionLike, -1)
	if err != nil {
		t.Fatalf("unlike error = %v", err)
	}
	if !res.Applied {
		t.Error("unlike Applied = false, want true")
	}
	if res.Counters.Likes != 0 {
		t.Errorf("likes after unlike = %d, want 0", res.Counters.Likes)
	}

	// Un-liking again has no row to delete and must not touch counters.
	res, err = db.CommitInteraction(ctx, 1, 10, models.InteractionLike, -1)
	if err != nil {
		t.Fatalf("second unlike error = %v", err)
	}
	if res.Applied {
		t.Error("second unlike Applied = true, want false")
	}
	if res.Counters.Likes != 0 {
		t.Errorf("likes = %d, want 0", res.Counters.Likes)
	}
}

func TestCommitInteractionDeletedContent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustInsertUser(t, db, 1, "viewer")
	mustInsertUser(t, db, 2, "author")
	mustInsertContent(t, db, 10, 2, baseTime())
	if err := db.SoftDeleteContent(ctx, 10); err != nil {
		t.Fatalf("SoftDeleteContent() error = %v", err)
	}

	_, err := db.CommitInteraction(ctx, 1, 10, models.InteractionLike, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CommitInteraction() error = %v, want ErrNotFound", err)
	}

	// No counter change and no row behind the failed commit.
	counters, err := db.GetCounters(ctx, 10)
	if err != nil {
		t.Fatalf("GetCounters() error = %v", err)
	}
	if counters.Likes != 0 {
		t.Errorf("likes = %d, want 0 after rejected interaction", counters.Likes)
	}
}

func TestCommitInteractionMissingContent(t *testing.T) {
	db := newTestDB(t)

	_, err := db.CommitInteraction(context.Background(), 1, 999, models.InteractionView, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CommitInteraction() error = %v, want ErrNotFound", err)
	}
}

func TestCommitInteractionViewIsCounterOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustInsertUser(t, db, 1, "viewer")
	mustInsertUser(t, db, 2, "author")
	mustInsertContent(t, db, 10, 2, baseTime())

	// Repeated views all count; views carry no per-viewer row.
	for i := 0; i < 3; i++ {
		res, err := db.CommitInteraction(ctx, 1, 10, models.InteractionView, 1)
		if err != nil {
			t.Fatalf("view %d error = %v", i, err)
		}
		if !res.Applied {
			t.Errorf("view %d Applied = false, want true", i)
		}
	}

	counters, err := db.GetCounters(ctx, 10)
	if err != nil {
		t.Fatalf("GetCounters() error = %v", err)
	}
	if counters.Views != 3 {
		t.Errorf("views = %d, want 3", counters.Views)
	}

	flags, err := db.BatchLoadViewerFlags(ctx, 1, []int64{10})
	if err != nil {
		t.Fatalf("BatchLoadViewerFlags() error = %v", err)
	}
	if flags[10].Liked || flags[10].Saved {
		t.Errorf("flags = %+v, want none from views", flags[10])
	}
}

func TestAdjustCounterNeverNegative(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustInsertUser(t, db, 1, "author")
	mustInsertContent(t, db, 1, 1, baseTime())

	applied, err := db.AdjustCounter(ctx, 1, models.InteractionLike, -1)
	if err != nil {
		t.Fatalf("AdjustCounter() error = %v", err)
	}
	if applied {
		t.Error("decrement below zero Applied = true, want false")
	}

	counters, err := db.GetCounters(ctx, 1)
	if err != nil {
		t.Fatalf("GetCounters() error = %v", err)
	}
	if counters.Likes != 0 {
		t.Errorf("likes = %d, want 0", counters.Likes)
	}
}

func TestAdjustCounterMissingRowIsNoop(t *testing.T) {
	db := newTestDB(t)

	applied, err := db.AdjustCounter(context.Background(), 42, models.InteractionView, 1)
	if err != nil {
		t.Fatalf("AdjustCounter() error = %v", err)
	}
	if applied {
		t.Error("adjust on missing content Applied = true, want false")
	}
}

func TestAdjustCounterConcurrentNoLostUpdates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustInsertUser(t, db, 1, "author")
	mustInsertContent(t, db, 1, 1, baseTime())
	mustAdjust(t, db, 1, models.InteractionLike, 5) // initial

	const k = 32
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := db.AdjustCounter(ctx, 1, models.InteractionLike, 1); err != nil {
				t.Errorf("concurrent AdjustCounter() error = %v", err)
			}
		}()
	}
	wg.Wait()

	counters, err := db.GetCounters(ctx, 1)
	if err != nil {
		t.Fatalf("GetCounters() error = %v", err)
	}
	if counters.Likes != 5+k {
		t.Errorf("likes = %d, want %d (no lost updates)", counters.Likes, 5+k)
	}
}

func TestUpsertSignalIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ev := models.NewDomainEvent(1, 10, models.InteractionLike)
	if err := db.UpsertSignal(ctx, ev); err != nil {
		t.Fatalf("first UpsertSignal() error = %v", err)
	}

	// Redelivery of the same logical interaction, different event id.
	redelivered := models.NewDomainEvent(1, 10, models.InteractionLike)
	if err := db.UpsertSignal(ctx, redelivered); err != nil {
		t.Fatalf("second UpsertSignal() error = %v", err)
	}

	n, err := db.CountSignals(ctx, 10)
	if err != nil {
		t.Fatalf("CountSignals() error = %v", err)
	}
	if n != 1 {
		t.Errorf("signal rows = %d, want 1", n)
	}

	// A different kind for the same pair is a distinct signal.
	if err := db.UpsertSignal(ctx, models.NewDomainEvent(1, 10, models.InteractionSave)); err != nil {
		t.Fatalf("save UpsertSignal() error = %v", err)
	}
	n, err = db.CountSignals(ctx, 10)
	if err != nil {
		t.Fatalf("CountSignals() error = %v", err)
	}
	if n != 2 {
		t.Errorf("signal rows = %d, want 2", n)
	}
}

func TestSeedMockDataIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.SeedMockData(ctx); err != nil {
		t.Fatalf("SeedMockData() error = %v", err)
	}
	ids, err := db.FindRecent(ctx, 5, nil)
	if err != nil {
		t.Fatalf("FindRecent() error = %v", err)
	}
	if len(ids) == 0 {
		t.Fatal("expected seeded content")
	}

	// Second run must be a no-op.
	if err := db.SeedMockData(ctx); err != nil {
		t.Fatalf("second SeedMockData() error = %v", err)
	}
	again, err := db.FindRecent(ctx, 1000, nil)
	if err != nil {
		t.Fatalf("FindRecent() error = %v", err)
	}
	if len(again) != seedUsers*seedContentPerUser {
		t.Errorf("content after reseed = %d, want %d", len(again), seedUsers*seedContentPerUser)
	}
}
