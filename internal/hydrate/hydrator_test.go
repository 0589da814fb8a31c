// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package hydrate

import (
	"context"
	"testing"
	"time"

	"github.com/loopfeedapp/loopfeed/internal/config"
	"github.com/loopfeedapp/loopfeed/internal/database"
	"github.com/loopfeedapp/loopfeed/internal/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func insertContent(t *testing.T, db *database.DB, id, authorID int64, typ models.ContentType) {
	t.Helper()
	c := models.Content{
		ID:        id,
		AuthorID:  authorID,
		Type:      typ,
		Caption:   "caption",
		MediaURL:  "https://cdn.example/m",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := db.InsertContent(context.Background(), c); err != nil {
		t.Fatalf("InsertContent(%d) error = %v", id, err)
	}
}

func TestHydrateFullSummary(t *testing.T) {
	db := newTestDB(t)
	h := New(db)
	ctx := context.Background()

	if err := db.InsertUser(ctx, 1, "viewer"); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertUser(ctx, 2, "creator"); err != nil {
		t.Fatal(err)
	}
	insertContent(t, db, 10, 2, models.ContentTypeVideo)

	if _, err := db.CommitInteraction(ctx, 1, 10, models.InteractionLike, 1); err != nil {
		t.Fatalf("CommitInteraction() error = %v", err)
	}
	if _, err := db.AdjustCounter(ctx, 10, models.InteractionView, 7); err != nil {
		t.Fatalf("AdjustCounter() error = %v", err)
	}

	summaries, err := h.Hydrate(ctx, 1, []int64{10})
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}

	s := summaries[0]
	if s.ID != 10 || s.AuthorID != 2 || s.AuthorName != "creator" {
		t.Errorf("summary identity = %+v", s)
	}
	if s.Counters.Likes != 1 || s.Counters.Views != 7 {
		t.Errorf("counters = %+v, want likes=1 views=7", s.Counters)
	}
	if !s.IsLiked || s.IsSaved {
		t.Errorf("flags = liked %v saved %v, want liked only", s.IsLiked, s.IsSaved)
	}
	if s.Photos != nil {
		t.Errorf("video content has photos %v, want nil", s.Photos)
	}
}

func TestHydratePhotoListSortedOrAbsent(t *testing.T) {
	db := newTestDB(t)
	h := New(db)
	ctx := context.Background()

	if err := db.InsertUser(ctx, 1, "creator"); err != nil {
		t.Fatal(err)
	}
	insertContent(t, db, 1, 1, models.ContentTypePhoto)
	insertContent(t, db, 2, 1, models.ContentTypePhoto) // zero attachments

	// Inserted out of display order.
	for _, p := range []models.PhotoAttachment{
		{ContentID: 1, URL: "https://cdn.example/b", DisplayOrder: 1},
		{ContentID: 1, URL: "https://cdn.example/c", DisplayOrder: 2},
		{ContentID: 1, URL: "https://cdn.example/a", DisplayOrder: 0},
	} {
		if err := db.InsertPhotoAttachment(ctx, p); err != nil {
			t.Fatalf("InsertPhotoAttachment() error = %v", err)
		}
	}

	summaries, err := h.Hydrate(ctx, AnonymousViewer, []int64{1, 2})
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}

	byID := map[int64]models.ContentSummary{}
	for _, s := range summaries {
		byID[s.ID] = s
	}

	got := byID[1].Photos
	if len(got) != 3 {
		t.Fatalf("content 1 has %d photos, want 3", len(got))
	}
	for i, p := range got {
		if p.DisplayOrder != i {
			t.Errorf("photos[%d].DisplayOrder = %d, want %d", i, p.DisplayOrder, i)
		}
	}

	// Zero attachment rows mean an absent list, not an empty one.
	if byID[2].Photos != nil {
		t.Errorf("content 2 photos = %v, want nil", byID[2].Photos)
	}
}

func TestHydrateDropsConcurrentlyDeleted(t *testing.T) {
	db := newTestDB(t)
	h := New(db)
	ctx := context.Background()

	if err := db.InsertUser(ctx, 1, "creator"); err != nil {
		t.Fatal(err)
	}
	insertContent(t, db, 1, 1, models.ContentTypeVideo)
	insertContent(t, db, 2, 1, models.ContentTypeVideo)
	if err := db.SoftDeleteContent(ctx, 2); err != nil {
		t.Fatalf("SoftDeleteContent() error = %v", err)
	}

	summaries, err := h.Hydrate(ctx, AnonymousViewer, []int64{1, 2})
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != 1 {
		t.Errorf("summaries = %+v, want only content 1", summaries)
	}
}

func TestHydrateEmptyInput(t *testing.T) {
	h := New(newTestDB(t))

	summaries, err := h.Hydrate(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if summaries != nil {
		t.Errorf("summaries = %v, want nil", summaries)
	}
}

// countingStore wraps counts of batch calls to verify the constant
// query bound and the anonymous short-circuit.
type countingStore struct {
	contentCalls int
	authorCalls  int
	counterCalls int
	photoCalls   int
	flagCalls    int

	content map[int64]models.Content
}

func (s *countingStore) BatchLoadContent(_ context.Context, _ []int64) (map[int64]models.Content, error) {
	s.contentCalls++
	return s.content, nil
}

func (s *countingStore) BatchLoadAuthorNames(_ context.Context, _ []int64) (map[int64]string, error) {
	s.authorCalls++
	return map[int64]string{}, nil
}

func (s *countingStore) BatchLoadCounters(_ context.Context, _ []int64) (map[int64]models.InteractionCounters, error) {
	s.counterCalls++
	return map[int64]models.InteractionCounters{}, nil
}

func (s *countingStore) BatchLoadPhotoAttachments(_ context.Context, _ []int64) (map[int64][]models.PhotoAttachment, error) {
	s.photoCalls++
	return map[int64][]models.PhotoAttachment{}, nil
}

func (s *countingStore) BatchLoadViewerFlags(_ context.Context, _ int64, _ []int64) (map[int64]database.ViewerFlags, error) {
	s.flagCalls++
	return map[int64]database.ViewerFlags{}, nil
}

func TestHydrateQueryCountIsConstant(t *testing.T) {
	content := make(map[int64]models.Content)
	ids := make([]int64, 0, 50)
	for i := int64(1); i <= 50; i++ {
		content[i] = models.Content{ID: i, AuthorID: i % 7, Type: models.ContentTypeVideo}
		ids = append(ids, i)
	}
	store := &countingStore{content: content}
	h := New(store)

	if _, err := h.Hydrate(context.Background(), 1, ids); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	total := store.contentCalls + store.authorCalls + store.counterCalls + store.photoCalls + store.flagCalls
	if total > 5 {
		t.Errorf("issued %d batch queries for 50 ids, want at most 5", total)
	}
	if store.photoCalls != 0 {
		t.Errorf("photo query issued for a page without photo content")
	}
}

func TestHydrateAnonymousSkipsViewerFlags(t *testing.T) {
	store := &countingStore{content: map[int64]models.Content{
		1: {ID: 1, AuthorID: 2, Type: models.ContentTypeVideo},
	}}
	h := New(store)

	summaries, err := h.Hydrate(context.Background(), AnonymousViewer, []int64{1})
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if store.flagCalls != 0 {
		t.Errorf("viewer flags queried %d times for anonymous viewer, want 0", store.flagCalls)
	}
	if summaries[0].IsLiked || summaries[0].IsSaved {
		t.Errorf("anonymous flags = %+v, want false", summaries[0])
	}
}
