// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

// Package hydrate enriches bare content ids into display-ready
// summaries using a constant number of batch queries, independent of
// how many ids are requested.
package hydrate

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/loopfeedapp/loopfeed/internal/database"
	"github.com/loopfeedapp/loopfeed/internal/logging"
	"github.com/loopfeedapp/loopfeed/internal/metrics"
	"github.com/loopfeedapp/loopfeed/internal/models"
)

// AnonymousViewer marks an unauthenticated request. Viewer flags
// short-circuit to false without querying.
const AnonymousViewer int64 = 0

// Store is the batch read surface hydration needs. All methods key
// their single query by an IN (...) list and omit missing ids from the
// returned map.
type Store interface {
	BatchLoadContent(ctx context.Context, ids []int64) (map[int64]models.Content, error)
	BatchLoadAuthorNames(ctx context.Context, authorIDs []int64) (map[int64]string, error)
	BatchLoadCounters(ctx context.Context, ids []int64) (map[int64]models.InteractionCounters, error)
	BatchLoadPhotoAttachments(ctx context.Context, ids []int64) (map[int64][]models.PhotoAttachment, error)
	BatchLoadViewerFlags(ctx context.Context, viewerID int64, ids []int64) (map[int64]database.ViewerFlags, error)
}

// Hydrator joins batch-loaded rows into ContentSummary values.
type Hydrator struct {
	store  Store
	logger zerolog.Logger
}

// New creates a Hydrator over store.
func New(store Store) *Hydrator {
	return &Hydrator{
		store:  store,
		logger: logging.With().Str("component", "hydrate").Logger(),
	}
}

// Hydrate loads summaries for ids on behalf of viewerID, issuing at
// most five batch queries regardless of len(ids).
//
// An id deleted between selection and hydration is silently dropped, so
// the output may be shorter than the input. Output follows the order of
// ids for the ids that survive; a photo content with zero attachment
// rows keeps a nil Photos list, distinct from an empty one.
func (h *Hydrator) Hydrate(ctx context.Context, viewerID int64, ids []int64) ([]models.ContentSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	start := time.Now()

	content, err := h.store.BatchLoadContent(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Photo attachments are only fetched for photo-type content; author
	// names only for authors actually present.
	authorIDs := make([]int64, 0, len(content))
	photoIDs := make([]int64, 0, len(content))
	seenAuthors := make(map[int64]struct{}, len(content))
	for _, c := range content {
		if _, dup := seenAuthors[c.AuthorID]; !dup {
			seenAuthors[c.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, c.AuthorID)
		}
		if c.Type == models.ContentTypePhoto {
			photoIDs = append(photoIDs, c.ID)
		}
	}

	authors, err := h.store.BatchLoadAuthorNames(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	counters, err := h.store.BatchLoadCounters(ctx, ids)
	if err != nil {
		return nil, err
	}

	var photos map[int64][]models.PhotoAttachment
	if len(photoIDs) > 0 {
		photos, err = h.store.BatchLoadPhotoAttachments(ctx, photoIDs)
		if err != nil {
			return nil, err
		}
	}

	var flags map[int64]database.ViewerFlags
	if viewerID != AnonymousViewer {
		flags, err = h.store.BatchLoadViewerFlags(ctx, viewerID, ids)
		if err != nil {
			return nil, err
		}
	}

	summaries := make([]models.ContentSummary, 0, len(content))
	for _, id := range ids {
		c, ok := content[id]
		if !ok {
			continue // deleted since selection
		}
		summaries = append(summaries, models.ContentSummary{
			ID:         c.ID,
			AuthorID:   c.AuthorID,
			AuthorName: authors[c.AuthorID],
			Type:       c.Type,
			Caption:    c.Caption,
			MediaURL:   c.MediaURL,
			CreatedAt:  c.CreatedAt,
			Counters:   counters[id],
			IsLiked:    flags[id].Liked,
			IsSaved:    flags[id].Saved,
			Photos:     photos[id],
		})
	}

	if dropped := len(ids) - len(summaries); dropped > 0 {
		metrics.HydrationPartialDrops.Add(float64(dropped))
		h.logger.Debug().
			Int("requested", len(ids)).
			Int("dropped", dropped).
			Msg("ids vanished between selection and hydration")
	}
	metrics.HydrationDuration.Observe(time.Since(start).Seconds())

	return summaries, nil
}
