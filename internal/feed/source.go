// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package feed

import (
	"context"
	"sync"
	"time"

	"github.com/loopfeedapp/loopfeed/internal/cache"
	"github.com/loopfeedapp/loopfeed/internal/config"
)

// Store is the read surface the feed engine needs from content storage.
// Every method applies soft-delete filtering internally and returns an
// empty slice rather than an error for "nothing found".
type Store interface {
	FollowedAuthorIDs(ctx context.Context, viewerID int64) ([]int64, error)
	FindNonDeletedByAuthors(ctx context.Context, authorIDs []int64, limit, offset int, exclude []int64) ([]int64, error)
	FindPopularityRanked(ctx context.Context, weights config.PopularityWeights, limit int, exclude []int64) ([]int64, error)
	FindRecent(ctx context.Context, limit int, exclude []int64) ([]int64, error)
	FindRandomSample(ctx context.Context, limit int, exclude []int64) ([]int64, error)
}

// Source is one candidate selection policy. Fetch returns at most limit
// eligible content ids, none of which appear in exclude.
type Source interface {
	Name() string
	Fetch(ctx context.Context, viewerID int64, limit int, exclude []int64) ([]int64, error)
}

// FollowingSource returns content by authors the viewer follows,
// newest first, with unbounded lookback.
type FollowingSource struct {
	store Store
}

// NewFollowingSource creates the followed-authors source.
func NewFollowingSource(store Store) *FollowingSource {
	return &FollowingSource{store: store}
}

func (s *FollowingSource) Name() string { return "following" }

func (s *FollowingSource) Fetch(ctx context.Context, viewerID int64, limit int, exclude []int64) ([]int64, error) {
	return s.FetchPage(ctx, viewerID, limit, 0, exclude)
}

// FetchPage is the offset-paginated form used by the following feed,
// which cursors by offset instead of an exclusion set.
func (s *FollowingSource) FetchPage(ctx context.Context, viewerID int64, limit, offset int, exclude []int64) ([]int64, error) {
	authors, err := s.store.FollowedAuthorIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(authors) == 0 {
		return nil, nil
	}
	return s.store.FindNonDeletedByAuthors(ctx, authors, limit, offset, exclude)
}

// popularityCacheDepth is how many top-ranked ids the popularity cache
// holds. Deep enough that a cached page survives a realistic exclusion
// set; past it the source falls through to a direct query.
const popularityCacheDepth = 512

// PopularitySource ranks content by the weighted interaction score.
// When a TTL is configured it caches the unfiltered top ranking and
// applies exclusions in memory, so the ranking query runs at most once
// per TTL regardless of request volume.
type PopularitySource struct {
	store   Store
	weights config.PopularityWeights
	ttl     time.Duration

	mu      sync.Mutex
	ranking *cache.TTL[[]int64]
}

// NewPopularitySource creates the popularity source. A zero ttl
// disables the cache.
func NewPopularitySource(store Store, weights config.PopularityWeights, ttl time.Duration) *PopularitySource {
	return &PopularitySource{
		store:   store,
		weights: weights,
		ttl:     ttl,
		ranking: cache.NewTTL[[]int64](ttl),
	}
}

func (s *PopularitySource) Name() string { return "popularity" }

func (s *PopularitySource) Fetch(ctx context.Context, _ int64, limit int, exclude []int64) ([]int64, error) {
	if s.ttl <= 0 {
		return s.store.FindPopularityRanked(ctx, s.weights, limit, exclude)
	}

	ranked, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}

	excluded := idSet(exclude)
	out := make([]int64, 0, limit)
	for _, id := range ranked {
		if _, skip := excluded[id]; skip {
			continue
		}
		out = append(out, id)
		if len(out) == limit {
			return out, nil
		}
	}

	// The cached window was exhausted by exclusions. Fall through to a
	// direct query so heavy scrollers still get full pages.
	if len(ranked) == popularityCacheDepth {
		return s.store.FindPopularityRanked(ctx, s.weights, limit, exclude)
	}
	return out, nil
}

// ranked returns the cached top ranking, refreshing it when stale. The
// mutex serializes refreshes so a cold cache triggers one query, not a
// stampede.
func (s *PopularitySource) ranked(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.ranking.Get(); ok {
		return cached, nil
	}

	ranked, err := s.store.FindPopularityRanked(ctx, s.weights, popularityCacheDepth, nil)
	if err != nil {
		return nil, err
	}
	if ranked == nil {
		ranked = []int64{}
	}
	s.ranking.Set(ranked)
	return ranked, nil
}

// RecencySource returns the newest eligible content.
type RecencySource struct {
	store Store
}

// NewRecencySource creates the recency source.
func NewRecencySource(store Store) *RecencySource {
	return &RecencySource{store: store}
}

func (s *RecencySource) Name() string { return "recency" }

func (s *RecencySource) Fetch(ctx context.Context, _ int64, limit int, exclude []int64) ([]int64, error) {
	return s.store.FindRecent(ctx, limit, exclude)
}

// RandomSource returns a uniform sample of eligible content. Output
// order is not stable across identical calls.
type RandomSource struct {
	store Store
}

// NewRandomSource creates the random source.
func NewRandomSource(store Store) *RandomSource {
	return &RandomSource{store: store}
}

func (s *RandomSource) Name() string { return "random" }

func (s *RandomSource) Fetch(ctx context.Context, _ int64, limit int, exclude []int64) ([]int64, error) {
	return s.store.FindRandomSample(ctx, limit, exclude)
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
