// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package feed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/loopfeedapp/loopfeed/internal/config"
	"github.com/loopfeedapp/loopfeed/internal/logging"
	"github.com/loopfeedapp/loopfeed/internal/metrics"
)

// Composer blends candidate sources into deduplicated feed pages.
//
// Discovery pages mix the popularity, recency, and random sources in
// that fixed priority order. Pagination is stateless: the caller echoes
// back the exclusion set returned with the previous page. The following
// feed bypasses mixing entirely and cursors by offset.
type Composer struct {
	discovery []Source
	following *FollowingSource
	cfg       *config.FeedConfig
	logger    zerolog.Logger
}

// NewComposer builds a Composer over store. Each discovery source is
// wrapped with its own circuit breaker.
func NewComposer(store Store, cfg *config.FeedConfig) *Composer {
	discovery := []Source{
		withBreaker(NewPopularitySource(store, cfg.PopularityWeights, cfg.PopularityCacheTTL), cfg),
		withBreaker(NewRecencySource(store), cfg),
		withBreaker(NewRandomSource(store), cfg),
	}
	return &Composer{
		discovery: discovery,
		following: NewFollowingSource(store),
		cfg:       cfg,
		logger:    logging.With().Str("component", "feed").Logger(),
	}
}

// NormalizeLimit clamps a caller-supplied limit to the configured
// bounds. Zero or negative means "use the default".
func (c *Composer) NormalizeLimit(limit int) int {
	if limit <= 0 {
		return c.cfg.DefaultPageSize
	}
	if limit > c.cfg.MaxPageSize {
		return c.cfg.MaxPageSize
	}
	return limit
}

// ComposeDiscoveryFeed assembles one discovery page. The returned page
// never contains an id from excludeIDs and has no internal duplicates.
// The second return value is the updated exclusion set the caller must
// echo on the next page request. Source failures degrade to empty
// contributions; an empty corpus yields an empty page, not an error.
func (c *Composer) ComposeDiscoveryFeed(ctx context.Context, viewerID int64, excludeIDs []int64, limit int) ([]int64, []int64) {
	start := time.Now()
	limit = c.NormalizeLimit(limit)

	selected := make([]int64, 0, limit)
	seen := idSet(excludeIDs)

	for _, src := range c.discovery {
		remaining := limit - len(selected)
		if remaining == 0 {
			break
		}

		exclude := make([]int64, 0, len(excludeIDs)+len(selected))
		exclude = append(exclude, excludeIDs...)
		exclude = append(exclude, selected...)

		for _, id := range c.fetchFrom(ctx, src, viewerID, remaining, exclude) {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			selected = append(selected, id)
			if len(selected) == limit {
				break
			}
		}
	}

	newExclude := make([]int64, 0, len(excludeIDs)+len(selected))
	newExclude = append(newExclude, excludeIDs...)
	newExclude = append(newExclude, selected...)

	metrics.FeedCompositionDuration.WithLabelValues("discovery").Observe(time.Since(start).Seconds())
	metrics.FeedPageSize.WithLabelValues("discovery").Observe(float64(len(selected)))

	return selected, newExclude
}

// ComposeFollowingFeed returns one page of content by the viewer's
// followed authors, newest first, cursored by offset. A viewer who
// follows nobody gets an empty page.
func (c *Composer) ComposeFollowingFeed(ctx context.Context, viewerID int64, cursor, limit int) ([]int64, error) {
	start := time.Now()
	limit = c.NormalizeLimit(limit)
	if cursor < 0 {
		cursor = 0
	}

	ids, err := c.following.FetchPage(ctx, viewerID, limit, cursor, nil)
	if err != nil {
		return nil, err
	}

	metrics.FeedCompositionDuration.WithLabelValues("following").Observe(time.Since(start).Seconds())
	metrics.FeedPageSize.WithLabelValues("following").Observe(float64(len(ids)))

	return ids, nil
}

// fetchFrom queries one source under its time budget. Any failure is
// logged, counted, and degraded to an empty contribution.
func (c *Composer) fetchFrom(ctx context.Context, src Source, viewerID int64, limit int, exclude []int64) []int64 {
	srcCtx, cancel := context.WithTimeout(ctx, c.cfg.SourceTimeout)
	defer cancel()

	ids, err := src.Fetch(srcCtx, viewerID, limit, exclude)
	if err != nil {
		reason := "error"
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			reason = "timeout"
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			reason = "breaker_open"
		}
		metrics.FeedSourceFailures.WithLabelValues(src.Name(), reason).Inc()
		c.logger.Warn().
			Err(err).
			Str("source", src.Name()).
			Str("reason", reason).
			Msg("candidate source degraded to empty contribution")
		return nil
	}
	return ids
}
