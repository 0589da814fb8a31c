// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package feed

import (
	"context"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/loopfeedapp/loopfeed/internal/config"
	"github.com/loopfeedapp/loopfeed/internal/logging"
)

// breakerSource wraps a Source with a circuit breaker so a persistently
// failing source stops being queried for the cooldown period. The
// breaker uses real time; an open breaker surfaces as an error, which
// the composer degrades to an empty contribution like any other source
// failure.
type breakerSource struct {
	inner Source
	cb    *gobreaker.CircuitBreaker[[]int64]
}

// withBreaker wraps src with a circuit breaker configured from cfg.
func withBreaker(src Source, cfg *config.FeedConfig) Source {
	threshold := cfg.BreakerFailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	cb := gobreaker.NewCircuitBreaker[[]int64](gobreaker.Settings{
		Name:    src.Name(),
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("source", name).
				Str("from", breakerStateString(from)).
				Str("to", breakerStateString(to)).
				Msg("candidate source breaker state change")
		},
	})

	return &breakerSource{inner: src, cb: cb}
}

func (s *breakerSource) Name() string { return s.inner.Name() }

func (s *breakerSource) Fetch(ctx context.Context, viewerID int64, limit int, exclude []int64) ([]int64, error) {
	return s.cb.Execute(func() ([]int64, error) {
		return s.inner.Fetch(ctx, viewerID, limit, exclude)
	})
}

func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
