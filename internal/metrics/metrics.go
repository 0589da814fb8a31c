// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

// Package metrics provides Prometheus instrumentation for the feed
// composer, hydrator, interaction pipeline, and event bus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Feed composition metrics

	FeedCompositionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_composition_duration_seconds",
			Help:    "Duration of one feed composition call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"feed"}, // discovery, following
	)

	FeedSourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_source_failures_total",
			Help: "Candidate source errors and timeouts, degraded to empty contributions",
		},
		[]string{"source", "reason"}, // reason: error, timeout, breaker_open
	)

	FeedPageSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_page_size",
			Help:    "Number of content ids returned per composed page",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"feed"},
	)

	// Hydration metrics

	HydrationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hydration_duration_seconds",
			Help:    "Duration of one batch hydration call",
			Buckets: prometheus.DefBuckets,
		},
	)

	HydrationPartialDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hydration_partial_drops_total",
			Help: "Requested ids silently dropped because the content vanished between selection and hydration",
		},
	)

	// Interaction pipeline metrics

	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_total",
			Help: "Recorded interactions by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: ok, not_found, error
	)

	CounterAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counter_adjustments_total",
			Help: "Atomic counter adjustments by kind and effect",
		},
		[]string{"kind", "effect"}, // effect: applied, noop
	)

	// Event bus metrics

	EventPublishOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_publish_outcomes_total",
			Help: "Event bus publish outcomes",
		},
		[]string{"outcome"},
	)

	SubscriberFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_subscriber_failures_total",
			Help: "Subscriber processing failures, contained inside the subscriber",
		},
		[]string{"subscriber"},
	)

	SignalUpserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signal_upserts_total",
			Help: "Idempotent collaborative-filtering signal upserts",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
