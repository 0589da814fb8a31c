// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

// Package feed composes the discovery and following feeds.
//
// Four candidate sources (following, popularity, recency, random) each
// return ordered content-id sequences. The Composer blends the
// discovery sources in a fixed priority order into one deduplicated
// page honoring the caller-echoed exclusion set. Every source runs
// under its own time budget behind a circuit breaker; a failing or slow
// source degrades to an empty contribution and never fails the page.
package feed
