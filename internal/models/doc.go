// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

// Package models defines the shared domain types used across the feed,
// hydration, interaction, and event packages.
//
// The types here are plain data carriers with no behavior beyond small
// constructors and validation helpers. Persistence and query logic lives
// in internal/database; composition logic lives in internal/feed.
package models
