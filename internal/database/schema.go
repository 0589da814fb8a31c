// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates all tables and indexes if they do not exist.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range schemaQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("execute schema query: %s: %w", query, err)
		}
	}
	return nil
}

func schemaQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS follows (
			follower_id BIGINT NOT NULL,
			followee_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (follower_id, followee_id)
		)`,

		`CREATE TABLE IF NOT EXISTS content (
			id BIGINT PRIMARY KEY,
			author_id BIGINT NOT NULL,
			type TEXT NOT NULL,
			caption TEXT,
			media_url TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS photo_attachments (
			content_id BIGINT NOT NULL,
			url TEXT NOT NULL,
			display_order INTEGER NOT NULL,
			PRIMARY KEY (content_id, display_order)
		)`,

		// One counters row per content, created at content-creation time.
		// Mutated only through the atomic adjust statement.
		`CREATE TABLE IF NOT EXISTS content_counters (
			content_id BIGINT PRIMARY KEY,
			views BIGINT NOT NULL DEFAULT 0,
			likes BIGINT NOT NULL DEFAULT 0,
			comments BIGINT NOT NULL DEFAULT 0,
			saves BIGINT NOT NULL DEFAULT 0,
			shares BIGINT NOT NULL DEFAULT 0
		)`,

		// Per-viewer interaction rows (likes and saves). The primary key
		// makes duplicate likes a conflict-noop instead of a double-count.
		`CREATE TABLE IF NOT EXISTS interactions (
			actor_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			kind TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (actor_id, content_id, kind)
		)`,

		// Collaborative-filtering signals written by event subscribers.
		// Keyed so redelivered events upsert instead of duplicating.
		`CREATE TABLE IF NOT EXISTS cf_signals (
			actor_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			kind TEXT NOT NULL,
			occurred_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (actor_id, content_id, kind)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_content_author_created
			ON content (author_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_content_created
			ON content (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_follows_follower
			ON follows (follower_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_content
			ON interactions (content_id)`,
	}
}
