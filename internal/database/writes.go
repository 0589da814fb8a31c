// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/loopfeedapp/loopfeed/internal/models"
)

// The write methods below model the external content/account CRUD that
// surrounds the feed core. The feed engine itself only reads content
// and adjusts counters; these writers exist for the seeder, the tests,
// and the content-creation collaborator.

// InsertUser creates an account row.
func (db *DB) InsertUser(ctx context.Context, id int64, username string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (id, username) VALUES (?, ?)`, id, username)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// SoftDeleteUser marks an account deleted; its content disappears from
// every selector without being touched.
func (db *DB) SoftDeleteUser(ctx context.Context, id int64) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	return nil
}

// InsertFollow records that follower follows followee.
func (db *DB) InsertFollow(ctx context.Context, followerID, followeeID int64) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id) VALUES (?, ?)
		ON CONFLICT (follower_id, followee_id) DO NOTHING`, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("insert follow: %w", err)
	}
	return nil
}

// InsertContent creates a content row together with its counters row.
// The counters row is created exactly once here and then only ever
// moved by the atomic adjust statement.
func (db *DB) InsertContent(ctx context.Context, c models.Content) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert content tx: %w", err)
	}
	defer rollbackQuietly(tx)

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO content (id, author_id, type, caption, media_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.AuthorID, string(c.Type), c.Caption, c.MediaURL, createdAt); err != nil {
		return fmt.Errorf("insert content: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO content_counters (content_id) VALUES (?)`, c.ID); err != nil {
		return fmt.Errorf("insert counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert content tx: %w", err)
	}
	return nil
}

// InsertPhotoAttachment adds one photo row to a photo-type content.
func (db *DB) InsertPhotoAttachment(ctx context.Context, p models.PhotoAttachment) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO photo_attachments (content_id, url, display_order)
		VALUES (?, ?, ?)`, p.ContentID, p.URL, p.DisplayOrder)
	if err != nil {
		return fmt.Errorf("insert photo attachment: %w", err)
	}
	return nil
}

// SoftDeleteContent marks content deleted. Counters and interaction
// rows stay for the audit trail; selectors stop returning the id and
// further adjustments become no-ops.
func (db *DB) SoftDeleteContent(ctx context.Context, id int64) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE content SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete content: %w", err)
	}
	return nil
}
