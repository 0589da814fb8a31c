// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/loopfeedapp/loopfeed/internal/models"
)

// ViewerFlags are the per-viewer booleans attached to a summary.
type ViewerFlags struct {
	Liked bool
	Saved bool
}

// BatchLoadContent loads non-deleted base content rows for the given
// ids in one query. Missing or deleted ids are simply absent from the
// result map; that is how concurrent deletion surfaces to hydration.
func (db *DB) BatchLoadContent(ctx context.Context, ids []int64) (map[int64]models.Content, error) {
	if len(ids) == 0 {
		return map[int64]models.Content{}, nil
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.author_id, c.type, c.caption, c.media_url, c.created_at
		FROM content c
		WHERE c.id IN (%s) AND `+eligibleContentFilter, placeholders(len(ids)))

	rows, err := db.conn.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("batch load content: %w", err)
	}
	defer closeQuietly(rows)

	result := make(map[int64]models.Content, len(ids))
	for rows.Next() {
		var (
			c       models.Content
			caption sql.NullString
			media   sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.Type, &caption, &media, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		c.Caption = caption.String
		c.MediaURL = media.String
		result[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content: %w", err)
	}
	return result, nil
}

// BatchLoadAuthorNames loads display names for the given author ids in
// one query.
func (db *DB) BatchLoadAuthorNames(ctx context.Context, authorIDs []int64) (map[int64]string, error) {
	if len(authorIDs) == 0 {
		return map[int64]string{}, nil
	}

	query := fmt.Sprintf(`
		SELECT id, username
		FROM users
		WHERE id IN (%s) AND deleted_at IS NULL`, placeholders(len(authorIDs)))

	rows, err := db.conn.QueryContext(ctx, query, idArgs(authorIDs)...)
	if err != nil {
		return nil, fmt.Errorf("batch load author names: %w", err)
	}
	defer closeQuietly(rows)

	result := make(map[int64]string, len(authorIDs))
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		result[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate authors: %w", err)
	}
	return result, nil
}

// BatchLoadCounters loads interaction counters for the given content
// ids in one query.
func (db *DB) BatchLoadCounters(ctx context.Context, ids []int64) (map[int64]models.InteractionCounters, error) {
	if len(ids) == 0 {
		return map[int64]models.InteractionCounters{}, nil
	}

	query := fmt.Sprintf(`
		SELECT content_id, views, likes, comments, saves, shares
		FROM content_counters
		WHERE content_id IN (%s)`, placeholders(len(ids)))

	rows, err := db.conn.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("batch load counters: %w", err)
	}
	defer closeQuietly(rows)

	result := make(map[int64]models.InteractionCounters, len(ids))
	for rows.Next() {
		var (
			id int64
			c  models.InteractionCounters
		)
		if err := rows.Scan(&id, &c.Views, &c.Likes, &c.Comments, &c.Saves, &c.Shares); err != nil {
			return nil, fmt.Errorf("scan counters: %w", err)
		}
		result[id] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counters: %w", err)
	}
	return result, nil
}

// BatchLoadPhotoAttachments loads photo rows for the given content ids
// in one query, grouped per content and sorted ascending by display
// order. Content with zero rows has no key in the result map.
func (db *DB) BatchLoadPhotoAttachments(ctx context.Context, ids []int64) (map[int64][]models.PhotoAttachment, error) {
	if len(ids) == 0 {
		return map[int64][]models.PhotoAttachment{}, nil
	}

	query := fmt.Sprintf(`
		SELECT content_id, url, display_order
		FROM photo_attachments
		WHERE content_id IN (%s)
		ORDER BY content_id, display_order ASC`, placeholders(len(ids)))

	rows, err := db.conn.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("batch load photo attachments: %w", err)
	}
	defer closeQuietly(rows)

	result := make(map[int64][]models.PhotoAttachment)
	for rows.Next() {
		var p models.PhotoAttachment
		if err := rows.Scan(&p.ContentID, &p.URL, &p.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan photo attachment: %w", err)
		}
		result[p.ContentID] = append(result[p.ContentID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photo attachments: %w", err)
	}
	return result, nil
}

// BatchLoadViewerFlags loads the viewer's like/save rows for the given
// content ids in one query. Ids without rows get zero-value flags.
func (db *DB) BatchLoadViewerFlags(ctx context.Context, viewerID int64, ids []int64) (map[int64]ViewerFlags, error) {
	if len(ids) == 0 {
		return map[int64]ViewerFlags{}, nil
	}

	query := fmt.Sprintf(`
		SELECT content_id, kind
		FROM interactions
		WHERE actor_id = ? AND kind IN ('like', 'save') AND content_id IN (%s)`,
		placeholders(len(ids)))

	args := append([]any{viewerID}, idArgs(ids)...)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("batch load viewer flags: %w", err)
	}
	defer closeQuietly(rows)

	result := make(map[int64]ViewerFlags, len(ids))
	for rows.Next() {
		var (
			id   int64
			kind string
		)
		if err := rows.Scan(&id, &kind); err != nil {
			return nil, fmt.Errorf("scan viewer flag: %w", err)
		}
		flags := result[id]
		switch models.InteractionKind(kind) {
		case models.InteractionLike:
			flags.Liked = true
		case models.InteractionSave:
			flags.Saved = true
		}
		result[id] = flags
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate viewer flags: %w", err)
	}
	return result, nil
}
