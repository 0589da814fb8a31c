// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/loopfeedapp/loopfeed/internal/config"
)

// eligibleContentFilter is the shared WHERE fragment applied by every
// candidate selector: content and its author must both be non-deleted.
const eligibleContentFilter = `
	c.deleted_at IS NULL
	AND EXISTS (SELECT 1 FROM users u WHERE u.id = c.author_id AND u.deleted_at IS NULL)`

// FollowedAuthorIDs returns the ids of authors the viewer follows,
// excluding deleted accounts.
func (db *DB) FollowedAuthorIDs(ctx context.Context, viewerID int64) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT f.followee_id
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = ? AND u.deleted_at IS NULL
		ORDER BY f.followee_id`, viewerID)
	if err != nil {
		return nil, fmt.Errorf("query followed authors: %w", err)
	}
	defer closeQuietly(rows)

	return scanIDs(rows)
}

// FindNonDeletedByAuthors returns content ids by the given authors,
// newest first. The following feed paginates it by offset with no
// exclusions; the following candidate source passes offset 0 and the
// page's exclusion set instead.
func (db *DB) FindNonDeletedByAuthors(ctx context.Context, authorIDs []int64, limit, offset int, exclude []int64) ([]int64, error) {
	if len(authorIDs) == 0 || limit <= 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT c.id
		FROM content c
		WHERE c.author_id IN (%s) AND `+eligibleContentFilter+excludeClause(len(exclude))+`
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT ? OFFSET ?`, placeholders(len(authorIDs)))

	args := idArgs(authorIDs)
	args = appendIDArgs(args, exclude)
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query content by authors: %w", err)
	}
	defer closeQuietly(rows)

	return scanIDs(rows)
}

// FindPopularityRanked returns eligible content ids ranked by the
// weighted interaction score, descending, ties broken by id ascending so
// identical data yields identical ordering.
func (db *DB) FindPopularityRanked(ctx context.Context, weights config.PopularityWeights, limit int, exclude []int64) ([]int64, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT c.id
		FROM content c
		JOIN content_counters cc ON cc.content_id = c.id
		WHERE ` + eligibleContentFilter + excludeClause(len(exclude)) + `
		ORDER BY (cc.views * ? + cc.likes * ? + cc.comments * ? + cc.saves * ? + cc.shares * ?) DESC,
			c.id ASC
		LIMIT ?`

	args := idArgs(exclude)
	args = append(args, weights.View, weights.Like, weights.Comment, weights.Save, weights.Share, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query popularity ranking: %w", err)
	}
	defer closeQuietly(rows)

	return scanIDs(rows)
}

// FindRecent returns eligible content ids, newest created first.
func (db *DB) FindRecent(ctx context.Context, limit int, exclude []int64) ([]int64, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT c.id
		FROM content c
		WHERE ` + eligibleContentFilter + excludeClause(len(exclude)) + `
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT ?`

	args := idArgs(exclude)
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent content: %w", err)
	}
	defer closeQuietly(rows)

	return scanIDs(rows)
}

// FindRandomSample returns a uniform sample of eligible content ids.
// Order is not stable across identical calls.
func (db *DB) FindRandomSample(ctx context.Context, limit int, exclude []int64) ([]int64, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT c.id
		FROM content c
		WHERE ` + eligibleContentFilter + excludeClause(len(exclude)) + `
		ORDER BY random()
		LIMIT ?`

	args := idArgs(exclude)
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query random sample: %w", err)
	}
	defer closeQuietly(rows)

	return scanIDs(rows)
}

// excludeClause returns an "AND c.id NOT IN (...)" fragment for n
// exclusions, or "" when there are none.
func excludeClause(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf(" AND c.id NOT IN (%s)", placeholders(n))
}

// scanIDs drains a single-column id result set.
func scanIDs(rows *sql.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}
