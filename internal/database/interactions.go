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

// counterColumns maps interaction kinds to their counter column. The
// map is the single place that knows this correspondence; queries are
// assembled from it rather than from user input, so kind values never
// reach SQL text unvalidated.
var counterColumns = map[models.InteractionKind]string{
	models.InteractionView:    "views",
	models.InteractionLike:    "likes",
	models.InteractionComment: "comments",
	models.InteractionSave:    "saves",
	models.InteractionShare:   "shares",
}

// rowBackedKinds are the interactions that write a per-viewer row in
// addition to the counter. Views, comments, and shares are counter-only
// here; comment bodies live with the external content CRUD.
var rowBackedKinds = map[models.InteractionKind]bool{
	models.InteractionLike: true,
	models.InteractionSave: true,
}

// CommitResult reports what one interaction commit did.
type CommitResult struct {
	// Counters is the aggregate visible at response time, read inside
	// the same transaction as the adjustment.
	Counters models.InteractionCounters

	// Applied is false when the commit was a no-op: a duplicate like, an
	// un-like of something never liked, or a decrement below zero.
	Applied bool
}

// CommitInteraction runs the interaction's unit of work in a single
// transaction: the triggering row write (for row-backed kinds), the
// atomic counter adjustment, and the counter read returned to the
// caller. delta is +1 to record and -1 to retract.
//
// The counter adjustment is one conditional UPDATE; there is no
// application-level read-modify-write, so concurrent commits to the
// same content are safe without in-process locking. Missing or deleted
// content yields ErrNotFound with nothing written.
func (db *DB) CommitInteraction(ctx context.Context, actorID, contentID int64, kind models.InteractionKind, delta int64) (CommitResult, error) {
	if !kind.Valid() {
		return CommitResult{}, fmt.Errorf("commit interaction: invalid kind %q", kind)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return CommitResult{}, fmt.Errorf("begin interaction tx: %w", err)
	}
	defer rollbackQuietly(tx)

	exists, err := contentExistsTx(ctx, tx, contentID)
	if err != nil {
		return CommitResult{}, err
	}
	if !exists {
		return CommitResult{}, ErrNotFound
	}

	adjust := true
	if rowBackedKinds[kind] {
		adjust, err = writeInteractionRowTx(ctx, tx, actorID, contentID, kind, delta)
		if err != nil {
			return CommitResult{}, err
		}
	}

	applied := false
	if adjust {
		applied, err = adjustCounterTx(ctx, tx, contentID, kind, delta)
		if err != nil {
			return CommitResult{}, err
		}
	}

	counters, err := readCountersTx(ctx, tx, contentID)
	if err != nil {
		return CommitResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return CommitResult{}, fmt.Errorf("commit interaction tx: %w", err)
	}

	return CommitResult{Counters: counters, Applied: applied}, nil
}

// AdjustCounter applies a single atomic counter adjustment outside any
// surrounding row write. Returns false when the statement matched no
// row: the content is missing/deleted or the decrement would go below
// zero. Both are silent no-ops, not errors.
func (db *DB) AdjustCounter(ctx context.Context, contentID int64, kind models.InteractionKind, delta int64) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("adjust counter: invalid kind %q", kind)
	}
	return adjustCounter(ctx, db.conn, contentID, kind, delta)
}

// GetCounters returns the current counters for a content id. Missing
// content yields ErrNotFound.
func (db *DB) GetCounters(ctx context.Context, contentID int64) (models.InteractionCounters, error) {
	var c models.InteractionCounters
	err := db.conn.QueryRowContext(ctx, `
		SELECT views, likes, comments, saves, shares
		FROM content_counters
		WHERE content_id = ?`, contentID).
		Scan(&c.Views, &c.Likes, &c.Comments, &c.Saves, &c.Shares)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	if err != nil {
		return c, fmt.Errorf("get counters: %w", err)
	}
	return c, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func contentExistsTx(ctx context.Context, tx *sql.Tx, contentID int64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `
		SELECT 1 FROM content WHERE id = ? AND deleted_at IS NULL`, contentID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check content exists: %w", err)
	}
	return true, nil
}

// writeInteractionRowTx inserts or deletes the per-viewer row. Returns
// whether the row actually changed; a duplicate insert or a delete of a
// missing row reports false so the counter stays untouched.
func writeInteractionRowTx(ctx context.Context, tx *sql.Tx, actorID, contentID int64, kind models.InteractionKind, delta int64) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if delta >= 0 {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO interactions (actor_id, content_id, kind)
			VALUES (?, ?, ?)
			ON CONFLICT (actor_id, content_id, kind) DO NOTHING`,
			actorID, contentID, string(kind))
	} else {
		res, err = tx.ExecContext(ctx, `
			DELETE FROM interactions
			WHERE actor_id = ? AND content_id = ? AND kind = ?`,
			actorID, contentID, string(kind))
	}
	if err != nil {
		return false, fmt.Errorf("write interaction row: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("interaction row affected: %w", err)
	}
	return affected > 0, nil
}

// adjustCounter is the single conditional statement the whole counter
// design rests on: the column moves by delta only when the content is
// alive and the result stays non-negative. Zero rows affected is the
// silent no-op the contract requires.
func adjustCounter(ctx context.Context, ex execer, contentID int64, kind models.InteractionKind, delta int64) (bool, error) {
	col := counterColumns[kind]

	query := fmt.Sprintf(`
		UPDATE content_counters
		SET %[1]s = %[1]s + ?
		WHERE content_id = ?
			AND %[1]s + ? >= 0
			AND EXISTS (SELECT 1 FROM content WHERE id = content_id AND deleted_at IS NULL)`, col)

	res, err := ex.ExecContext(ctx, query, delta, contentID, delta)
	if err != nil {
		return false, fmt.Errorf("adjust %s counter: %w", col, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("adjust %s counter affected: %w", col, err)
	}
	return affected > 0, nil
}

func adjustCounterTx(ctx context.Context, tx *sql.Tx, contentID int64, kind models.InteractionKind, delta int64) (bool, error) {
	return adjustCounter(ctx, tx, contentID, kind, delta)
}

func readCountersTx(ctx context.Context, tx *sql.Tx, contentID int64) (models.InteractionCounters, error) {
	var c models.InteractionCounters
	err := tx.QueryRowContext(ctx, `
		SELECT views, likes, comments, saves, shares
		FROM content_counters
		WHERE content_id = ?`, contentID).
		Scan(&c.Views, &c.Likes, &c.Comments, &c.Saves, &c.Shares)
	if err != nil {
		return c, fmt.Errorf("read counters: %w", err)
	}
	return c, nil
}

func rollbackQuietly(tx *sql.Tx) {
	// Rollback after Commit returns sql.ErrTxDone; that is fine.
	_ = tx.Rollback()
}

// UpsertSignal persists one collaborative-filtering signal keyed by
// (actor, content, kind). Redelivery of the same logical interaction
// refreshes the timestamp instead of creating a duplicate row.
func (db *DB) UpsertSignal(ctx context.Context, ev models.DomainEvent) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO cf_signals (actor_id, content_id, kind, occurred_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (actor_id, content_id, kind)
		DO UPDATE SET updated_at = now()`,
		ev.ActorID, ev.ContentID, string(ev.Kind), ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("upsert signal: %w", err)
	}
	return nil
}

// CountSignals returns the number of signal rows for a content id.
func (db *DB) CountSignals(ctx context.Context, contentID int64) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM cf_signals WHERE content_id = ?`, contentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count signals: %w", err)
	}
	return n, nil
}
