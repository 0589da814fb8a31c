// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package models

import "time"

// ContentType distinguishes the two published media kinds.
type ContentType string

const (
	// ContentTypeVideo is a single short-form video.
	ContentTypeVideo ContentType = "video"

	// ContentTypePhoto is a photo post carrying one or more ordered attachments.
	ContentTypePhoto ContentType = "photo"
)

// Content is the base row for a published item. Soft deletion is modeled
// with DeletedAt; every storage selector filters deleted rows internally
// so callers never see them.
type Content struct {
	ID        int64       `json:"id"`
	AuthorID  int64       `json:"author_id"`
	Type      ContentType `json:"type"`
	Caption   string      `json:"caption,omitempty"`
	MediaURL  string      `json:"media_url,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	DeletedAt *time.Time  `json:"-"`
}

// PhotoAttachment is one photo belonging to a photo-type content.
// DisplayOrder is the explicit presentation position within the post.
type PhotoAttachment struct {
	ContentID    int64  `json:"-"`
	URL          string `json:"url"`
	DisplayOrder int    `json:"display_order"`
}

// InteractionCounters is the per-content mutable aggregate. It is the
// single source of truth for counts and is only ever changed through the
// store's atomic adjust statement, never read-modify-write.
type InteractionCounters struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Saves    int64 `json:"saves"`
	Shares   int64 `json:"shares"`
}

// ContentSummary is the hydrated, read-only projection served to clients.
// It has no persistent identity of its own and lives for one request.
//
// Photos is nil for video content and for photo content that has no
// attachment rows; it is never an empty non-nil slice. Callers rely on
// that distinction.
type ContentSummary struct {
	ID         int64               `json:"id"`
	AuthorID   int64               `json:"author_id"`
	AuthorName string              `json:"author_name,omitempty"`
	Type       ContentType         `json:"type"`
	Caption    string              `json:"caption,omitempty"`
	MediaURL   string              `json:"media_url,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	Counters   InteractionCounters `json:"counters"`
	IsLiked    bool                `json:"is_liked"`
	IsSaved    bool                `json:"is_saved"`
	Photos     []PhotoAttachment   `json:"photos,omitempty"`
}
