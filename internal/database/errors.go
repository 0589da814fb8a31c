// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package database

import "errors"

// ErrNotFound is returned when an operation targets content that is
// missing or soft-deleted. Read paths never return it; they return empty
// results instead. Only the interaction commit path surfaces it.
var ErrNotFound = errors.New("database: content not found")
