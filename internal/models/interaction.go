// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InteractionKind enumerates the interactions a viewer can perform on
// content. The set is closed; storage columns and event filtering both
// key off these values.
type InteractionKind string

const (
	InteractionView    InteractionKind = "view"
	InteractionLike    InteractionKind = "like"
	InteractionComment InteractionKind = "comment"
	InteractionSave    InteractionKind = "save"
	InteractionShare   InteractionKind = "share"
)

// AllInteractionKinds lists every valid kind, in counter-column order.
var AllInteractionKinds = []InteractionKind{
	InteractionView,
	InteractionLike,
	InteractionComment,
	InteractionSave,
	InteractionShare,
}

// Valid reports whether k is a known interaction kind.
func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionView, InteractionLike, InteractionComment, InteractionSave, InteractionShare:
		return true
	}
	return false
}

// ParseInteractionKind converts a wire string into an InteractionKind.
func ParseInteractionKind(s string) (InteractionKind, error) {
	k := InteractionKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown interaction kind %q", s)
	}
	return k, nil
}

// DomainEvent is the immutable record published on the in-process bus
// after an interaction commits. Delivery is at-most-once per active
// subscriber; the event is created by the interaction service and
// discarded after delivery or drop.
type DomainEvent struct {
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	ActorID    int64           `json:"actor_id"`
	ContentID  int64           `json:"content_id"`
	Kind       InteractionKind `json:"kind"`
}

// NewDomainEvent creates an event with a unique ID and UTC timestamp.
func NewDomainEvent(actorID, contentID int64, kind InteractionKind) DomainEvent {
	return DomainEvent{
		EventID:    uuid.New().String(),
		OccurredAt: time.Now().UTC(),
		ActorID:    actorID,
		ContentID:  contentID,
		Kind:       kind,
	}
}
