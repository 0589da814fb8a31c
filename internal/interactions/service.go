// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

// Package interactions runs the interaction pipeline: the synchronous
// critical path (row write plus atomic counter adjustment, awaited
// before the response) followed by a fire-and-forget event publish onto
// the non-critical signal bus.
package interactions

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/loopfeedapp/loopfeed/internal/database"
	"github.com/loopfeedapp/loopfeed/internal/eventbus"
	"github.com/loopfeedapp/loopfeed/internal/logging"
	"github.com/loopfeedapp/loopfeed/internal/metrics"
	"github.com/loopfeedapp/loopfeed/internal/models"
)

// Store is the write surface the pipeline needs from storage.
type Store interface {
	CommitInteraction(ctx context.Context, actorID, contentID int64, kind models.InteractionKind, delta int64) (database.CommitResult, error)
}

// Publisher is the non-blocking event sink.
type Publisher interface {
	Publish(ev models.DomainEvent) eventbus.PublishResult
}

// Service coordinates the two-step sequence: await the critical-path
// commit, then publish without awaiting delivery.
type Service struct {
	store  Store
	bus    Publisher
	logger zerolog.Logger
}

// New creates the interaction service.
func New(store Store, bus Publisher) *Service {
	return &Service{
		store:  store,
		bus:    bus,
		logger: logging.With().Str("component", "interactions").Logger(),
	}
}

// Record commits one interaction and returns the counters visible at
// response time. The domain event is published only after a successful
// commit and is never awaited; a dropped event does not affect the
// response. Missing or deleted content yields database.ErrNotFound and
// publishes nothing.
func (s *Service) Record(ctx context.Context, actorID, contentID int64, kind models.InteractionKind) (models.InteractionCounters, error) {
	res, err := s.store.CommitInteraction(ctx, actorID, contentID, kind, 1)
	if err != nil {
		s.observeCommit(kind, err)
		return models.InteractionCounters{}, err
	}
	s.observeCommit(kind, nil)
	s.recordEffect(kind, res.Applied)

	s.publish(models.NewDomainEvent(actorID, contentID, kind))

	return res.Counters, nil
}

// Retract undoes a previously recorded row-backed interaction (un-like,
// un-save). Retracting something never recorded is a silent no-op. No
// event is published: collaborative-filtering signals are accumulative
// and a retraction carries no ranking information.
func (s *Service) Retract(ctx context.Context, actorID, contentID int64, kind models.InteractionKind) (models.InteractionCounters, error) {
	res, err := s.store.CommitInteraction(ctx, actorID, contentID, kind, -1)
	if err != nil {
		s.observeCommit(kind, err)
		return models.InteractionCounters{}, err
	}
	s.observeCommit(kind, nil)
	s.recordEffect(kind, res.Applied)

	return res.Counters, nil
}

// publish hands the event to the bus. Overflow is the only outcome that
// warrants operational attention; a missing subscriber is an expected
// startup race.
func (s *Service) publish(ev models.DomainEvent) {
	result := s.bus.Publish(ev)
	metrics.EventPublishOutcomes.WithLabelValues(result.String()).Inc()

	switch result {
	case eventbus.DroppedOverflow:
		s.logger.Warn().
			Str("event_id", ev.EventID).
			Int64("actor_id", ev.ActorID).
			Int64("content_id", ev.ContentID).
			Str("kind", string(ev.Kind)).
			Msg("event dropped on overflow")
	case eventbus.DroppedTerminated:
		s.logger.Warn().
			Str("event_id", ev.EventID).
			Msg("event published after bus shutdown")
	case eventbus.PublishOK, eventbus.DroppedNoSubscriber:
	}
}

func (s *Service) observeCommit(kind models.InteractionKind, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, database.ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	metrics.InteractionsTotal.WithLabelValues(string(kind), outcome).Inc()
}

func (s *Service) recordEffect(kind models.InteractionKind, applied bool) {
	effect := "applied"
	if !applied {
		effect = "noop"
	}
	metrics.CounterAdjustments.WithLabelValues(string(kind), effect).Inc()
}
