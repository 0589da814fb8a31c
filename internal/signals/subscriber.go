// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

// Package signals consumes interaction events off the bus and persists
// collaborative-filtering signals.
//
// The subscriber is fully isolated: a failure while processing one
// event is logged and counted but never terminates the subscription or
// touches sibling subscribers. Persistence is an idempotent upsert
// keyed by (actor, content, kind), so redelivered events from client
// retries never double-count.
package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/loopfeedapp/loopfeed/internal/eventbus"
	"github.com/loopfeedapp/loopfeed/internal/logging"
	"github.com/loopfeedapp/loopfeed/internal/metrics"
	"github.com/loopfeedapp/loopfeed/internal/models"
)

// SubscriberName is the bus registration name.
const SubscriberName = "cf-signals"

// upsertTimeout bounds one signal write so a stuck store cannot stall
// the consume loop indefinitely.
const upsertTimeout = 5 * time.Second

// Store persists one signal per (actor, content, kind).
type Store interface {
	UpsertSignal(ctx context.Context, ev models.DomainEvent) error
}

// DefaultKinds are the interaction kinds worth a collaborative-filtering
// signal. Views are deliberately excluded: they arrive at two orders of
// magnitude more volume and carry almost no preference information.
func DefaultKinds() []models.InteractionKind {
	return []models.InteractionKind{
		models.InteractionLike,
		models.InteractionComment,
		models.InteractionSave,
		models.InteractionShare,
	}
}

// Subscriber consumes the event stream and upserts signals. It
// implements suture.Service.
type Subscriber struct {
	store  Store
	sub    *eventbus.Subscription
	kinds  map[models.InteractionKind]struct{}
	logger zerolog.Logger
}

// New creates a subscriber over an already-registered subscription.
// An empty kinds list means DefaultKinds.
func New(store Store, sub *eventbus.Subscription, kinds ...models.InteractionKind) *Subscriber {
	if len(kinds) == 0 {
		kinds = DefaultKinds()
	}
	kindSet := make(map[models.InteractionKind]struct{}, len(kinds))
	for _, k := range kinds {
		kindSet[k] = struct{}{}
	}
	return &Subscriber{
		store:  store,
		sub:    sub,
		kinds:  kindSet,
		logger: logging.With().Str("component", "signals").Str("subscriber", sub.Name()).Logger(),
	}
}

// Serve consumes events until the stream terminates or ctx is
// canceled. It never returns because of a processing failure.
func (s *Subscriber) Serve(ctx context.Context) error {
	s.logger.Info().Msg("signal subscriber active")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-s.sub.Events():
			if !ok {
				// Stream shutdown is the subscription's terminal state,
				// not a failure to recover from.
				s.logger.Info().Msg("event stream terminated")
				return suture.ErrDoNotRestart
			}
			s.process(ctx, ev)
		}
	}
}

// process handles a single event, containing any failure.
func (s *Subscriber) process(ctx context.Context, ev models.DomainEvent) {
	if _, wanted := s.kinds[ev.Kind]; !wanted {
		return
	}

	if err := s.upsert(ctx, ev); err != nil {
		metrics.SubscriberFailures.WithLabelValues(s.sub.Name()).Inc()
		s.logger.Error().
			Err(err).
			Str("event_id", ev.EventID).
			Int64("actor_id", ev.ActorID).
			Int64("content_id", ev.ContentID).
			Str("kind", string(ev.Kind)).
			Msg("signal processing failed")
		return
	}
	metrics.SignalUpserts.Inc()
}

func (s *Subscriber) upsert(ctx context.Context, ev models.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("signal upsert panic: %v", r)
		}
	}()

	upsertCtx, cancel := context.WithTimeout(ctx, upsertTimeout)
	defer cancel()

	return s.store.UpsertSignal(upsertCtx, ev)
}
