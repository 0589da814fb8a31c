// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

// Package eventbus implements the bounded in-process multicast bus that
// carries interaction events off the request's critical path.
//
// Publishing never blocks. Each subscriber owns a fixed-capacity buffer;
// when a buffer is full the event is dropped for that subscriber and the
// publisher gets an explicit overflow outcome instead of backpressure.
// Loss under sustained overload is accepted: this path carries secondary
// signals only, the authoritative counters are already committed by the
// time an event is published.
//
// Delivery is at-most-once per active subscriber. There is no replay,
// no persistence, and no cross-process delivery.
package eventbus

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/loopfeedapp/loopfeed/internal/models"
)

// DefaultBufferSize is the per-subscriber buffer capacity used when the
// config leaves it unset.
const DefaultBufferSize = 1024

// ErrBusClosed is returned by Subscribe after Close.
var ErrBusClosed = errors.New("eventbus: bus closed")

// ErrSubscriberExists is returned when a subscriber name is already taken.
var ErrSubscriberExists = errors.New("eventbus: subscriber already registered")

// PublishResult is the outcome of a non-blocking publish.
type PublishResult int

const (
	// PublishOK means the event was enqueued for every active subscriber.
	PublishOK PublishResult = iota

	// DroppedNoSubscriber means no subscriber was registered at publish
	// time. Expected during startup; not an error.
	DroppedNoSubscriber

	// DroppedOverflow means at least one subscriber's buffer was full and
	// the event was dropped for it. The only outcome worth alerting on.
	DroppedOverflow

	// DroppedTerminated means the bus was already closed.
	DroppedTerminated
)

// String returns the result name for logs and metrics labels.
func (r PublishResult) String() string {
	switch r {
	case PublishOK:
		return "ok"
	case DroppedNoSubscriber:
		return "dropped_no_subscriber"
	case DroppedOverflow:
		return "dropped_overflow"
	case DroppedTerminated:
		return "dropped_terminated"
	default:
		return "unknown"
	}
}

// SubscriberStats tracks per-subscriber delivery counts.
type SubscriberStats struct {
	Delivered uint64
	Dropped   uint64
}

// Subscription is one registered consumer. Its lifecycle spans the
// process: REGISTERED at creation, ACTIVE while consuming, TERMINATED
// once the bus shuts the stream down. There is no pause or resume.
type Subscription struct {
	name      string
	ch        chan models.DomainEvent
	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// Name returns the subscriber identifier.
func (s *Subscription) Name() string { return s.name }

// Events returns the receive channel. The channel is closed when the bus
// terminates the stream; consumers should range over it.
func (s *Subscription) Events() <-chan models.DomainEvent { return s.ch }

// Stats returns a snapshot of delivery counts for this subscriber.
func (s *Subscription) Stats() SubscriberStats {
	return SubscriberStats{
		Delivered: s.delivered.Load(),
		Dropped:   s.dropped.Load(),
	}
}

// Bus is a fixed-capacity multi-producer/multi-consumer event bus.
// It is safe for concurrent use.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string]*Subscription
	bufSize int
	closed  bool
	logger  zerolog.Logger
}

// New creates a bus with the given per-subscriber buffer capacity.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(bufferSize int, logger zerolog.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Bus{
		subs:    make(map[string]*Subscription),
		bufSize: bufferSize,
		logger:  logger.With().Str("component", "eventbus").Logger(),
	}
}

// Subscribe registers a named consumer and returns its subscription.
// Names must be unique; registration happens at process start.
func (b *Bus) Subscribe(name string) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}
	if _, exists := b.subs[name]; exists {
		return nil, ErrSubscriberExists
	}

	sub := &Subscription{
		name: name,
		ch:   make(chan models.DomainEvent, b.bufSize),
	}
	b.subs[name] = sub

	b.logger.Info().
		Str("subscriber", name).
		Int("buffer", b.bufSize).
		Msg("subscriber registered")

	return sub, nil
}

// Publish multicasts the event to every subscriber without blocking.
// A full subscriber buffer drops the event for that subscriber only;
// delivery to the remaining subscribers still proceeds.
func (b *Bus) Publish(ev models.DomainEvent) PublishResult {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return DroppedTerminated
	}
	if len(b.subs) == 0 {
		return DroppedNoSubscriber
	}

	overflowed := false
	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
			sub.delivered.Add(1)
		default:
			sub.dropped.Add(1)
			overflowed = true
		}
	}

	if overflowed {
		return DroppedOverflow
	}
	return PublishOK
}

// SubscriberCount returns the number of registered subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close terminates every subscription by closing its channel. Publishes
// after Close return DroppedTerminated. Close is idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for name, sub := range b.subs {
		close(sub.ch)
		stats := sub.Stats()
		b.logger.Info().
			Str("subscriber", name).
			Uint64("delivered", stats.Delivered).
			Uint64("dropped", stats.Dropped).
			Msg("subscription terminated")
	}
}
