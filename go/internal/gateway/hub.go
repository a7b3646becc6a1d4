package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mcdev12/tourney/go/internal/events"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSubscriberQueueSize = 256
	defaultBroadcastBuffer     = 1000
)

// ErrHubClosed is returned when subscribing after the hub stopped.
var ErrHubClosed = errors.New("hub closed")

// Subscriber receives encoded events from the hub. Its channel is closed
// when it is unsubscribed or the hub stops.
type Subscriber struct {
	ID      string
	send    chan []byte
	dropped atomic.Int64
}

// Messages returns the subscriber's bounded queue.
func (s *Subscriber) Messages() <-chan []byte {
	return s.send
}

// Dropped counts messages lost because the queue was full.
func (s *Subscriber) Dropped() int64 {
	return s.dropped.Load()
}

// Stats describes the fan-out set.
type Stats struct {
	Subscribers int   `json:"subscribers"`
	Dropped     int64 `json:"dropped"`
}

// Hub fans events out to subscribers. The subscriber set is owned by Run;
// everything else talks to it over channels.
type Hub struct {
	queueSize int

	register    chan *Subscriber
	unregister  chan *Subscriber
	broadcastCh chan []byte
	done        chan struct{}

	subscribers atomic.Int64
	dropped     atomic.Int64
}

// NewHub creates a hub whose subscribers buffer queueSize messages each.
func NewHub(queueSize int) *Hub {
	if queueSize < 1 {
		queueSize = DefaultSubscriberQueueSize
	}
	return &Hub{
		queueSize:   queueSize,
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		broadcastCh: make(chan []byte, defaultBroadcastBuffer),
		done:        make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	subs := make(map[*Subscriber]struct{})
	log.Info().Int("queue_size", h.queueSize).Msg("event hub started")

	defer func() {
		for s := range subs {
			close(s.send)
		}
		h.subscribers.Store(0)
		close(h.done)
		log.Info().Msg("event hub shutting down")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-h.register:
			subs[s] = struct{}{}
			h.subscribers.Store(int64(len(subs)))
			log.Debug().Str("subscriber_id", s.ID).Int("total_subscribers", len(subs)).Msg("subscriber registered")
		case s := <-h.unregister:
			if _, ok := subs[s]; ok {
				delete(subs, s)
				close(s.send)
				h.subscribers.Store(int64(len(subs)))
				log.Debug().Str("subscriber_id", s.ID).Int("total_subscribers", len(subs)).Msg("subscriber unregistered")
			}
		case msg := <-h.broadcastCh:
			for s := range subs {
				select {
				case s.send <- msg:
				default:
					s.dropped.Add(1)
					h.dropped.Add(1)
					log.Warn().Str("subscriber_id", s.ID).Msg("subscriber queue full, dropping message")
				}
			}
		}
	}
}

// Subscribe adds a subscriber. It blocks until the hub accepts it.
func (h *Hub) Subscribe(ctx context.Context) (*Subscriber, error) {
	s := &Subscriber{ID: uuid.New().String(), send: make(chan []byte, h.queueSize)}
	select {
	case h.register <- s:
		return s, nil
	case <-h.done:
		return nil, ErrHubClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Unsubscribe removes s and closes its channel. Safe to call more than once.
func (h *Hub) Unsubscribe(s *Subscriber) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Broadcast encodes ev and queues it for every subscriber. It never blocks.
func (h *Hub) Broadcast(ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(ev.Type)).Msg("failed to marshal event for broadcast")
		return
	}
	select {
	case h.broadcastCh <- data:
	default:
		h.dropped.Add(1)
		log.Warn().Str("event_type", string(ev.Type)).Msg("broadcast channel full, dropping message")
	}
}

// Stats reports the current subscriber count and total drops.
func (h *Hub) Stats() Stats {
	return Stats{
		Subscribers: int(h.subscribers.Load()),
		Dropped:     h.dropped.Load(),
	}
}
