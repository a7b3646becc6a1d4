package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/tourney/go/internal/events"
	"github.com/mcdev12/tourney/go/internal/models"
	"github.com/rs/zerolog/log"
)

const defaultPublishBuffer = 256

// AnnouncementStore is the durable announcement log.
type AnnouncementStore interface {
	AppendAnnouncement(ctx context.Context, createdAtMs int64, typ string, payload json.RawMessage) (*models.Announcement, error)
}

// Broadcaster delivers events to connected viewers without blocking.
type Broadcaster interface {
	Broadcast(ev events.Event)
}

// Announcer writes announcements to the log, pushes them to viewers and
// queues them for the external bus.
type Announcer struct {
	store     AnnouncementStore
	hub       Broadcaster
	publisher Publisher
	clock     clockwork.Clock
	publishCh chan models.Announcement

	published     atomic.Uint64
	failed        atomic.Uint64
	dropped       atomic.Uint64
	lastPublishMs atomic.Int64
}

// PublishStats summarizes bus delivery since start.
type PublishStats struct {
	Published     uint64 `json:"published"`
	Failed        uint64 `json:"failed"`
	Dropped       uint64 `json:"dropped"`
	Pending       int    `json:"pending"`
	LastPublishMs int64  `json:"last_publish_ms,omitempty"`
}

// NewAnnouncer creates an announcer. A nil publisher means NoopPublisher.
func NewAnnouncer(store AnnouncementStore, hub Broadcaster, publisher Publisher, clock clockwork.Clock) *Announcer {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Announcer{
		store:     store,
		hub:       hub,
		publisher: publisher,
		clock:     clock,
		publishCh: make(chan models.Announcement, defaultPublishBuffer),
	}
}

// Broadcast forwards a transient event to viewers.
func (a *Announcer) Broadcast(ev events.Event) {
	a.hub.Broadcast(ev)
}

// Announce appends to the log, then broadcasts. Only the log write can fail
// the call; bus delivery happens in Run.
func (a *Announcer) Announce(ctx context.Context, typ events.AnnouncementType, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", typ, err)
	}

	ann, err := a.store.AppendAnnouncement(ctx, a.clock.Now().UnixMilli(), string(typ), raw)
	if err != nil {
		return fmt.Errorf("append %s announcement: %w", typ, err)
	}

	a.hub.Broadcast(events.NewAnnouncement(events.AnnouncementPayload{
		ID:          ann.ID,
		Type:        typ,
		Payload:     payload,
		CreatedAtMs: ann.CreatedAtMs,
	}))

	select {
	case a.publishCh <- *ann:
	default:
		a.dropped.Add(1)
		log.Warn().Int64("announcement_id", ann.ID).Str("type", ann.Type).Msg("publish queue full, dropping announcement")
	}
	return nil
}

// Run publishes queued announcements until ctx is cancelled.
func (a *Announcer) Run(ctx context.Context) {
	log.Info().Msg("announcement publisher started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("announcement publisher shutting down")
			return
		case ann := <-a.publishCh:
			if err := a.publisher.Publish(ctx, ann); err != nil {
				a.failed.Add(1)
				log.Error().Err(err).Int64("announcement_id", ann.ID).Str("type", ann.Type).Msg("failed to publish announcement")
				continue
			}
			a.published.Add(1)
			a.lastPublishMs.Store(a.clock.Now().UnixMilli())
		}
	}
}

// Stats reports delivery counters and the current queue depth.
func (a *Announcer) Stats() PublishStats {
	return PublishStats{
		Published:     a.published.Load(),
		Failed:        a.failed.Load(),
		Dropped:       a.dropped.Load(),
		Pending:       len(a.publishCh),
		LastPublishMs: a.lastPublishMs.Load(),
	}
}

// Connected reports whether the publisher has a live bus connection.
func (a *Announcer) Connected() bool {
	if c, ok := a.publisher.(interface{ Connected() bool }); ok {
		return c.Connected()
	}
	return true
}
