package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/tourney/go/internal/events"
	"github.com/mcdev12/tourney/go/internal/models"
)

type memoryLog struct {
	mu   sync.Mutex
	rows []models.Announcement
	fail bool
}

func (m *memoryLog) AppendAnnouncement(_ context.Context, createdAtMs int64, typ string, payload json.RawMessage) (*models.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("database is locked")
	}
	ann := models.Announcement{ID: int64(len(m.rows) + 1), CreatedAtMs: createdAtMs, Type: typ, Payload: payload}
	m.rows = append(m.rows, ann)
	return &ann, nil
}

type captureHub struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *captureHub) Broadcast(ev events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

type capturePublisher struct {
	published chan models.Announcement
	err       error
}

func (c *capturePublisher) Publish(_ context.Context, ann models.Announcement) error {
	c.published <- ann
	return c.err
}

func (c *capturePublisher) Close() error { return nil }

func TestAnnounceRecordsBroadcastsAndPublishes(t *testing.T) {
	store := &memoryLog{}
	hub := &captureHub{}
	pub := &capturePublisher{published: make(chan models.Announcement, 1), err: errors.New("nats down")}
	fc := clockwork.NewFakeClockAt(time.UnixMilli(5_000))
	a := NewAnnouncer(store, hub, pub, fc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	payload := events.LevelPayload{LevelIndex: 3}
	if err := a.Announce(ctx, events.AnnouncementLevelStart, payload); err != nil {
		t.Fatalf("Announce() error = %v", err)
	}

	if len(store.rows) != 1 || store.rows[0].Type != "level_start" || store.rows[0].CreatedAtMs != 5_000 {
		t.Fatalf("stored rows = %+v", store.rows)
	}
	if string(store.rows[0].Payload) != `{"level_index":3,"level":{"type":"","duration_minutes":0,"small_blind":0,"big_blind":0,"ante":0}}` {
		t.Fatalf("stored payload = %s", store.rows[0].Payload)
	}

	if len(hub.events) != 1 || hub.events[0].Type != events.TypeAnnouncement {
		t.Fatalf("broadcast = %+v", hub.events)
	}
	ap := hub.events[0].Payload.(events.AnnouncementPayload)
	if ap.ID != 1 || ap.Type != events.AnnouncementLevelStart || ap.CreatedAtMs != 5_000 {
		t.Fatalf("announcement payload = %+v", ap)
	}

	select {
	case got := <-pub.published:
		if got.ID != 1 {
			t.Fatalf("published id = %d", got.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("announcement never published")
	}
}

func TestAnnounceStoreFailure(t *testing.T) {
	hub := &captureHub{}
	a := NewAnnouncer(&memoryLog{fail: true}, hub, nil, nil)

	err := a.Announce(context.Background(), events.AnnouncementDeseat, events.SeatingPayload{})
	if err == nil {
		t.Fatal("expected error when the log write fails")
	}
	if len(hub.events) != 0 {
		t.Fatal("failed announcement must not be broadcast")
	}
}

func TestBroadcastPassesThrough(t *testing.T) {
	hub := &captureHub{}
	a := NewAnnouncer(&memoryLog{}, hub, NoopPublisher{}, nil)

	a.Broadcast(events.NewSound(events.SoundPayload{Cue: events.CueStart}))
	if len(hub.events) != 1 || hub.events[0].Type != events.TypeSound {
		t.Fatalf("events = %+v", hub.events)
	}
}

func TestPublishQueueDropsWhenFull(t *testing.T) {
	store := &memoryLog{}
	a := NewAnnouncer(store, &captureHub{}, nil, nil)

	// Run is not started, so nothing drains the queue
	for i := 0; i < defaultPublishBuffer+5; i++ {
		if err := a.Announce(context.Background(), events.AnnouncementRebalance, events.SeatingPayload{}); err != nil {
			t.Fatalf("Announce() error = %v", err)
		}
	}
	if len(store.rows) != defaultPublishBuffer+5 {
		t.Fatalf("stored %d rows", len(store.rows))
	}
	if len(a.publishCh) != defaultPublishBuffer {
		t.Fatalf("queued %d", len(a.publishCh))
	}
	if st := a.Stats(); st.Dropped != 5 || st.Pending != defaultPublishBuffer {
		t.Fatalf("Stats() = %+v", st)
	}
}
