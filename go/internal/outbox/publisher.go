package outbox

import (
	"context"

	"github.com/mcdev12/tourney/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Publisher forwards stored announcements to an external bus.
type Publisher interface {
	Publish(ctx context.Context, ann models.Announcement) error
	Close() error
}

// NoopPublisher is used when no bus is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, ann models.Announcement) error {
	log.Debug().Int64("announcement_id", ann.ID).Str("type", ann.Type).Msg("no bus configured, skipping publish")
	return nil
}

func (NoopPublisher) Close() error { return nil }
