package clock

import (
	"context"
	"errors"

	"github.com/mcdev12/tourney/go/internal/events"
	"github.com/mcdev12/tourney/go/internal/models"
)

// ErrInvalidSchedule is returned when a settings update fails validation.
var ErrInvalidSchedule = errors.New("invalid schedule")

// StateStore persists the engine's authoritative state and the settings blob.
type StateStore interface {
	LoadClockState(ctx context.Context) (*models.ClockState, error)
	SaveClockState(ctx context.Context, st models.ClockState) error
	LoadSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error
}

// Notifier fans events out to viewers and records durable announcements.
// Broadcast must not block.
type Notifier interface {
	Broadcast(ev events.Event)
	Announce(ctx context.Context, typ events.AnnouncementType, payload any) error
}
