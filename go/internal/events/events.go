package events

import (
	"github.com/mcdev12/tourney/go/internal/models"
)

// Type tags every event delivered to viewers.
type Type string

const (
	TypeState        Type = "state"
	TypeAnnouncement Type = "announcement"
	TypeSound        Type = "sound"
)

// AnnouncementType names a durable announcement.
type AnnouncementType string

const (
	AnnouncementLevelStart       AnnouncementType = "level_start"
	AnnouncementLevelEnd         AnnouncementType = "level_end"
	AnnouncementScheduleComplete AnnouncementType = "schedule_complete"
	AnnouncementRebalance        AnnouncementType = "rebalance"
	AnnouncementRandomize        AnnouncementType = "randomize"
	AnnouncementDeseat           AnnouncementType = "deseat"
)

// Cue names a sound milestone.
type Cue string

const (
	CueStart  Cue = "start"
	CueHalf   Cue = "half"
	CueThirty Cue = "thirty"
	CueFive   Cue = "five"
	CueEnd    Cue = "end"
)

// Event is the envelope written to subscribers.
type Event struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload"`
}

// StatePayload is a full resync snapshot of the clock. Exactly one of
// FinishAtMs and RemainingSeconds is set, depending on Running.
type StatePayload struct {
	LevelIndex       int            `json:"level_index"`
	Running          bool           `json:"running"`
	ServerTimeMs     int64          `json:"server_time_ms"`
	FinishAtMs       *int64         `json:"finish_at_ms,omitempty"`
	RemainingSeconds *int64         `json:"remaining_seconds,omitempty"`
	Schedule         []models.Level `json:"schedule"`
	Sounds           models.Sounds  `json:"sounds"`
}

// AnnouncementPayload mirrors a stored announcement.
type AnnouncementPayload struct {
	ID          int64            `json:"id,omitempty"`
	Type        AnnouncementType `json:"type"`
	Payload     any              `json:"payload"`
	CreatedAtMs int64            `json:"created_at_ms"`
}

// SoundPayload asks viewers to play a cue once.
type SoundPayload struct {
	Cue            Cue    `json:"cue"`
	AudioReference string `json:"audio_reference,omitempty"`
	PlayID         int64  `json:"play_id"`
}

// LevelPayload is the payload of level_start and level_end announcements.
type LevelPayload struct {
	LevelIndex int          `json:"level_index"`
	Level      models.Level `json:"level"`
}

// Change is one participant's seat move in an allocator change list.
// Nil From fields mean the participant was unseated before; nil To fields
// mean they are unseated after.
type Change struct {
	ParticipantID string  `json:"participant_id"`
	Name          string  `json:"name"`
	FromTable     *string `json:"from_table"`
	FromSeat      *int    `json:"from_seat"`
	ToTable       *string `json:"to_table"`
	ToSeat        *int    `json:"to_seat"`
}

// SeatingPayload is the payload of randomize, rebalance and deseat announcements.
type SeatingPayload struct {
	Message string   `json:"message"`
	Changes []Change `json:"changes"`
}

// NewState wraps a state snapshot.
func NewState(p StatePayload) Event {
	return Event{Type: TypeState, Payload: p}
}

// NewSound wraps a sound cue.
func NewSound(p SoundPayload) Event {
	return Event{Type: TypeSound, Payload: p}
}

// NewAnnouncement wraps an announcement.
func NewAnnouncement(p AnnouncementPayload) Event {
	return Event{Type: TypeAnnouncement, Payload: p}
}
