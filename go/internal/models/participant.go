package models

// Participant is a person competing in the event.
type Participant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Eliminated  bool   `json:"eliminated"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

// ParticipantFilter narrows ListParticipants.
type ParticipantFilter struct {
	Query      string
	Eliminated *bool
}
