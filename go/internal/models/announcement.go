package models

import "encoding/json"

// Announcement is an immutable entry of the append-only announcement log.
type Announcement struct {
	ID          int64           `json:"id"`
	CreatedAtMs int64           `json:"created_at_ms"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
}
