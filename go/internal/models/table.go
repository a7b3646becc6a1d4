package models

// Table is a physical table. Disabled tables keep their seat rows but are
// excluded from allocation.
type Table struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Seats       int    `json:"seats"`
	Enabled     bool   `json:"enabled"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

// SeatKey addresses one seat.
type SeatKey struct {
	TableID string `json:"table_id"`
	SeatNum int    `json:"seat_num"`
}

// SeatAssignment is one seat row. ParticipantID is empty when the seat is open.
type SeatAssignment struct {
	TableID       string `json:"table_id"`
	TableName     string `json:"table_name,omitempty"`
	SeatNum       int    `json:"seat_num"`
	ParticipantID string `json:"participant_id,omitempty"`
}

// Key returns the seat address.
func (s SeatAssignment) Key() SeatKey {
	return SeatKey{TableID: s.TableID, SeatNum: s.SeatNum}
}
