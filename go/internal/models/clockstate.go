package models

// ClockState is the persisted shape of the clock engine.
// RemainingMs is authoritative while paused, FinishAtMs while running.
type ClockState struct {
	LevelIndex  int   `json:"level_index"`
	Running     bool  `json:"running"`
	RemainingMs int64 `json:"remaining_ms"`
	FinishAtMs  int64 `json:"finish_at_ms"`
	UpdatedAtMs int64 `json:"updated_at_ms"`
}
