package models

import (
	"errors"
	"fmt"
	"time"
)

// LevelType defines whether a level is played or a break.
type LevelType string

const (
	LevelTypeRegular LevelType = "regular"
	LevelTypeBreak   LevelType = "break"
)

// Level is one timed segment of the schedule.
type Level struct {
	Type            LevelType `json:"type" yaml:"type"`
	DurationMinutes int       `json:"duration_minutes" yaml:"duration_minutes"`
	SmallBlind      int64     `json:"small_blind" yaml:"small_blind"`
	BigBlind        int64     `json:"big_blind" yaml:"big_blind"`
	Ante            int64     `json:"ante" yaml:"ante"`
}

// Duration returns the full length of the level.
func (l Level) Duration() time.Duration {
	return time.Duration(l.DurationMinutes) * time.Minute
}

// Validate checks a single level.
func (l Level) Validate() error {
	if l.DurationMinutes <= 0 {
		return errors.New("duration_minutes must be greater than zero")
	}
	switch l.Type {
	case LevelTypeRegular, LevelTypeBreak:
	default:
		return fmt.Errorf("unknown level type %q", l.Type)
	}
	if l.SmallBlind < 0 || l.BigBlind < 0 || l.Ante < 0 {
		return errors.New("blinds and ante must not be negative")
	}
	return nil
}
