package models

import (
	"errors"
	"fmt"
)

// DefaultMinPlayersPerTable is used when settings leave the seating minimum unset.
const DefaultMinPlayersPerTable = 4

// Sounds maps milestone cues to audio references served to viewers.
type Sounds struct {
	Start  string `json:"start,omitempty" yaml:"start"`
	Half   string `json:"half,omitempty" yaml:"half"`
	Thirty string `json:"thirty,omitempty" yaml:"thirty"`
	Five   string `json:"five,omitempty" yaml:"five"`
	End    string `json:"end,omitempty" yaml:"end"`
}

// SeatingConfig holds allocator tuning.
type SeatingConfig struct {
	MinPlayersPerTable int `json:"min_players_per_table" yaml:"min_players_per_table"`
}

// Settings is the persisted settings blob: the schedule plus sounds and seating config.
type Settings struct {
	Levels  []Level       `json:"levels" yaml:"levels"`
	Sounds  Sounds        `json:"sounds" yaml:"sounds"`
	Seating SeatingConfig `json:"seating" yaml:"seating"`
}

// MinPlayersPerTable returns the configured minimum, falling back to the default.
func (s Settings) MinPlayersPerTable() int {
	if s.Seating.MinPlayersPerTable < 1 {
		return DefaultMinPlayersPerTable
	}
	return s.Seating.MinPlayersPerTable
}

// Validate checks the schedule and seating config.
func (s Settings) Validate() error {
	if len(s.Levels) == 0 {
		return errors.New("levels must be a non-empty list")
	}
	for i, l := range s.Levels {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("level %d: %w", i, err)
		}
	}
	if s.Seating.MinPlayersPerTable < 0 {
		return errors.New("min_players_per_table must not be negative")
	}
	return nil
}

// DefaultSettings returns the schedule seeded into an empty store.
func DefaultSettings() Settings {
	regular := func(sb, bb int64) Level {
		return Level{Type: LevelTypeRegular, DurationMinutes: 20, SmallBlind: sb, BigBlind: bb}
	}
	brk := Level{Type: LevelTypeBreak, DurationMinutes: 10}

	return Settings{
		Levels: []Level{
			regular(10, 20),
			regular(20, 40),
			regular(50, 100),
			brk,
			regular(100, 200),
			regular(150, 300),
			regular(250, 500),
			regular(400, 800),
			brk,
			regular(700, 1400),
			regular(1250, 2500),
			regular(2000, 4000),
			regular(3500, 7000),
			regular(7000, 14000),
		},
		Seating: SeatingConfig{MinPlayersPerTable: DefaultMinPlayersPerTable},
	}
}
