package clock

import (
	"github.com/mcdev12/tourney/go/internal/events"
	"github.com/mcdev12/tourney/go/internal/models"
)

const (
	thirtySecondsMs = 30_000
	fiveSecondsMs   = 5_000
)

type milestoneFlags struct {
	start  bool
	half   bool
	thirty bool
	five   bool
}

// due marks and returns the cues crossed at remainingMs, in firing order.
func (m *milestoneFlags) due(remainingMs, durationMs int64) []events.Cue {
	var cues []events.Cue
	if !m.start {
		m.start = true
		cues = append(cues, events.CueStart)
	}
	if !m.half && remainingMs <= durationMs/2 {
		m.half = true
		cues = append(cues, events.CueHalf)
	}
	if !m.thirty && remainingMs <= thirtySecondsMs {
		m.thirty = true
		cues = append(cues, events.CueThirty)
	}
	if !m.five && remainingMs <= fiveSecondsMs {
		m.five = true
		cues = append(cues, events.CueFive)
	}
	return cues
}

func audioFor(cue events.Cue, s models.Sounds) string {
	switch cue {
	case events.CueStart:
		return s.Start
	case events.CueHalf:
		return s.Half
	case events.CueThirty:
		return s.Thirty
	case events.CueFive:
		return s.Five
	case events.CueEnd:
		return s.End
	}
	return ""
}
