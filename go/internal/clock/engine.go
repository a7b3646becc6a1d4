package clock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/tourney/go/internal/events"
	"github.com/mcdev12/tourney/go/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTickInterval    = 250 * time.Millisecond
	DefaultPersistInterval = time.Second
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the real clock, typically with a clockwork.FakeClock.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithTickInterval sets how often the running clock is re-evaluated.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tickInterval = d
		}
	}
}

// WithPersistInterval bounds how stale the durable clock state may get.
func WithPersistInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.persistInterval = d
		}
	}
}

// Engine is the authoritative countdown. All state is guarded by mu, and
// both the tick loop and operator commands take it.
type Engine struct {
	store    StateStore
	notifier Notifier
	clock    clockwork.Clock

	tickInterval    time.Duration
	persistInterval time.Duration

	mu          sync.Mutex
	settings    models.Settings
	levelIndex  int
	state       timing
	milestones  milestoneFlags
	lastPersist time.Time
	playID      int64
}

// New creates an engine. Call Load before Run.
func New(store StateStore, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		notifier:        notifier,
		clock:           clockwork.NewRealClock(),
		tickInterval:    DefaultTickInterval,
		persistInterval: DefaultPersistInterval,
		settings:        models.DefaultSettings(),
		state:           paused{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load restores settings and clock state from the store. A running clock
// with no stored finish time is recovered from remaining_ms and updated_at_ms.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	settings, err := e.store.LoadSettings(ctx)
	switch {
	case errors.Is(err, models.ErrNotFound):
		log.Info().Msg("no stored settings, using default schedule")
	case err != nil:
		return fmt.Errorf("failed to load settings: %w", err)
	default:
		e.settings = *settings
	}

	now := e.nowMs()
	e.milestones = milestoneFlags{}

	st, err := e.store.LoadClockState(ctx)
	if errors.Is(err, models.ErrNotFound) {
		e.levelIndex = 0
		e.state = paused{remainingMs: e.levelDurationMs()}
		log.Info().Msg("no stored clock state, starting paused at level 0")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load clock state: %w", err)
	}

	e.levelIndex = clampIndex(st.LevelIndex, len(e.settings.Levels))
	if st.Running {
		finish := st.FinishAtMs
		if finish <= 0 {
			elapsed := now - st.UpdatedAtMs
			finish = now + max(0, st.RemainingMs-elapsed)
		}
		e.state = running{finishAtMs: finish}
	} else {
		e.state = paused{remainingMs: max(0, st.RemainingMs)}
	}
	if rem := e.state.remaining(now); rem > e.levelDurationMs() {
		e.state = withRemaining(e.state, now, e.levelDurationMs())
	}

	log.Info().
		Int("level_index", e.levelIndex).
		Bool("running", e.state.isRunning()).
		Int64("remaining_ms", e.state.remaining(now)).
		Msg("clock state restored")
	return nil
}

// Run ticks until ctx is cancelled. Close writes the final state.
func (e *Engine) Run(ctx context.Context) error {
	ticker := e.clock.NewTicker(e.tickInterval)
	defer ticker.Stop()

	log.Info().Dur("tick_interval", e.tickInterval).Msg("clock engine started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("clock engine shutting down")
			return nil
		case <-ticker.Chan():
			e.tick(ctx)
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.nowMs()
	if e.state.isRunning() && len(e.settings.Levels) > 0 {
		rem := e.state.remaining(now)
		for _, cue := range e.milestones.due(rem, e.levelDurationMs()) {
			e.soundLocked(cue)
		}
		if rem == 0 {
			e.advanceLocked(ctx, now)
			e.persistLocked(ctx, now)
			e.broadcastLocked(now)
			return
		}
	}
	if e.clock.Since(e.lastPersist) >= e.persistInterval {
		e.persistLocked(ctx, now)
	}
}

// advanceLocked ends the current level and starts the next one, or
// completes the schedule.
func (e *Engine) advanceLocked(ctx context.Context, now int64) {
	ended := e.levelIndex
	e.soundLocked(events.CueEnd)
	e.announceLocked(ctx, events.AnnouncementLevelEnd, events.LevelPayload{
		LevelIndex: ended,
		Level:      e.settings.Levels[ended],
	})

	if ended+1 >= len(e.settings.Levels) {
		e.state = paused{remainingMs: 0}
		log.Info().Int("level_index", ended).Msg("schedule complete")
		e.announceLocked(ctx, events.AnnouncementScheduleComplete, events.LevelPayload{
			LevelIndex: ended,
			Level:      e.settings.Levels[ended],
		})
		return
	}

	e.levelIndex = ended + 1
	e.milestones = milestoneFlags{}
	e.state = withRemaining(e.state, now, e.levelDurationMs())
	log.Info().Int("level_index", e.levelIndex).Msg("level started")
	e.announceLocked(ctx, events.AnnouncementLevelStart, events.LevelPayload{
		LevelIndex: e.levelIndex,
		Level:      e.settings.Levels[e.levelIndex],
	})
}

// Pause stops the countdown, keeping the remaining time.
func (e *Engine) Pause(ctx context.Context) events.StatePayload {
	return e.command(ctx, "pause", func(now int64) {
		if e.state.isRunning() {
			e.state = paused{remainingMs: e.state.remaining(now)}
		}
	})
}

// Resume restarts the countdown from the remaining time. A completed
// schedule stays paused.
func (e *Engine) Resume(ctx context.Context) events.StatePayload {
	return e.command(ctx, "resume", func(now int64) {
		if e.state.isRunning() || len(e.settings.Levels) == 0 || e.exhaustedLocked(now) {
			return
		}
		e.state = running{finishAtMs: now + e.state.remaining(now)}
	})
}

// AddTime shifts the remaining time by deltaMs, which may be negative.
// Remaining time never drops below zero and a finish time never falls
// before now.
func (e *Engine) AddTime(ctx context.Context, deltaMs int64) events.StatePayload {
	return e.command(ctx, "add_time", func(now int64) {
		switch st := e.state.(type) {
		case running:
			e.state = running{finishAtMs: max(now, st.finishAtMs+deltaMs)}
		case paused:
			e.state = paused{remainingMs: max(0, st.remainingMs+deltaMs)}
		}
	})
}

// ResetLevel restores the current level's full duration.
func (e *Engine) ResetLevel(ctx context.Context) events.StatePayload {
	return e.command(ctx, "reset_level", func(now int64) {
		if len(e.settings.Levels) == 0 {
			return
		}
		e.milestones = milestoneFlags{}
		e.state = withRemaining(e.state, now, e.levelDurationMs())
	})
}

// GoToLevel jumps to index, clamped to the schedule.
func (e *Engine) GoToLevel(ctx context.Context, index int) events.StatePayload {
	return e.command(ctx, "go_to_level", func(now int64) {
		if len(e.settings.Levels) == 0 {
			return
		}
		e.levelIndex = clampIndex(index, len(e.settings.Levels))
		e.milestones = milestoneFlags{}
		e.state = withRemaining(e.state, now, e.levelDurationMs())
	})
}

// UpdateSettings validates and stores new settings, then applies them.
func (e *Engine) UpdateSettings(ctx context.Context, settings models.Settings) (events.StatePayload, error) {
	if err := settings.Validate(); err != nil {
		return events.StatePayload{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.SaveSettings(ctx, settings); err != nil {
		return events.StatePayload{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return e.applySettingsLocked(ctx, settings), nil
}

// ReloadSettings re-reads settings written by another process.
func (e *Engine) ReloadSettings(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	settings, err := e.store.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	e.applySettingsLocked(ctx, *settings)
	return nil
}

// applySettingsLocked installs settings and clamps the current level so
// remaining time never exceeds the new duration.
func (e *Engine) applySettingsLocked(ctx context.Context, settings models.Settings) events.StatePayload {
	now := e.nowMs()
	e.settings = settings

	if e.levelIndex >= len(settings.Levels) {
		e.levelIndex = clampIndex(e.levelIndex, len(settings.Levels))
		e.milestones = milestoneFlags{}
		e.state = withRemaining(e.state, now, e.levelDurationMs())
	} else if rem := e.state.remaining(now); rem > e.levelDurationMs() {
		e.state = withRemaining(e.state, now, e.levelDurationMs())
	}

	log.Info().
		Int("levels", len(settings.Levels)).
		Int("level_index", e.levelIndex).
		Msg("settings applied")
	e.persistLocked(ctx, now)
	return e.broadcastLocked(now)
}

// Settings returns the active settings.
func (e *Engine) Settings() models.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Snapshot returns the current state as sent to viewers.
func (e *Engine) Snapshot() events.StatePayload {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(e.nowMs())
}

// State returns the state in its persisted shape.
func (e *Engine) State() models.ClockState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clockStateLocked(e.nowMs())
}

// Close writes a final state.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.nowMs()
	if err := e.store.SaveClockState(ctx, e.clockStateLocked(now)); err != nil {
		return fmt.Errorf("failed to save final clock state: %w", err)
	}
	return nil
}

func (e *Engine) command(ctx context.Context, name string, mutate func(now int64)) events.StatePayload {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.nowMs()
	mutate(now)
	log.Info().
		Str("command", name).
		Int("level_index", e.levelIndex).
		Bool("running", e.state.isRunning()).
		Int64("remaining_ms", e.state.remaining(now)).
		Msg("clock command applied")
	e.persistLocked(ctx, now)
	return e.broadcastLocked(now)
}

// persistLocked writes state. On failure lastPersist is left alone so the
// next tick retries.
func (e *Engine) persistLocked(ctx context.Context, now int64) {
	if err := e.store.SaveClockState(ctx, e.clockStateLocked(now)); err != nil {
		log.Warn().Err(err).Msg("failed to persist clock state")
		return
	}
	e.lastPersist = e.clock.Now()
}

func (e *Engine) broadcastLocked(now int64) events.StatePayload {
	snap := e.snapshotLocked(now)
	e.notifier.Broadcast(events.NewState(snap))
	return snap
}

func (e *Engine) soundLocked(cue events.Cue) {
	e.playID++
	log.Debug().Str("cue", string(cue)).Int("level_index", e.levelIndex).Msg("sound cue")
	e.notifier.Broadcast(events.NewSound(events.SoundPayload{
		Cue:            cue,
		AudioReference: audioFor(cue, e.settings.Sounds),
		PlayID:         e.playID,
	}))
}

func (e *Engine) announceLocked(ctx context.Context, typ events.AnnouncementType, payload any) {
	if err := e.notifier.Announce(ctx, typ, payload); err != nil {
		log.Error().Err(err).Str("type", string(typ)).Msg("failed to record announcement")
	}
}

func (e *Engine) snapshotLocked(now int64) events.StatePayload {
	snap := events.StatePayload{
		LevelIndex:   e.levelIndex,
		Running:      e.state.isRunning(),
		ServerTimeMs: now,
		Schedule:     e.settings.Levels,
		Sounds:       e.settings.Sounds,
	}
	switch st := e.state.(type) {
	case running:
		finish := st.finishAtMs
		snap.FinishAtMs = &finish
	case paused:
		secs := st.remainingMs / 1000
		snap.RemainingSeconds = &secs
	}
	return snap
}

func (e *Engine) clockStateLocked(now int64) models.ClockState {
	st := models.ClockState{
		LevelIndex:  e.levelIndex,
		Running:     e.state.isRunning(),
		RemainingMs: e.state.remaining(now),
		UpdatedAtMs: now,
	}
	if r, ok := e.state.(running); ok {
		st.FinishAtMs = r.finishAtMs
	}
	return st
}

func (e *Engine) exhaustedLocked(now int64) bool {
	return e.levelIndex == len(e.settings.Levels)-1 && e.state.remaining(now) == 0
}

func (e *Engine) levelDurationMs() int64 {
	if e.levelIndex < 0 || e.levelIndex >= len(e.settings.Levels) {
		return 0
	}
	return e.settings.Levels[e.levelIndex].Duration().Milliseconds()
}

func (e *Engine) nowMs() int64 {
	return e.clock.Now().UnixMilli()
}

func clampIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(i, 0), n-1)
}
