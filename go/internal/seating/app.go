package seating

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/tourney/go/internal/events"
	"github.com/mcdev12/tourney/go/internal/models"
	"github.com/mcdev12/tourney/go/internal/storage"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTableSeats = 9
	MinTableSeats     = 2
	MaxTableSeats     = 12
)

// Repository is the storage the seating app needs.
type Repository interface {
	ListParticipants(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, error)
	GetParticipant(ctx context.Context, id string) (*models.Participant, error)
	CreateParticipant(ctx context.Context, name string, createdAtMs int64) (*models.Participant, error)
	UpdateParticipant(ctx context.Context, id string, upd storage.ParticipantUpdate) (*models.Participant, error)
	DeleteParticipant(ctx context.Context, id string) error

	ListTables(ctx context.Context) ([]models.Table, error)
	CreateTable(ctx context.Context, name string, seats int, createdAtMs int64) (*models.Table, error)
	UpdateTable(ctx context.Context, id string, upd storage.TableUpdate) (*models.Table, error)
	DeleteTable(ctx context.Context, id string) error

	ListSeats(ctx context.Context) ([]models.SeatAssignment, error)
	NormalizeSeats(ctx context.Context) error
	ReplaceAssignments(ctx context.Context, assignments map[string]models.SeatKey) error
	ApplySeatUpdates(ctx context.Context, updates []models.SeatAssignment) error
}

// Announcer records durable announcements.
type Announcer interface {
	Announce(ctx context.Context, typ events.AnnouncementType, payload any) error
}

// SettingsSource supplies the current seating config.
type SettingsSource interface {
	Settings() models.Settings
}

// Result is the outcome of a bulk seating operation. A shortfall leaves
// seating untouched.
type Result struct {
	Message   string          `json:"message"`
	Changes   []events.Change `json:"changes"`
	Shortfall bool            `json:"shortfall,omitempty"`
}

// App serializes every seating mutation behind one lock.
type App struct {
	repo      Repository
	announcer Announcer
	settings  SettingsSource
	clock     clockwork.Clock
	tracer    trace.Tracer

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures an App.
type Option func(*App)

// WithRand fixes the shuffle source.
func WithRand(rng *rand.Rand) Option {
	return func(a *App) { a.rng = rng }
}

// WithClock replaces the clock used for creation timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(a *App) { a.clock = c }
}

// NewApp creates a seating app.
func NewApp(repo Repository, announcer Announcer, settings SettingsSource, opts ...Option) *App {
	a := &App{
		repo:      repo,
		announcer: announcer,
		settings:  settings,
		clock:     clockwork.NewRealClock(),
		tracer:    otel.Tracer("github.com/mcdev12/tourney/go/internal/seating"),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Randomize reseats everyone from scratch.
func (a *App) Randomize(ctx context.Context) (*Result, error) {
	return a.runBulk(ctx, events.AnnouncementRandomize, func(snap Snapshot, minPer int) Plan {
		return PlanRandomize(snap, minPer, a.rng)
	})
}

// Rebalance evens out tables, moving as few participants as possible.
func (a *App) Rebalance(ctx context.Context) (*Result, error) {
	return a.runBulk(ctx, events.AnnouncementRebalance, func(snap Snapshot, minPer int) Plan {
		return PlanRebalance(snap, minPer)
	})
}

// Deseat clears every seat.
func (a *App) Deseat(ctx context.Context) (*Result, error) {
	return a.runBulk(ctx, events.AnnouncementDeseat, func(snap Snapshot, _ int) Plan {
		return PlanDeseat(snap)
	})
}

func (a *App) runBulk(ctx context.Context, typ events.AnnouncementType, plan func(Snapshot, int) Plan) (*Result, error) {
	ctx, span := a.tracer.Start(ctx, "seating."+string(typ))
	defer span.End()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.repo.NormalizeSeats(ctx); err != nil {
		return nil, fmt.Errorf("failed to normalize seats: %w", err)
	}
	snap, err := a.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	minPer := a.settings.Settings().MinPlayersPerTable()
	p := plan(snap, minPer)
	span.SetAttributes(
		attribute.Int("seating.changes", len(p.Changes)),
		attribute.Bool("seating.shortfall", p.Shortfall),
	)
	result := &Result{Message: p.Message, Changes: p.Changes, Shortfall: p.Shortfall}
	if p.Shortfall {
		log.Warn().Str("operation", string(typ)).Msg(p.Message)
		return result, nil
	}

	if err := a.repo.ReplaceAssignments(ctx, p.Assignments); err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", typ, err)
	}

	log.Info().
		Str("operation", string(typ)).
		Int("changes", len(p.Changes)).
		Int("min_players_per_table", minPer).
		Msg("seating applied")

	payload := events.SeatingPayload{Message: p.Message, Changes: p.Changes}
	if err := a.announcer.Announce(ctx, typ, payload); err != nil {
		log.Error().Err(err).Str("operation", string(typ)).Msg("failed to announce seating change")
	}
	return result, nil
}

// Move places one participant at a seat, swapping or evicting the occupant.
func (a *App) Move(ctx context.Context, req MoveRequest) (*MoveResult, error) {
	ctx, span := a.tracer.Start(ctx, "seating.move", trace.WithAttributes(
		attribute.String("participant_id", req.ParticipantID),
		attribute.String("table_id", req.To.TableID),
		attribute.Int("seat_num", req.To.SeatNum),
	))
	defer span.End()

	if req.Mode == "" {
		req.Mode = MoveModeSwap
	}
	if req.Mode != MoveModeSwap && req.Mode != MoveModeMove {
		return nil, fmt.Errorf("%w: unknown move mode %q", ErrInvalidInput, req.Mode)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.repo.GetParticipant(ctx, req.ParticipantID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	seats, err := a.repo.ListSeats(ctx)
	if err != nil {
		return nil, err
	}

	updates, res, err := PlanMove(seats, req)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return &res, nil
	}
	if err := a.repo.ApplySeatUpdates(ctx, updates); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSeatNotFound
		}
		return nil, fmt.Errorf("failed to move participant: %w", err)
	}

	log.Info().
		Str("participant_id", req.ParticipantID).
		Str("table_id", req.To.TableID).
		Int("seat_num", req.To.SeatNum).
		Str("mode", string(res.Mode)).
		Str("swapped_participant_id", res.SwappedParticipantID).
		Msg("participant moved")
	return &res, nil
}

func (a *App) snapshot(ctx context.Context) (Snapshot, error) {
	tables, err := a.repo.ListTables(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	participants, err := a.repo.ListParticipants(ctx, models.ParticipantFilter{})
	if err != nil {
		return Snapshot{}, err
	}
	seats, err := a.repo.ListSeats(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Tables: tables, Participants: participants, Seats: seats}, nil
}
