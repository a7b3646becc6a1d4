package seating

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mcdev12/tourney/go/internal/models"
	"github.com/mcdev12/tourney/go/internal/storage"
	"github.com/rs/zerolog/log"
)

// AddParticipant registers a new participant.
func (a *App) AddParticipant(ctx context.Context, name string) (*models.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.repo.CreateParticipant(ctx, name, a.clock.Now().UnixMilli())
	if err != nil {
		return nil, err
	}
	log.Info().Str("participant_id", p.ID).Str("name", p.Name).Msg("participant added")
	return p, nil
}

// UpdateParticipant renames a participant or toggles elimination.
func (a *App) UpdateParticipant(ctx context.Context, id string, upd storage.ParticipantUpdate) (*models.Participant, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		upd.Name = &name
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.repo.UpdateParticipant(ctx, id, upd)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	log.Info().Str("participant_id", p.ID).Bool("eliminated", p.Eliminated).Msg("participant updated")
	return p, nil
}

// DeleteParticipant removes a participant and vacates their seat.
func (a *App) DeleteParticipant(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.repo.DeleteParticipant(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrParticipantNotFound
		}
		return err
	}
	log.Info().Str("participant_id", id).Msg("participant deleted")
	return nil
}

// ListParticipants returns participants in creation order.
func (a *App) ListParticipants(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, error) {
	return a.repo.ListParticipants(ctx, filter)
}

// AddTable creates an enabled table. Zero seats means the default size.
func (a *App) AddTable(ctx context.Context, name string, seats int) (*models.Table, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if seats == 0 {
		seats = DefaultTableSeats
	}
	if err := validateSeats(seats); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	t, err := a.repo.CreateTable(ctx, name, seats, a.clock.Now().UnixMilli())
	if err != nil {
		return nil, err
	}
	log.Info().Str("table_id", t.ID).Str("name", t.Name).Int("seats", t.Seats).Msg("table added")
	return t, nil
}

// UpdateTable renames, resizes, enables or disables a table.
func (a *App) UpdateTable(ctx context.Context, id string, upd storage.TableUpdate) (*models.Table, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		upd.Name = &name
	}
	if upd.Seats != nil {
		if err := validateSeats(*upd.Seats); err != nil {
			return nil, err
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	t, err := a.repo.UpdateTable(ctx, id, upd)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	log.Info().Str("table_id", t.ID).Int("seats", t.Seats).Bool("enabled", t.Enabled).Msg("table updated")
	return t, nil
}

// DeleteTable removes a table; its occupants become unseated.
func (a *App) DeleteTable(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.repo.DeleteTable(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTableNotFound
		}
		return err
	}
	log.Info().Str("table_id", id).Msg("table deleted")
	return nil
}

// ListTables returns tables in creation order.
func (a *App) ListTables(ctx context.Context) ([]models.Table, error) {
	return a.repo.ListTables(ctx)
}

// ListSeats returns every seat row.
func (a *App) ListSeats(ctx context.Context) ([]models.SeatAssignment, error) {
	return a.repo.ListSeats(ctx)
}

func validateSeats(seats int) error {
	if seats < MinTableSeats || seats > MaxTableSeats {
		return fmt.Errorf("%w: seats must be %d..%d", ErrInvalidInput, MinTableSeats, MaxTableSeats)
	}
	return nil
}
