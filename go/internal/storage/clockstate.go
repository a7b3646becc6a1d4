package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mcdev12/tourney/go/internal/models"
	"github.com/mcdev12/tourney/go/internal/sqlutil"
)

// LoadClockState returns the persisted clock state or ErrNotFound.
func (s *Store) LoadClockState(ctx context.Context) (*models.ClockState, error) {
	var (
		st      models.ClockState
		running int64
	)
	err := s.queries().queryRow(ctx, `
		SELECT level_index, remaining_ms, finish_at_ms, running, updated_at_ms
		FROM clock_state WHERE id = 1
	`).Scan(&st.LevelIndex, &st.RemainingMs, &st.FinishAtMs, &running, &st.UpdatedAtMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load clock state: %w", err)
	}
	st.Running = sqlutil.IntToBool(running)
	return &st, nil
}

// SaveClockState upserts the singleton clock state row.
func (s *Store) SaveClockState(ctx context.Context, st models.ClockState) error {
	_, err := s.queries().exec(ctx, `
		INSERT INTO clock_state (id, level_index, remaining_ms, finish_at_ms, running, updated_at_ms)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			level_index = excluded.level_index,
			remaining_ms = excluded.remaining_ms,
			finish_at_ms = excluded.finish_at_ms,
			running = excluded.running,
			updated_at_ms = excluded.updated_at_ms
	`, st.LevelIndex, st.RemainingMs, st.FinishAtMs, sqlutil.BoolToInt(st.Running), st.UpdatedAtMs)
	if err != nil {
		return fmt.Errorf("failed to save clock state: %w", err)
	}
	return nil
}
