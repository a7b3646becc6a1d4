package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/tourney/go/internal/models"
	"github.com/mcdev12/tourney/go/internal/sqlutil"
)

// TableUpdate carries optional table field changes.
type TableUpdate struct {
	Name    *string
	Seats   *int
	Enabled *bool
}

// CreateTable inserts an enabled table with seat rows 1..seats.
func (s *Store) CreateTable(ctx context.Context, name string, seats int, createdAtMs int64) (*models.Table, error) {
	t := &models.Table{
		ID:          uuid.New().String(),
		Name:        name,
		Seats:       seats,
		Enabled:     true,
		CreatedAtMs: createdAtMs,
	}
	err := s.tx(ctx, func(q *queries) error {
		seq, err := nextSeq(ctx, q, "seating_tables")
		if err != nil {
			return err
		}
		if _, err := q.exec(ctx, `
			INSERT INTO seating_tables (id, name, seats, enabled, seq, created_at_ms)
			VALUES (?, ?, ?, 1, ?, ?)
		`, t.ID, t.Name, t.Seats, seq, t.CreatedAtMs); err != nil {
			return err
		}
		return syncSeatRows(ctx, q, t.ID, t.Seats)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return t, nil
}

// GetTable returns one table or ErrNotFound.
func (s *Store) GetTable(ctx context.Context, id string) (*models.Table, error) {
	return getTable(ctx, s.queries(), id)
}

func getTable(ctx context.Context, q *queries, id string) (*models.Table, error) {
	var (
		t       models.Table
		enabled int64
	)
	err := q.queryRow(ctx,
		"SELECT id, name, seats, enabled, created_at_ms FROM seating_tables WHERE id = ?", id,
	).Scan(&t.ID, &t.Name, &t.Seats, &enabled, &t.CreatedAtMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	t.Enabled = sqlutil.IntToBool(enabled)
	return &t, nil
}

// ListTables returns all tables in stable creation order.
func (s *Store) ListTables(ctx context.Context) ([]models.Table, error) {
	rows, err := s.queries().query(ctx,
		"SELECT id, name, seats, enabled, created_at_ms FROM seating_tables ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var out []models.Table
	for rows.Next() {
		var (
			t       models.Table
			enabled int64
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Seats, &enabled, &t.CreatedAtMs); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		t.Enabled = sqlutil.IntToBool(enabled)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return out, nil
}

// UpdateTable applies the non-nil fields of upd and keeps seat rows in sync
// with the seat count. Participants in removed seats become unseated.
func (s *Store) UpdateTable(ctx context.Context, id string, upd TableUpdate) (*models.Table, error) {
	var out *models.Table
	err := s.tx(ctx, func(q *queries) error {
		var (
			fields []string
			args   []any
		)
		if upd.Name != nil {
			fields = append(fields, "name = ?")
			args = append(args, *upd.Name)
		}
		if upd.Seats != nil {
			fields = append(fields, "seats = ?")
			args = append(args, *upd.Seats)
		}
		if upd.Enabled != nil {
			fields = append(fields, "enabled = ?")
			args = append(args, sqlutil.BoolToInt(*upd.Enabled))
		}
		if len(fields) > 0 {
			args = append(args, id)
			res, err := q.exec(ctx,
				"UPDATE seating_tables SET "+strings.Join(fields, ", ")+" WHERE id = ?", args...)
			if err != nil {
				return err
			}
			n, err := rowsAffected(res)
			if err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
		}
		t, err := getTable(ctx, q, id)
		if err != nil {
			return err
		}
		if err := syncSeatRows(ctx, q, t.ID, t.Seats); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update table: %w", err)
	}
	return out, nil
}

// DeleteTable removes a table and its seat rows.
func (s *Store) DeleteTable(ctx context.Context, id string) error {
	return s.tx(ctx, func(q *queries) error {
		if _, err := q.exec(ctx, "DELETE FROM seat_assignments WHERE table_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete seats: %w", err)
		}
		res, err := q.exec(ctx, "DELETE FROM seating_tables WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete table: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// syncSeatRows makes the seat keys of a table exactly 1..seats.
func syncSeatRows(ctx context.Context, q *queries, tableID string, seats int) error {
	if _, err := q.exec(ctx,
		"DELETE FROM seat_assignments WHERE table_id = ? AND seat_num > ?", tableID, seats,
	); err != nil {
		return fmt.Errorf("failed to trim seats: %w", err)
	}
	for n := 1; n <= seats; n++ {
		if _, err := q.exec(ctx, `
			INSERT INTO seat_assignments (table_id, seat_num, participant_id)
			VALUES (?, ?, NULL)
			ON CONFLICT (table_id, seat_num) DO NOTHING
		`, tableID, n); err != nil {
			return fmt.Errorf("failed to add seat %d: %w", n, err)
		}
	}
	return nil
}
