package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/mcdev12/tourney/go/internal/models"
	"github.com/mcdev12/tourney/go/internal/sqlutil"
)

// ListSeats returns every seat row ordered by table creation order then seat number.
func (s *Store) ListSeats(ctx context.Context) ([]models.SeatAssignment, error) {
	rows, err := s.queries().query(ctx, `
		SELECT sa.table_id, t.name, sa.seat_num, sa.participant_id
		FROM seat_assignments sa
		JOIN seating_tables t ON t.id = sa.table_id
		ORDER BY t.seq ASC, sa.seat_num ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}
	defer rows.Close()

	var out []models.SeatAssignment
	for rows.Next() {
		var (
			sa  models.SeatAssignment
			pid sql.NullString
		)
		if err := rows.Scan(&sa.TableID, &sa.TableName, &sa.SeatNum, &pid); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		sa.ParticipantID = sqlutil.FromSqlString(pid, "")
		out = append(out, sa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}
	return out, nil
}

// ReplaceAssignments clears every seat and writes the given participant to
// seat mapping in a single transaction.
func (s *Store) ReplaceAssignments(ctx context.Context, assignments map[string]models.SeatKey) error {
	ids := make([]string, 0, len(assignments))
	for id := range assignments {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return s.tx(ctx, func(q *queries) error {
		if _, err := q.exec(ctx, "UPDATE seat_assignments SET participant_id = NULL"); err != nil {
			return fmt.Errorf("failed to clear seats: %w", err)
		}
		for _, id := range ids {
			key := assignments[id]
			if err := setSeat(ctx, q, key, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplySeatUpdates writes a set of seat rows atomically. Every touched seat
// is cleared first so swaps never collide on the one-seat-per-participant index.
func (s *Store) ApplySeatUpdates(ctx context.Context, updates []models.SeatAssignment) error {
	return s.tx(ctx, func(q *queries) error {
		for _, u := range updates {
			if err := setSeat(ctx, q, u.Key(), ""); err != nil {
				return err
			}
		}
		for _, u := range updates {
			if u.ParticipantID == "" {
				continue
			}
			if err := setSeat(ctx, q, u.Key(), u.ParticipantID); err != nil {
				return err
			}
		}
		return nil
	})
}

// NormalizeSeats re-syncs seat rows for every table.
func (s *Store) NormalizeSeats(ctx context.Context) error {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return err
	}
	return s.tx(ctx, func(q *queries) error {
		for _, t := range tables {
			if err := syncSeatRows(ctx, q, t.ID, t.Seats); err != nil {
				return err
			}
		}
		return nil
	})
}

func setSeat(ctx context.Context, q *queries, key models.SeatKey, participantID string) error {
	res, err := q.exec(ctx,
		"UPDATE seat_assignments SET participant_id = ? WHERE table_id = ? AND seat_num = ?",
		sqlutil.ToNullString(participantID), key.TableID, key.SeatNum,
	)
	if err != nil {
		return fmt.Errorf("failed to write seat %s/%d: %w", key.TableID, key.SeatNum, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("seat %s/%d: %w", key.TableID, key.SeatNum, ErrNotFound)
	}
	return nil
}
