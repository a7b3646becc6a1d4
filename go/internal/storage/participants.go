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

// ParticipantUpdate carries optional participant field changes.
type ParticipantUpdate struct {
	Name       *string
	Eliminated *bool
}

// CreateParticipant inserts a new, non-eliminated participant.
func (s *Store) CreateParticipant(ctx context.Context, name string, createdAtMs int64) (*models.Participant, error) {
	p := &models.Participant{
		ID:          uuid.New().String(),
		Name:        name,
		CreatedAtMs: createdAtMs,
	}
	err := s.tx(ctx, func(q *queries) error {
		seq, err := nextSeq(ctx, q, "participants")
		if err != nil {
			return err
		}
		_, err = q.exec(ctx, `
			INSERT INTO participants (id, name, eliminated, seq, created_at_ms)
			VALUES (?, ?, 0, ?, ?)
		`, p.ID, p.Name, seq, p.CreatedAtMs)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}
	return p, nil
}

// GetParticipant returns one participant or ErrNotFound.
func (s *Store) GetParticipant(ctx context.Context, id string) (*models.Participant, error) {
	var (
		p          models.Participant
		eliminated int64
	)
	err := s.queries().queryRow(ctx,
		"SELECT id, name, eliminated, created_at_ms FROM participants WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &eliminated, &p.CreatedAtMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	p.Eliminated = sqlutil.IntToBool(eliminated)
	return &p, nil
}

// ListParticipants returns participants in creation order.
func (s *Store) ListParticipants(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, error) {
	query := "SELECT id, name, eliminated, created_at_ms FROM participants"
	var (
		clauses []string
		args    []any
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		clauses = append(clauses, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	if filter.Eliminated != nil {
		clauses = append(clauses, "eliminated = ?")
		args = append(args, sqlutil.BoolToInt(*filter.Eliminated))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY seq ASC"

	rows, err := s.queries().query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		var (
			p          models.Participant
			eliminated int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &eliminated, &p.CreatedAtMs); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.Eliminated = sqlutil.IntToBool(eliminated)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return out, nil
}

// UpdateParticipant applies the non-nil fields of upd.
func (s *Store) UpdateParticipant(ctx context.Context, id string, upd ParticipantUpdate) (*models.Participant, error) {
	var (
		fields []string
		args   []any
	)
	if upd.Name != nil {
		fields = append(fields, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Eliminated != nil {
		fields = append(fields, "eliminated = ?")
		args = append(args, sqlutil.BoolToInt(*upd.Eliminated))
	}
	if len(fields) > 0 {
		args = append(args, id)
		res, err := s.queries().exec(ctx,
			"UPDATE participants SET "+strings.Join(fields, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update participant: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetParticipant(ctx, id)
}

// DeleteParticipant removes the participant and vacates any seat they hold.
func (s *Store) DeleteParticipant(ctx context.Context, id string) error {
	return s.tx(ctx, func(q *queries) error {
		if _, err := q.exec(ctx,
			"UPDATE seat_assignments SET participant_id = NULL WHERE participant_id = ?", id,
		); err != nil {
			return fmt.Errorf("failed to vacate seat: %w", err)
		}
		res, err := q.exec(ctx, "DELETE FROM participants WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete participant: %w", err)
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

func nextSeq(ctx context.Context, q *queries, table string) (int64, error) {
	var seq int64
	if err := q.queryRow(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM "+table).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate sequence: %w", err)
	}
	return seq, nil
}
