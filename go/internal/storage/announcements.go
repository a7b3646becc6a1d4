package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcdev12/tourney/go/internal/models"
)

// DefaultAnnouncementLimit bounds ListAnnouncements when no limit is given.
const DefaultAnnouncementLimit = 50

// AppendAnnouncement adds an entry to the append-only announcement log.
func (s *Store) AppendAnnouncement(ctx context.Context, createdAtMs int64, typ string, payload json.RawMessage) (*models.Announcement, error) {
	a := &models.Announcement{
		CreatedAtMs: createdAtMs,
		Type:        typ,
		Payload:     payload,
	}
	err := s.queries().queryRow(ctx, `
		INSERT INTO announcements (created_at_ms, type, payload_json)
		VALUES (?, ?, ?)
		RETURNING id
	`, createdAtMs, typ, string(payload)).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to append announcement: %w", err)
	}
	return a, nil
}

// ListAnnouncements returns the most recent announcements, newest first.
func (s *Store) ListAnnouncements(ctx context.Context, limit int) ([]models.Announcement, error) {
	if limit <= 0 {
		limit = DefaultAnnouncementLimit
	}
	rows, err := s.queries().query(ctx, `
		SELECT id, created_at_ms, type, payload_json
		FROM announcements
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var out []models.Announcement
	for rows.Next() {
		var (
			a   models.Announcement
			raw string
		)
		if err := rows.Scan(&a.ID, &a.CreatedAtMs, &a.Type, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		a.Payload = json.RawMessage(raw)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return out, nil
}
