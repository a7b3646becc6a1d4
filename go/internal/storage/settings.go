package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcdev12/tourney/go/internal/models"
)

// LoadSettings returns the stored settings or ErrNotFound.
func (s *Store) LoadSettings(ctx context.Context) (*models.Settings, error) {
	var raw string
	err := s.queries().queryRow(ctx, "SELECT json FROM settings WHERE id = 1").Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var settings models.Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &settings, nil
}

// SaveSettings replaces the settings blob.
func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = s.queries().exec(ctx, `
		INSERT INTO settings (id, json) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET json = excluded.json
	`, string(data))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// EnsureSettings seeds settings when none are stored and returns what is stored.
func (s *Store) EnsureSettings(ctx context.Context, defaults models.Settings) (*models.Settings, error) {
	data, err := json.Marshal(defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	if _, err := s.queries().exec(ctx,
		"INSERT INTO settings (id, json) VALUES (1, ?) ON CONFLICT (id) DO NOTHING",
		string(data),
	); err != nil {
		return nil, fmt.Errorf("failed to seed settings: %w", err)
	}
	return s.LoadSettings(ctx)
}
