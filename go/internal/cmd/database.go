package main

import (
	"context"
	"fmt"

	"github.com/mcdev12/tourney/go/internal/config"
	"github.com/mcdev12/tourney/go/internal/storage"
	"github.com/rs/zerolog/log"
)

// setupDatabase opens the store and seeds settings on first start.
func setupDatabase(ctx context.Context, cfg config.Config) (*storage.Store, error) {
	store, err := storage.Open(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	seed, err := cfg.SeedSettings()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	settings, err := store.EnsureSettings(ctx, seed)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to seed settings: %w", err)
	}

	log.Info().
		Int("levels", len(settings.Levels)).
		Str("schedule_file", cfg.ScheduleFile).
		Msg("settings ready")
	return store, nil
}
