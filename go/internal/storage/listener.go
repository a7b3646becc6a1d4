package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// SettingsChannel is the Postgres NOTIFY channel external writers signal
// after changing the settings row.
const SettingsChannel = "tourney_settings"

// ListenerConfig tunes the settings listener.
type ListenerConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // Channel name to LISTEN on
	FallbackInterval time.Duration // How often to reload even without a notification
	PingInterval     time.Duration
	MinReconnect     time.Duration
	MaxReconnect     time.Duration
}

// DefaultListenerConfig returns defaults for dsn.
func DefaultListenerConfig(dsn string) ListenerConfig {
	return ListenerConfig{
		DatabaseURL:      dsn,
		NotifyChannel:    SettingsChannel,
		FallbackInterval: 5 * time.Minute,
		PingInterval:     90 * time.Second,
		MinReconnect:     10 * time.Second,
		MaxReconnect:     time.Minute,
	}
}

// SettingsListener calls onChange whenever the settings row is changed by
// another process.
type SettingsListener struct {
	listener *pq.Listener
	cfg      ListenerConfig
	onChange func(ctx context.Context) error
}

// NewSettingsListener subscribes to the settings channel.
func NewSettingsListener(cfg ListenerConfig, onChange func(ctx context.Context) error) (*SettingsListener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		cfg.MinReconnect,
		cfg.MaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("settings listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Msg("listening for settings notifications")

	return &SettingsListener{listener: l, cfg: cfg, onChange: onChange}, nil
}

// Start blocks until ctx is cancelled.
func (l *SettingsListener) Start(ctx context.Context) error {
	pingTicker := time.NewTicker(l.cfg.PingInterval)
	fallbackTicker := time.NewTicker(l.cfg.FallbackInterval)
	defer pingTicker.Stop()
	defer fallbackTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("settings listener shutting down")
			return l.listener.Close()
		case note := <-l.listener.Notify:
			// nil means the connection was re-established; reload in case we missed one
			if note != nil {
				log.Debug().Str("channel", note.Channel).Msg("settings notification received")
			}
			l.reload(ctx)
		case <-fallbackTicker.C:
			l.reload(ctx)
		case <-pingTicker.C:
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping settings listener")
			}
		}
	}
}

func (l *SettingsListener) reload(ctx context.Context) {
	if err := l.onChange(ctx); err != nil {
		log.Error().Err(err).Msg("failed to apply settings change")
	}
}
