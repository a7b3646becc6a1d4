package main

import (
	"context"
	"sync"

	"github.com/mcdev12/tourney/go/internal/clock"
	"github.com/mcdev12/tourney/go/internal/config"
	"github.com/mcdev12/tourney/go/internal/gateway"
	"github.com/mcdev12/tourney/go/internal/outbox"
	"github.com/mcdev12/tourney/go/internal/seating"
	"github.com/mcdev12/tourney/go/internal/storage"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Store     *storage.Store
	Hub       *gateway.Hub
	Publisher outbox.Publisher
	Announcer *outbox.Announcer
	Clock     *clock.Engine
	Seating   *seating.App
	Listener  *storage.SettingsListener
}

func setupServices(ctx context.Context, cfg config.Config, store *storage.Store) (*Services, error) {
	// Store → hub → announcer → clock engine → seating app

	hub := gateway.NewHub(cfg.SubscriberQueueSize)

	var publisher outbox.Publisher = outbox.NoopPublisher{}
	if cfg.NATSURL != "" {
		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATSURL
		jsCfg.StreamName = cfg.NATSStream
		jsCfg.SubjectPrefix = cfg.NATSSubjectPrefix
		js, err := outbox.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			return nil, err
		}
		publisher = js
	}
	announcer := outbox.NewAnnouncer(store, hub, publisher, nil)

	engine := clock.New(store, announcer,
		clock.WithTickInterval(cfg.TickInterval),
		clock.WithPersistInterval(cfg.PersistInterval),
	)
	if err := engine.Load(ctx); err != nil {
		_ = publisher.Close()
		return nil, err
	}

	app := seating.NewApp(store, announcer, engine)

	s := &Services{
		Store:     store,
		Hub:       hub,
		Publisher: publisher,
		Announcer: announcer,
		Clock:     engine,
		Seating:   app,
	}

	// Postgres deployments can be edited by other processes; sqlite is single-writer.
	if store.Config().IsPostgres() {
		listener, err := storage.NewSettingsListener(
			storage.DefaultListenerConfig(store.Config().DSN()),
			engine.ReloadSettings,
		)
		if err != nil {
			log.Warn().Err(err).Msg("settings listener unavailable, external edits need a restart")
		} else {
			s.Listener = listener
		}
	}
	return s, nil
}

// start launches the background loops. wg is released once they all exit.
func (s *Services) start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(3)
	go func() {
		defer wg.Done()
		s.Hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		s.Announcer.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := s.Clock.Run(ctx); err != nil {
			log.Error().Err(err).Msg("clock loop stopped")
		}
	}()

	if s.Listener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Listener.Start(ctx); err != nil {
				log.Error().Err(err).Msg("settings listener stopped")
			}
		}()
	}
}

// close flushes the final clock state and releases the publisher.
func (s *Services) close(ctx context.Context) {
	if err := s.Clock.Close(ctx); err != nil {
		log.Error().Err(err).Msg("failed to persist final clock state")
	}
	if err := s.Publisher.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close publisher")
	}
}
