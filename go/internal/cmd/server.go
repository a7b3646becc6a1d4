package main

import (
	"net/http"

	"github.com/mcdev12/tourney/go/internal/api"
	"github.com/mcdev12/tourney/go/internal/config"
	"github.com/mcdev12/tourney/go/internal/gateway"
	"github.com/mcdev12/tourney/go/internal/outbox"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(cfg config.Config, services *Services) *http.Server {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: cfg.CORSOrigins,
		AllowedHeaders: []string{"*"},
	})

	api.NewService(services.Clock, services.Seating, services.Store, cfg.SoundsDir).Register(mux)

	wsConfig := gateway.DefaultConnectionConfig()
	wsConfig.AllowedOrigins = cfg.CORSOrigins
	mux.Handle("/ws", gateway.NewHandler(services.Hub, services.Clock, wsConfig))

	mux.Handle("/health", outbox.NewHealthChecker(services.Store.DB(), services.Hub, services.Announcer))

	return &http.Server{
		Addr:    cfg.Addr(),
		Handler: h2c.NewHandler(c.Handler(mux), &http2.Server{}),
	}
}
