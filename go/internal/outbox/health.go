package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mcdev12/tourney/go/internal/gateway"
	"github.com/rs/zerolog/log"
)

const healthCheckTimeout = 5 * time.Second

// HealthStatus is the /health report.
type HealthStatus struct {
	Healthy           bool          `json:"healthy"`
	DatabaseConnected bool          `json:"database_connected"`
	BusConnected      bool          `json:"bus_connected"`
	Viewers           gateway.Stats `json:"viewers"`
	Publish           PublishStats  `json:"publish"`
	Errors            []string      `json:"errors"`
}

// Pinger checks database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HubStats reports fan-out counters.
type HubStats interface {
	Stats() gateway.Stats
}

// HealthChecker combines database, viewer and bus state into one report.
type HealthChecker struct {
	db        Pinger
	hub       HubStats
	announcer *Announcer
}

func NewHealthChecker(db Pinger, hub HubStats, announcer *Announcer) *HealthChecker {
	return &HealthChecker{db: db, hub: hub, announcer: announcer}
}

// Check builds a report. Only database and bus connectivity affect Healthy.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
		Viewers: h.hub.Stats(),
		Publish: h.announcer.Stats(),
	}

	if err := h.db.PingContext(ctx); err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
	} else {
		status.DatabaseConnected = true
	}

	status.BusConnected = h.announcer.Connected()
	if !status.BusConnected {
		status.Healthy = false
		status.Errors = append(status.Errors, "NATS disconnected")
	}

	if status.Publish.Pending >= cap(h.announcer.publishCh) {
		status.Errors = append(status.Errors, fmt.Sprintf("publish queue full: %d pending", status.Publish.Pending))
	}
	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("failed to write health check response")
	}
}
