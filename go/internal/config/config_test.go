package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mcdev12/tourney/go/internal/dbconfig"
	"github.com/mcdev12/tourney/go/internal/models"
	"github.com/rs/zerolog"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPPort != 8080 || cfg.Addr() != ":8080" {
		t.Fatalf("port = %d", cfg.HTTPPort)
	}
	if cfg.TickInterval != 250*time.Millisecond || cfg.PersistInterval != time.Second {
		t.Fatalf("intervals = %v / %v", cfg.TickInterval, cfg.PersistInterval)
	}
	if cfg.SubscriberQueueSize != 256 || cfg.NATSStream != "TOURNEY_EVENTS" || cfg.NATSURL != "" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}
	if cfg.DB.Driver != dbconfig.DriverSQLite {
		t.Fatalf("driver = %s", cfg.DB.Driver)
	}
	if cfg.Level() != zerolog.InfoLevel {
		t.Fatalf("level = %v", cfg.Level())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TICK_INTERVAL", "100ms")
	t.Setenv("PERSIST_INTERVAL", "2s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DB_DRIVER", "pgx")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPPort != 9090 || len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.TickInterval != 100*time.Millisecond || cfg.PersistInterval != 2*time.Second {
		t.Fatalf("intervals = %v / %v", cfg.TickInterval, cfg.PersistInterval)
	}
	if cfg.Level() != zerolog.DebugLevel || !cfg.DB.IsPostgres() {
		t.Fatalf("level = %v, driver = %s", cfg.Level(), cfg.DB.Driver)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"TICK_INTERVAL":         "soon",
		"SUBSCRIBER_QUEUE_SIZE": "0",
		"LOG_LEVEL":             "loud",
		"PORT":                  "70000",
		"LOG_FORMAT":            "xml",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%s should fail", key, value)
			}
		})
	}
}

func TestPersistIntervalNotShorterThanTick(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "2s")
	t.Setenv("PERSIST_INTERVAL", "1s")
	if _, err := Load(); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	content := `
levels:
  - type: regular
    duration_minutes: 15
    small_blind: 25
    big_blind: 50
  - type: break
    duration_minutes: 5
sounds:
  start: start.mp3
  five: five.wav
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write schedule: %v", err)
	}

	settings, err := LoadSchedule(path)
	if err != nil {
		t.Fatalf("LoadSchedule() error = %v", err)
	}
	if len(settings.Levels) != 2 || settings.Levels[0].BigBlind != 50 || settings.Levels[1].Type != models.LevelTypeBreak {
		t.Fatalf("levels = %+v", settings.Levels)
	}
	if settings.Sounds.Five != "five.wav" || settings.Seating.MinPlayersPerTable != models.DefaultMinPlayersPerTable {
		t.Fatalf("settings = %+v", settings)
	}

	cfg := Config{ScheduleFile: path}
	seeded, err := cfg.SeedSettings()
	if err != nil || len(seeded.Levels) != 2 {
		t.Fatalf("SeedSettings() = %+v, %v", seeded, err)
	}
}

func TestLoadScheduleInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	if err := os.WriteFile(path, []byte("levels: []\n"), 0o600); err != nil {
		t.Fatalf("write schedule: %v", err)
	}
	if _, err := LoadSchedule(path); err == nil {
		t.Fatal("expected error for empty schedule")
	}
	if _, err := LoadSchedule(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	seeded, err := Config{}.SeedSettings()
	if err != nil || len(seeded.Levels) != len(models.DefaultSettings().Levels) {
		t.Fatalf("default seed = %d levels, %v", len(seeded.Levels), err)
	}
}
