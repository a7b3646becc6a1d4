package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mcdev12/tourney/go/internal/dbconfig"
	"github.com/mcdev12/tourney/go/internal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration read from the environment.
type Config struct {
	HTTPPort            int           `env:"PORT" envDefault:"8080"`
	CORSOrigins         []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	TickInterval        time.Duration `env:"TICK_INTERVAL" envDefault:"250ms"`
	PersistInterval     time.Duration `env:"PERSIST_INTERVAL" envDefault:"1s"`
	SubscriberQueueSize int           `env:"SUBSCRIBER_QUEUE_SIZE" envDefault:"256"`
	ScheduleFile        string        `env:"SCHEDULE_FILE"`
	SoundsDir           string        `env:"SOUNDS_DIR" envDefault:"./sounds"`

	NATSURL           string `env:"NATS_URL"`
	NATSStream        string `env:"NATS_STREAM" envDefault:"TOURNEY_EVENTS"`
	NATSSubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"tourney.events"`

	OTELEndpoint string `env:"OTEL_EXPORTER_ENDPOINT"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"console"`

	DB dbconfig.Config
}

// LoadDotEnv loads .env style files into the environment. Missing files
// are not an error.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded, using environment")
	}
}

// Load parses and validates the configuration.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	db, err := dbconfig.NewConfigFromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg.DB = db
	return cfg, nil
}

// Validate checks ranges that env tags cannot express.
func (c Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("PORT %d out of range", c.HTTPPort)
	}
	if c.TickInterval <= 0 {
		return errors.New("TICK_INTERVAL must be positive")
	}
	if c.PersistInterval < c.TickInterval {
		return errors.New("PERSIST_INTERVAL must not be shorter than TICK_INTERVAL")
	}
	if c.SubscriberQueueSize < 1 {
		return errors.New("SUBSCRIBER_QUEUE_SIZE must be at least 1")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// Level returns the parsed log level.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// LoadSchedule reads a YAML settings file used to seed an empty store.
func LoadSchedule(path string) (models.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read schedule file: %w", err)
	}

	var settings models.Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to parse schedule file: %w", err)
	}
	if settings.Seating.MinPlayersPerTable == 0 {
		settings.Seating.MinPlayersPerTable = models.DefaultMinPlayersPerTable
	}
	if err := settings.Validate(); err != nil {
		return models.Settings{}, fmt.Errorf("invalid schedule file %s: %w", path, err)
	}
	return settings, nil
}

// SeedSettings returns the schedule file's settings when one is configured,
// otherwise the built-in default.
func (c Config) SeedSettings() (models.Settings, error) {
	if c.ScheduleFile == "" {
		return models.DefaultSettings(), nil
	}
	return LoadSchedule(c.ScheduleFile)
}
