package dbconfig

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Driver names a database/sql driver the store can open.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverPgx      Driver = "pgx"
)

// Config holds database connection settings.
type Config struct {
	Driver     Driver `env:"DB_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"DB_PATH" envDefault:"./tourney.db"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       int    `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER" envDefault:"postgres"`
	Password   string `env:"DB_PASSWORD" envDefault:"postgres"`
	Database   string `env:"DB_NAME" envDefault:"tourney"`
	SSLMode    string `env:"DB_SSLMODE" envDefault:"disable"`
}

// NewConfigFromEnv reads DB_* environment variables (with defaults).
func NewConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse db env: %w", err)
	}
	cfg.Driver = Driver(strings.ToLower(string(cfg.Driver)))
	switch cfg.Driver {
	case DriverSQLite, DriverPostgres, DriverPgx:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	return cfg, nil
}

// IsPostgres reports whether the driver speaks the Postgres dialect.
func (c Config) IsPostgres() bool {
	return c.Driver == DriverPostgres || c.Driver == DriverPgx
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if !c.IsPostgres() {
		path := c.SQLitePath
		if path == ":memory:" {
			return path
		}
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Describe returns a loggable target without credentials.
func (c Config) Describe() string {
	if !c.IsPostgres() {
		return c.SQLitePath
	}
	return fmt.Sprintf("%s@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}
