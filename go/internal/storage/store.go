package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/mcdev12/tourney/go/internal/dbconfig"
	"github.com/mcdev12/tourney/go/internal/models"
	"github.com/mcdev12/tourney/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationFS embed.FS

// ErrNotFound is returned when a requested row does not exist. It wraps
// models.ErrNotFound.
var ErrNotFound = fmt.Errorf("storage: %w", models.ErrNotFound)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries binds statements to a connection or transaction and rewrites
// placeholders for the active dialect.
type queries struct {
	db       dbtx
	postgres bool
}

func (q *queries) q(query string) string {
	if q.postgres {
		return sqlutil.Rebind(query)
	}
	return query
}

func (q *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.q(query), args...)
}

func (q *queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.q(query), args...)
}

func (q *queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.q(query), args...)
}

// Store persists settings, clock state, roster, seats and announcements.
type Store struct {
	db       *sql.DB
	postgres bool
	cfg      dbconfig.Config
}

// Open connects to the configured database and applies migrations.
func Open(ctx context.Context, cfg dbconfig.Config) (*Store, error) {
	db, err := sql.Open(string(cfg.Driver), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	if !cfg.IsPostgres() {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY and keeps :memory: coherent
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := New(db, cfg.IsPostgres())
	s.cfg = cfg
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info().
		Str("driver", string(cfg.Driver)).
		Str("target", cfg.Describe()).
		Msg("connected to database")
	return s, nil
}

// New wraps an already open database.
func New(db *sql.DB, postgres bool) *Store {
	return &Store{db: db, postgres: postgres}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Config returns the configuration the store was opened with.
func (s *Store) Config() dbconfig.Config {
	return s.cfg
}

func (s *Store) queries() *queries {
	return &queries{db: s.db, postgres: s.postgres}
}

func (s *Store) withTx(tx *sql.Tx) *queries {
	return &queries{db: tx, postgres: s.postgres}
}

// tx runs fn inside a transaction.
func (s *Store) tx(ctx context.Context, fn func(q *queries) error) error {
	return sqlutil.InTx(ctx, s.db, s.withTx, fn)
}

// Migrate applies the embedded migrations for the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	dir := "migrations/sqlite"
	if s.postgres {
		dir = "migrations/postgres"
	}
	if err := applyMigrations(ctx, s.queries(), s.db, migrationFS, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
