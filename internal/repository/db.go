package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique key
	ErrDuplicate = errors.New("duplicate record")
)

const uniqueViolation = "23505"

// NewPool opens a connection pool and verifies it with a ping
func NewPool(ctx context.Context, dsn string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                 TEXT PRIMARY KEY,
		auth_id            TEXT NOT NULL UNIQUE,
		couple_id          TEXT,
		created_at         TIMESTAMPTZ NOT NULL,
		notification_token TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS couples (
		id              TEXT PRIMARY KEY,
		created_at      TIMESTAMPTZ NOT NULL,
		created_by      TEXT NOT NULL,
		members         TEXT[] NOT NULL,
		start_date      TIMESTAMPTZ NOT NULL,
		pairing_code    TEXT,
		pairing_expires TIMESTAMPTZ,
		CONSTRAINT pairing_code_has_expiry
			CHECK ((pairing_code IS NULL) = (pairing_expires IS NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS couples_pairing_code_idx
		ON couples (pairing_code) WHERE pairing_code IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS events (
		id            TEXT PRIMARY KEY,
		couple_id     TEXT NOT NULL,
		title         TEXT NOT NULL,
		description   TEXT,
		date          TIMESTAMPTZ NOT NULL,
		location      TEXT,
		reminder_time TIMESTAMPTZ,
		reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS events_couple_id_idx ON events (couple_id)`,
	`CREATE INDEX IF NOT EXISTS events_pending_reminder_idx
		ON events (reminder_time) WHERE reminder_sent = FALSE`,
}

// Migrate creates the tables and indexes if they do not exist yet
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, m := range migrations {
		if _, err := db.Exec(ctx, m); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
