// Package db provides PostgreSQL storage for the candidate roster.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Schema creates the tables used by the service. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS candidates (
	id          TEXT PRIMARY KEY,
	seq         BIGSERIAL NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	final_score INTEGER,
	summary     TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	resume_meta JSONB,
	questions   JSONB NOT NULL DEFAULT '[]',
	answers     JSONB NOT NULL DEFAULT '[]',
	scores      JSONB NOT NULL DEFAULT '[]',
	messages    JSONB NOT NULL DEFAULT '[]'
);
DROP INDEX IF EXISTS candidates_email_idx;
CREATE UNIQUE INDEX IF NOT EXISTS candidates_email_key ON candidates (email) WHERE email <> '';
`

// EnsureSchema applies Schema.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
