package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool used by the Postgres store
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type postgresKV struct {
	db DB
}

// NewPostgres creates a KV backed by the kv_records table
func NewPostgres(db DB) KV {
	return &postgresKV{db: db}
}

// Get retrieves the value stored under key
func (s *postgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	sql := `SELECT value FROM kv_records WHERE key = $1`
	err := s.db.QueryRow(ctx, sql, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get record %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the value stored under key
func (s *postgresKV) Set(ctx context.Context, key, value string) error {
	sql := `INSERT INTO kv_records (key, value, updated_at) VALUES ($1, $2, NOW())
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := s.db.Exec(ctx, sql, key, value); err != nil {
		return fmt.Errorf("failed to set record %q: %w", key, err)
	}
	return nil
}

func (s *postgresKV) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
