package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id       TEXT PRIMARY KEY,
    status           TEXT NOT NULL,
    last_accessed_at TIMESTAMPTZ NOT NULL,
    payload          JSONB NOT NULL
);
`

// PostgresStore is a Store backed by PostgreSQL, for deployments where
// several instances share session state. The status check and update run
// inside one transaction with a row lock, preserving the same
// compare-and-swap guarantee as the in-process stores.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore returns a Store backed by the given pgx connection
// pool, creating the sessions table if needed.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("ensuring sessions schema: %w", err)
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

// NewPostgresStoreFromDSN creates a connection pool from a DSN string,
// ensures the schema exists, and returns a Store backed by it.
func NewPostgresStoreFromDSN(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	store, err := NewPostgresStore(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Create(ctx context.Context, data Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (session_id, status, last_accessed_at, payload)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id) DO NOTHING`,
		data.SessionID, string(data.Status), data.LastAccessedAt, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExists
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Data, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM sessions WHERE session_id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return Data{}, ErrNotFound
	}
	if err != nil {
		return Data{}, err
	}
	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return Data{}, err
	}
	return data, nil
}

func (s *PostgresStore) UpdateIfStatus(ctx context.Context, id string, expect Status, mutate func(*Data)) (Data, error) {
	var data Data
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var payload []byte
		err := tx.QueryRow(ctx,
			`SELECT payload FROM sessions WHERE session_id = $1 FOR UPDATE`, id).Scan(&payload)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal(payload, &data); err != nil {
			return err
		}
		if data.Status != expect {
			return ErrInvalidState
		}
		mutate(&data)
		data.LastAccessedAt = s.now().UTC()
		updated, err := json.Marshal(data)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE sessions SET status = $2, last_accessed_at = $3, payload = $4
			 WHERE session_id = $1`,
			id, string(data.Status), data.LastAccessedAt, updated)
		return err
	})
	if err != nil {
		return Data{}, err
	}
	return data, nil
}

func (s *PostgresStore) Touch(ctx context.Context, id string, expect Status) (Data, error) {
	return s.UpdateIfStatus(ctx, id, expect, func(*Data) {})
}

// Sweep removes sessions whose last access is older than the given TTL.
// 0 disables expiry.
func (s *PostgresStore) Sweep(ctx context.Context, idleTTL time.Duration) error {
	if idleTTL <= 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM sessions WHERE last_accessed_at < $1`, s.now().Add(-idleTTL))
	return err
}
