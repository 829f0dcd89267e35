// Package store keeps console sessions in PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jw6ventures/carrental-console/internal/auth"
)

// PgxPool is the subset of pgxpool.Pool the store uses, so tests can supply a mock.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// Store aggregates repositories backed by PostgreSQL.
type Store struct {
	pool     PgxPool
	Sessions *SessionRepo
}

func New(pool PgxPool) *Store {
	return &Store{pool: pool, Sessions: &SessionRepo{pool: pool}}
}

// HealthCheck verifies that the underlying database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	defer observeDB(ctx, "db_healthcheck")()
	return s.pool.Ping(ctx)
}

// SessionRepo implements auth.SessionBackend on the console_sessions table.
type SessionRepo struct {
	pool PgxPool
}

var _ auth.SessionBackend = (*SessionRepo)(nil)

func (r *SessionRepo) Save(ctx context.Context, id, payload string, expiresAt time.Time) error {
	defer observeDB(ctx, "db_session_save")()
	const q = `INSERT INTO console_sessions (id, payload, expires_at) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at`
	if _, err := r.pool.Exec(ctx, q, id, payload, expiresAt); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Load(ctx context.Context, id string) (string, error) {
	defer observeDB(ctx, "db_session_load")()
	const q = `SELECT payload FROM console_sessions WHERE id = $1 AND expires_at > NOW()`
	var payload string
	if err := r.pool.QueryRow(ctx, q, id).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", auth.ErrSessionNotFound
		}
		return "", fmt.Errorf("load session: %w", err)
	}
	return payload, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	defer observeDB(ctx, "db_session_delete")()
	if _, err := r.pool.Exec(ctx, `DELETE FROM console_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and returns how many were removed.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	defer observeDB(ctx, "db_session_purge")()
	tag, err := r.pool.Exec(ctx, `DELETE FROM console_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeLoop calls DeleteExpired every interval until ctx is done.
func (r *SessionRepo) PurgeLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := r.DeleteExpired(ctx)
			if err != nil {
				log.Printf("[ERROR] %v", err)
				continue
			}
			if n > 0 {
				log.Printf("purged %d expired sessions", n)
			}
		}
	}
}
