package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"unibuild/pkg/platform/sentinel"
)

const portalStorageSchema = `
CREATE TABLE IF NOT EXISTS portal_storage (
	namespace  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (namespace, key)
);
CREATE INDEX IF NOT EXISTS portal_storage_expires_at_idx ON portal_storage (expires_at);
`

// Postgres persists namespaces in the portal_storage table.
type Postgres struct {
	pool  *pgxpool.Pool
	clock func() time.Time
}

// PostgresOption configures a Postgres backend.
type PostgresOption func(*Postgres)

// WithPostgresClock sets the clock function for testability.
func WithPostgresClock(clock func() time.Time) PostgresOption {
	return func(p *Postgres) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// NewPostgres constructs a Postgres-backed storage.
func NewPostgres(pool *pgxpool.Pool, opts ...PostgresOption) *Postgres {
	p := &Postgres{pool: pool, clock: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Migrate creates the storage table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, portalStorageSchema); err != nil {
		return fmt.Errorf("migrate portal_storage: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, namespace, key string) (string, error) {
	var value string
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM portal_storage WHERE namespace = $1 AND key = $2 AND expires_at > $3`,
		namespace, key, p.clock(),
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select portal_storage: %w: %w", sentinel.ErrUnavailable, err)
	}
	return value, nil
}

// SetMany upserts all values and moves the whole namespace's expiry in one
// transaction.
func (p *Postgres) SetMany(ctx context.Context, namespace string, values map[string]string, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}
	expiresAt := p.clock().Add(ttl)
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for k, v := range values {
			batch.Queue(`
				INSERT INTO portal_storage (namespace, key, value, expires_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (namespace, key) DO UPDATE SET
					value = EXCLUDED.value,
					expires_at = EXCLUDED.expires_at
			`, namespace, k, v, expiresAt)
		}
		batch.Queue(`UPDATE portal_storage SET expires_at = $2 WHERE namespace = $1`, namespace, expiresAt)
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("upsert portal_storage: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, namespace string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := p.pool.Exec(ctx,
		`DELETE FROM portal_storage WHERE namespace = $1 AND key = ANY($2)`,
		namespace, keys,
	)
	if err != nil {
		return fmt.Errorf("delete portal_storage: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (p *Postgres) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM portal_storage WHERE expires_at <= $1`, p.clock())
	if err != nil {
		return 0, fmt.Errorf("purge portal_storage: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Health(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
