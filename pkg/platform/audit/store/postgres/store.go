package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	audit "unibuild/pkg/platform/audit"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS portal_audit_events (
	id           UUID        PRIMARY KEY,
	category     TEXT        NOT NULL,
	timestamp    TIMESTAMPTZ NOT NULL,
	action       TEXT        NOT NULL,
	user_id      TEXT        NOT NULL DEFAULT '',
	email        TEXT        NOT NULL DEFAULT '',
	subject      TEXT        NOT NULL DEFAULT '',
	reason       TEXT        NOT NULL DEFAULT '',
	request_id   TEXT        NOT NULL DEFAULT '',
	device_id    TEXT        NOT NULL DEFAULT '',
	device_label TEXT        NOT NULL DEFAULT '',
	client_ip    TEXT        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS portal_audit_events_user_idx ON portal_audit_events (user_id, timestamp);
`

// Store persists audit events in portal_audit_events.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL audit store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the audit table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, auditSchema); err != nil {
		return fmt.Errorf("migrate portal_audit_events: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, e audit.Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO portal_audit_events (
			id, category, timestamp, action, user_id, email, subject,
			reason, request_id, device_id, device_label, client_ip
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		uuid.New(), string(e.Category), e.Timestamp, e.Action, e.UserID, e.Email, e.Subject,
		e.Reason, e.RequestID, e.DeviceID, e.DeviceLabel, e.ClientIP,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByUser returns a user's events, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]audit.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT category, timestamp, action, user_id, email, subject,
			   reason, request_id, device_id, device_label, client_ip
		FROM portal_audit_events
		WHERE user_id = $1
		ORDER BY timestamp DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (audit.Event, error) {
		var (
			e        audit.Event
			category string
		)
		err := row.Scan(&category, &e.Timestamp, &e.Action, &e.UserID, &e.Email, &e.Subject,
			&e.Reason, &e.RequestID, &e.DeviceID, &e.DeviceLabel, &e.ClientIP)
		e.Category = audit.EventCategory(category)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit events: %w", err)
	}
	return events, nil
}
