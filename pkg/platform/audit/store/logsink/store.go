package logsink

import (
	"context"
	"log/slog"

	audit "unibuild/pkg/platform/audit"
)

// Store writes audit events to a structured logger. It is the default sink
// when no broker is configured.
type Store struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	return &Store{logger: logger.With("component", "audit")}
}

func (s *Store) Append(ctx context.Context, e audit.Event) error {
	level := slog.LevelInfo
	if e.Category == audit.CategorySecurity {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "audit event",
		"category", e.Category,
		"action", e.Action,
		"user_id", e.UserID,
		"subject", e.Subject,
		"reason", e.Reason,
		"request_id", e.RequestID,
		"device", e.DeviceLabel,
		"client_ip", e.ClientIP,
		"timestamp", e.Timestamp,
	)
	return nil
}
