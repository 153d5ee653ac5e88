package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"unibuild/internal/backend"
	"unibuild/internal/platform/metrics"
	"unibuild/internal/session"
	"unibuild/internal/session/models"
	dErrors "unibuild/pkg/domain-errors"
	audit "unibuild/pkg/platform/audit"
)

// IdentityClient is the slice of the UniBuild API the session lifecycle needs.
type IdentityClient interface {
	Login(ctx context.Context, email, password string) (backend.AuthResult, error)
	Register(ctx context.Context, req backend.RegisterRequest) (backend.AuthResult, error)
	Me(ctx context.Context, token string) (*models.User, error)
}

// Config tunes re-validation.
type Config struct {
	// RevalidateInterval is how long a confirmed user is trusted without asking
	// the backend again.
	RevalidateInterval time.Duration
	// RevalidateTimeout bounds one identity call.
	RevalidateTimeout time.Duration
	// GuardWait is how long a page request waits for re-validation before
	// rendering the loading state.
	GuardWait time.Duration
}

func (c Config) withDefaults() Config {
	if c.RevalidateInterval <= 0 {
		c.RevalidateInterval = 5 * time.Minute
	}
	if c.RevalidateTimeout <= 0 {
		c.RevalidateTimeout = 10 * time.Second
	}
	if c.GuardWait <= 0 {
		c.GuardWait = 2 * time.Second
	}
	return c
}

// Manager owns the session lifecycle: bootstrap on page load, login, register
// and logout. It replaces an ambient session provider with an explicit object
// passed to handlers.
type Manager struct {
	identity IdentityClient
	cfg      Config
	group    singleflight.Group
	auditor  audit.Emitter
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

func WithAuditor(a audit.Emitter) Option {
	return func(m *Manager) { m.auditor = a }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func New(identity IdentityClient, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		identity: identity,
		cfg:      cfg.withDefaults(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

type revalidation struct {
	user       *models.User
	err        error
	superseded bool
}

// Load establishes the session for one page request. A token without a
// readable user is Unauthenticated and is not sent to the backend. It returns
// Loading when
// re-validation is still running after GuardWait; the result is persisted
// for the next request either way.
func (m *Manager) Load(ctx context.Context, store *session.Store) models.State {
	token, ok := store.GetToken(ctx)
	if !ok || token == "" {
		return models.Unauthenticated()
	}
	user, ok := store.GetUser(ctx)
	if !ok {
		return models.Unauthenticated()
	}
	if at, ok := store.ValidatedAt(ctx); ok && m.now().Sub(at) < m.cfg.RevalidateInterval {
		return models.Authenticated(token, user)
	}

	if expired(token, m.now()) {
		m.failClosed(ctx, store, token, "token_expired")
		store.ClearMarker()
		return models.Unauthenticated()
	}

	ch := m.group.DoChan(store.Namespace(), func() (any, error) {
		return m.revalidate(ctx, store.Detached(), token), nil
	})

	wait := time.NewTimer(m.cfg.GuardWait)
	defer wait.Stop()

	select {
	case res := <-ch:
		r := res.Val.(revalidation)
		if r.superseded {
			return models.Loading()
		}
		if r.err != nil {
			store.ClearMarker()
			return models.Unauthenticated()
		}
		store.SetMarker()
		return models.Authenticated(token, r.user)
	case <-wait.C:
		m.logger.DebugContext(ctx, "session re-validation still running", "device", store.Namespace())
		return models.Loading()
	case <-ctx.Done():
		return models.Loading()
	}
}

// revalidate asks the backend who owns token. It runs detached from the
// request so a slow answer is still persisted for the next poll.
func (m *Manager) revalidate(ctx context.Context, store *session.Store, token string) revalidation {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.RevalidateTimeout)
	defer cancel()

	user, err := m.identity.Me(ctx, token)
	if current, ok := store.GetToken(ctx); !ok || current != token {
		// A login or logout replaced the session meanwhile.
		return revalidation{superseded: true}
	}
	if err != nil {
		reason := "unavailable"
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			reason = "unauthorized"
		}
		m.failClosed(ctx, store, token, reason)
		return revalidation{err: err}
	}
	if err := store.RefreshUser(ctx, user); err != nil {
		m.logger.WarnContext(ctx, "failed to persist re-validated user", "error", err)
	}
	m.metrics.IncRevalidation("ok")
	m.emit(ctx, audit.Event{Action: string(audit.EventSessionRevalidated), UserID: user.ID, Email: user.Email})
	return revalidation{user: user}
}

func (m *Manager) failClosed(ctx context.Context, store *session.Store, token, reason string) {
	m.metrics.IncRevalidation(reason)
	m.logger.InfoContext(ctx, "session invalidated",
		"device", store.Namespace(),
		"reason", reason,
	)
	if err := store.Detached().ClearAuth(ctx); err != nil {
		m.logger.WarnContext(ctx, "failed to clear invalidated session", "error", err)
	}
	m.emit(ctx, audit.Event{Action: string(audit.EventRevalidationFailed), Reason: reason})
}

// expired reports whether token is a JWT whose exp has passed. Tokens that do
// not parse are left to the backend.
func expired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}

// Login authenticates against the backend and persists the new session.
func (m *Manager) Login(ctx context.Context, store *session.Store, email, password string) (*models.User, error) {
	res, err := m.identity.Login(ctx, email, password)
	if err != nil {
		m.emit(ctx, audit.Event{Action: string(audit.EventLoginFailed), Email: email, Reason: reasonOf(err)})
		return nil, err
	}
	if err := m.establish(ctx, store, res); err != nil {
		return nil, err
	}
	m.emit(ctx, audit.Event{Action: string(audit.EventLoginSucceeded), UserID: res.User.ID, Email: res.User.Email})
	return res.User, nil
}

// Register creates an account and persists its first session.
func (m *Manager) Register(ctx context.Context, store *session.Store, req backend.RegisterRequest) (*models.User, error) {
	res, err := m.identity.Register(ctx, req)
	if err != nil {
		m.emit(ctx, audit.Event{Action: string(audit.EventRegisterFailed), Email: req.Email, Reason: reasonOf(err)})
		return nil, err
	}
	if err := m.establish(ctx, store, res); err != nil {
		return nil, err
	}
	m.emit(ctx, audit.Event{Action: string(audit.EventRegistered), UserID: res.User.ID, Email: res.User.Email, Subject: req.Role})
	return res.User, nil
}

func (m *Manager) establish(ctx context.Context, store *session.Store, res backend.AuthResult) error {
	if res.Token == "" || res.User == nil {
		return dErrors.New(dErrors.CodeUnavailable, "authentication response was incomplete")
	}
	if err := store.SetAuth(ctx, res.Token, res.User); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "session storage unavailable")
	}
	return nil
}

// Logout destroys the session.
func (m *Manager) Logout(ctx context.Context, store *session.Store) error {
	user, _ := store.GetUser(ctx)
	if err := store.ClearAuth(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "session storage unavailable")
	}
	event := audit.Event{Action: string(audit.EventLoggedOut)}
	if user != nil {
		event.UserID, event.Email = user.ID, user.Email
	}
	m.emit(ctx, event)
	return nil
}

func (m *Manager) emit(ctx context.Context, e audit.Event) {
	if m.auditor == nil {
		return
	}
	if err := m.auditor.Emit(ctx, e); err != nil {
		m.logger.WarnContext(ctx, "audit emit failed", "action", e.Action, "error", err)
	}
}

func reasonOf(err error) string {
	if de, ok := dErrors.As(err); ok {
		return string(de.Code)
	}
	return "error"
}
