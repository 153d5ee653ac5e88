// Package session holds the per-browser Session Store: the token and user
// record persisted in a durable key/value namespace, mirrored by a
// presence-only marker cookie the edge gate can see.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"unibuild/internal/platform/metrics"
	"unibuild/internal/session/models"
	"unibuild/pkg/platform/sentinel"
)

const (
	// MarkerCookieName is the presence-only cookie read by the edge gate.
	MarkerCookieName = "unibuild_auth"
	// DefaultLifetime is the marker cookie max-age and storage TTL.
	DefaultLifetime = 7 * 24 * time.Hour

	keyToken       = "token"
	keyUser        = "user"
	keyValidatedAt = "validated_at"
)

// Storage is the durable key/value backend behind the store. Get returns
// sentinel.ErrNotFound for absent keys.
type Storage interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	SetMany(ctx context.Context, namespace string, values map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, namespace string, keys ...string) error
}

// inert is implemented by backends that persist nothing.
type inert interface {
	Inert() bool
}

// CookieWriter receives the marker cookie.
type CookieWriter interface {
	SetCookie(c *http.Cookie)
}

// ResponseCookies writes cookies onto a response.
type ResponseCookies struct {
	W http.ResponseWriter
}

func (r ResponseCookies) SetCookie(c *http.Cookie) { http.SetCookie(r.W, c) }

// Store is a handle over one browser's session namespace.
type Store struct {
	storage   Storage
	namespace string
	cookies   CookieWriter
	secure    bool
	lifetime  time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithCookies sets where the marker cookie is written.
func WithCookies(w CookieWriter) Option {
	return func(s *Store) { s.cookies = w }
}

// WithSecureCookie marks the marker cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(s *Store) { s.secure = secure }
}

// WithLifetime overrides DefaultLifetime.
func WithLifetime(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lifetime = d
		}
	}
}

// WithLogger sets the logger used for swallowed storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics counts swallowed storage failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock sets the clock used for validated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a store over namespace in storage. A nil storage or an empty
// namespace yields a store whose reads are absent and whose writes are no-ops.
func New(storage Storage, namespace string, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		namespace: namespace,
		lifetime:  DefaultLifetime,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Namespace is the device id the store is bound to.
func (s *Store) Namespace() string { return s.namespace }

// Detached returns a copy that never writes cookies, for work that may
// outlive the request.
func (s *Store) Detached() *Store {
	c := *s
	c.cookies = nil
	return &c
}

func (s *Store) interactive() bool {
	if s.storage == nil || s.namespace == "" {
		return false
	}
	if in, ok := s.storage.(inert); ok && in.Inert() {
		return false
	}
	return true
}

// GetToken returns the stored token.
func (s *Store) GetToken(ctx context.Context) (string, bool) {
	return s.get(ctx, keyToken)
}

// GetUser returns the stored user. A corrupt record is treated as absent.
func (s *Store) GetUser(ctx context.Context) (*models.User, bool) {
	raw, ok := s.get(ctx, keyUser)
	if !ok {
		return nil, false
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.WarnContext(ctx, "discarding corrupt session user record",
			"device", s.namespace,
			"error", err,
		)
		s.metrics.IncStorageError("decode")
		return nil, false
	}
	return &u, true
}

// ValidatedAt returns when the stored user was last confirmed by the backend.
func (s *Store) ValidatedAt(ctx context.Context) (time.Time, bool) {
	raw, ok := s.get(ctx, keyValidatedAt)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SetAuth persists token and user in one backend write and sets the marker.
// It fails only when the backend does.
func (s *Store) SetAuth(ctx context.Context, token string, user *models.User) error {
	if !s.interactive() {
		return nil
	}
	if err := s.persist(ctx, map[string]string{keyToken: token}, user); err != nil {
		return err
	}
	s.SetMarker()
	return nil
}

// RefreshUser stores a freshly validated user without touching the token.
func (s *Store) RefreshUser(ctx context.Context, user *models.User) error {
	if !s.interactive() {
		return nil
	}
	return s.persist(ctx, map[string]string{}, user)
}

func (s *Store) persist(ctx context.Context, values map[string]string, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	values[keyUser] = string(raw)
	values[keyValidatedAt] = s.now().UTC().Format(time.RFC3339Nano)
	if err := s.storage.SetMany(ctx, s.namespace, values, s.lifetime); err != nil {
		s.metrics.IncStorageError("set")
		return err
	}
	return nil
}

// ClearAuth removes the token, user and marker.
func (s *Store) ClearAuth(ctx context.Context) error {
	if !s.interactive() {
		return nil
	}
	s.ClearMarker()
	if err := s.storage.Delete(ctx, s.namespace, keyToken, keyUser, keyValidatedAt); err != nil {
		s.metrics.IncStorageError("delete")
		return err
	}
	return nil
}

// SetMarker writes the presence cookie.
func (s *Store) SetMarker() {
	if s.cookies == nil {
		return
	}
	s.cookies.SetCookie(s.marker("1", int(s.lifetime/time.Second)))
}

// ClearMarker expires the presence cookie.
func (s *Store) ClearMarker() {
	if s.cookies == nil {
		return
	}
	s.cookies.SetCookie(s.marker("", -1))
}

func (s *Store) marker(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     MarkerCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	if !s.interactive() {
		return "", false
	}
	v, err := s.storage.Get(ctx, s.namespace, key)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "session storage read failed; treating as absent",
				"device", s.namespace,
				"key", key,
				"error", err,
			)
			s.metrics.IncStorageError("get")
		}
		return "", false
	}
	return v, true
}

// HasMarker reports whether r carries a non-empty marker cookie.
func HasMarker(r *http.Request) bool {
	c, err := r.Cookie(MarkerCookieName)
	return err == nil && c.Value != ""
}
