// Package handler serves the portal's pages and session endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"unibuild/internal/access"
	"unibuild/internal/backend"
	"unibuild/internal/guard"
	"unibuild/internal/platform/metrics"
	"unibuild/internal/portal/views"
	"unibuild/internal/ratelimit"
	"unibuild/internal/session"
	"unibuild/internal/session/models"
	audit "unibuild/pkg/platform/audit"
	"unibuild/pkg/requestcontext"
)

// Sessions is the session lifecycle the pages drive.
type Sessions interface {
	Load(ctx context.Context, store *session.Store) models.State
	Login(ctx context.Context, store *session.Store, email, password string) (*models.User, error)
	Register(ctx context.Context, store *session.Store, req backend.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context, store *session.Store) error
}

// Portal is the backend data the section pages display.
type Portal interface {
	LandVerifications(ctx context.Context, token string, q backend.LandVerificationQuery) (backend.LandVerificationPage, error)
	LandVerification(ctx context.Context, token, id string) (backend.LandVerification, error)
	ProfessionalProfile(ctx context.Context, token string) (*backend.ProfessionalProfile, error)
	DesignSubmissions(ctx context.Context, token string, limit int) ([]backend.DesignSubmission, error)
	PermitRequests(ctx context.Context, token string, limit int) ([]backend.PermitRequest, error)
	RequestLandVerification(ctx context.Context, token, kind, parcelID string) (backend.LandVerification, error)
	SubmitRegistration(ctx context.Context, token string, p backend.RegistrationPayload) (backend.Registration, error)
}

// Handler renders pages over the session manager and the backend.
type Handler struct {
	sessions     Sessions
	portal       Portal
	storage      session.Storage
	views        *views.Renderer
	logger       *slog.Logger
	metrics      *metrics.Metrics
	auditor      audit.Emitter
	cookieSecure bool
	lifetime     time.Duration
	throttle     throttleConfig
	authLimiter  *ratelimit.Limiter
}

type throttleConfig struct {
	store    ratelimit.Store
	attempts int
	window   time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func WithAuditor(a audit.Emitter) Option {
	return func(h *Handler) { h.auditor = a }
}

// WithCookieSecure sets the Secure attribute on the session marker cookie.
func WithCookieSecure(secure bool) Option {
	return func(h *Handler) { h.cookieSecure = secure }
}

// WithLifetime sets the session marker lifetime.
func WithLifetime(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.lifetime = d
		}
	}
}

// WithAuthThrottle limits sign-in and registration posts to attempts per
// window for each client address.
func WithAuthThrottle(store ratelimit.Store, attempts int, window time.Duration) Option {
	return func(h *Handler) {
		h.throttle = throttleConfig{store: store, attempts: attempts, window: window}
	}
}

// New creates a Handler. storage may be nil, in which case no session
// survives a request.
func New(sessions Sessions, portal Portal, storage session.Storage, renderer *views.Renderer, opts ...Option) *Handler {
	h := &Handler{
		sessions: sessions,
		portal:   portal,
		storage:  storage,
		views:    renderer,
		logger:   slog.Default(),
		lifetime: session.DefaultLifetime,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.authLimiter = ratelimit.New(h.throttle.store, "auth", h.throttle.attempts, h.throttle.window,
		ratelimit.WithLogger(h.logger),
		ratelimit.WithMetrics(h.metrics),
		ratelimit.WithDeny(h.denyAttempt),
	)
	return h
}

// Register mounts the page routes on r. The edge gate is expected to run
// before these handlers.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleLanding)
	r.Get(access.LoginPath, h.handleLoginForm)
	r.With(h.authLimiter.Handler).Post(access.LoginPath, h.handleLogin)
	r.Get(access.RegisterPath, h.handleRegisterForm)
	r.With(h.authLimiter.Handler).Post(access.RegisterPath, h.handleRegister)
	r.Post("/logout", h.handleLogout)
	r.Get("/api/session", h.handleSession)

	r.Route(access.SectionCitizen.Prefix, func(r chi.Router) {
		r.Use(h.guardFor(access.SectionCitizen).Middleware)
		r.Get("/", h.redirectTo(access.SectionCitizen.Dashboard))
		r.Get("/dashboard", h.handleUserDashboard)
		r.Get("/requests", h.handleUserRequests)
		r.Get("/requests/{id}", h.handleUserRequest)
		r.Get("/certificates", h.handleUserCertificates)
		r.Get("/certificates/{id}", h.handleUserCertificate)
		r.Get("/verify-land", h.handleVerifyLandForm)
		r.Post("/verify-land", h.handleVerifyLand)
		r.Get("/profile", h.handleProfile)
	})

	r.Route(access.SectionProfessional.Prefix, func(r chi.Router) {
		r.Use(h.guardFor(access.SectionProfessional).Middleware)
		r.Get("/", h.redirectTo(access.SectionProfessional.Dashboard))
		r.Get("/dashboard", h.handleProfessionalDashboard)
		r.Get("/profile", h.handleProfessionalProfile)
		r.Get("/membership", h.sectionPage("Membership status", "Membership renewal opens once your registration is approved."))
		r.Get("/register", h.handleRegistrationForm)
		r.Post("/register", h.handleRegistration)
		r.Get("/documents", h.sectionPage("Documents", "Upload your licence and qualification documents for review."))
		r.Get("/design", h.handleProfessionalDesigns)
		r.Get("/permits", h.handleProfessionalPermits)
	})
}

func (h *Handler) guardFor(section access.Section) *guard.Guard {
	return guard.ForSection(h.sessions, h.storeFor, section,
		guard.WithRenderer(h.views),
		guard.WithLogger(h.logger),
		guard.WithMetrics(h.metrics),
		guard.WithAuditor(h.auditor),
	)
}

// storeFor binds a session store to the request's device namespace.
func (h *Handler) storeFor(w http.ResponseWriter, r *http.Request) *session.Store {
	return session.New(h.storage, requestcontext.DeviceID(r.Context()),
		session.WithCookies(session.ResponseCookies{W: w}),
		session.WithSecureCookie(h.cookieSecure),
		session.WithLifetime(h.lifetime),
		session.WithLogger(h.logger),
		session.WithMetrics(h.metrics),
	)
}

func (h *Handler) redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// loading renders the retrying placeholder used while a session is being
// re-established.
func (h *Handler) loading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Refresh", guard.RefreshSeconds)
	w.Header().Set("Cache-Control", "no-store")
	h.views.Placeholder(w, r, http.StatusOK, guard.DefaultLoadingMessage)
}

func (h *Handler) handleLanding(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Load(r.Context(), h.storeFor(w, r))
	switch {
	case state.Kind == models.StateLoading:
		h.loading(w, r)
	case state.IsAuthenticated():
		http.Redirect(w, r, state.User.Dashboard(), http.StatusSeeOther)
	default:
		h.views.Render(w, r, http.StatusOK, "landing", views.Page{})
	}
}
