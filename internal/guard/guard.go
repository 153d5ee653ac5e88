package guard

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"unibuild/internal/access"
	"unibuild/internal/platform/metrics"
	"unibuild/internal/session"
	"unibuild/internal/session/models"
	audit "unibuild/pkg/platform/audit"
)

// Loader establishes the session for a request.
type Loader interface {
	Load(ctx context.Context, store *session.Store) models.State
}

// StoreFactory binds a session store to one request/response pair.
type StoreFactory func(w http.ResponseWriter, r *http.Request) *session.Store

// PlaceholderRenderer writes the loading or redirecting page.
type PlaceholderRenderer interface {
	Placeholder(w http.ResponseWriter, r *http.Request, status int, message string)
}

// RefreshSeconds is how soon a loading page asks the browser to retry.
const RefreshSeconds = "1"

// Guard adapts Mount to HTTP: each request is one mount.
type Guard struct {
	loader      Loader
	stores      StoreFactory
	allowed     []string
	placeholder string
	renderer    PlaceholderRenderer
	logger      *slog.Logger
	metrics     *metrics.Metrics
	auditor     audit.Emitter
}

// Option configures a Guard.
type Option func(*Guard)

func WithPlaceholder(message string) Option {
	return func(g *Guard) { g.placeholder = message }
}

func WithRenderer(r PlaceholderRenderer) Option {
	return func(g *Guard) {
		if r != nil {
			g.renderer = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) { g.metrics = m }
}

func WithAuditor(a audit.Emitter) Option {
	return func(g *Guard) { g.auditor = a }
}

// New creates a guard for a layout declaring allowed roles.
func New(loader Loader, stores StoreFactory, allowed []string, opts ...Option) *Guard {
	g := &Guard{
		loader:   loader,
		stores:   stores,
		allowed:  allowed,
		renderer: plainRenderer{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// ForSection is New with the section's full role set.
func ForSection(loader Loader, stores StoreFactory, section access.Section, opts ...Option) *Guard {
	return New(loader, stores, section.Roles, opts...)
}

type recordingNavigator struct {
	target string
}

func (n *recordingNavigator) Navigate(target string) { n.target = target }

// Middleware guards next. On render, the session state is available to next
// through StateFrom.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		store := g.stores(w, r)
		state := g.loader.Load(ctx, store)

		nav := &recordingNavigator{}
		view := NewMount(g.allowed, g.placeholder, nav).Render(state, r.URL.Path)

		section, _ := access.SectionOf(r.URL.Path)
		g.metrics.IncGuard(section.Name, view.Outcome.String())

		switch view.Outcome {
		case OutcomeRender:
			next.ServeHTTP(w, r.WithContext(WithState(ctx, state)))
		case OutcomeLoading:
			w.Header().Set("Refresh", RefreshSeconds)
			w.Header().Set("Cache-Control", "no-store")
			g.renderer.Placeholder(w, r, http.StatusOK, view.Message)
		case OutcomeLogin:
			store.ClearMarker()
			http.Redirect(w, r, nav.target, http.StatusSeeOther)
		case OutcomeRedirect:
			g.logger.InfoContext(ctx, "role does not match section, redirecting to dashboard",
				"path", r.URL.Path,
				"target", view.Target,
				"user_id", state.User.ID,
			)
			g.emit(ctx, state.User, r.URL.Path, view.Target)
			if nav.target == "" {
				g.renderer.Placeholder(w, r, http.StatusOK, view.Message)
				return
			}
			http.Redirect(w, r, nav.target, http.StatusSeeOther)
		}
	})
}

func (g *Guard) emit(ctx context.Context, user *models.User, path, target string) {
	if g.auditor == nil {
		return
	}
	err := g.auditor.Emit(ctx, audit.Event{
		Action:  string(audit.EventGuardRedirected),
		UserID:  user.ID,
		Subject: path,
		Reason:  "redirected to " + target,
	})
	if err != nil {
		g.logger.DebugContext(ctx, "audit emit failed", "error", err)
	}
}

type stateKey struct{}

// WithState stores the guarded session state in ctx.
func WithState(ctx context.Context, s models.State) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// StateFrom returns the guarded session state.
func StateFrom(ctx context.Context) (models.State, bool) {
	s, ok := ctx.Value(stateKey{}).(models.State)
	return s, ok
}

var plainTmpl = template.Must(template.New("placeholder").Parse(
	`<!doctype html><html><head><meta charset="utf-8"><title>UniBuild</title></head>` +
		`<body><main class="placeholder"><p>{{.}}</p></main></body></html>`))

type plainRenderer struct{}

func (plainRenderer) Placeholder(w http.ResponseWriter, _ *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = plainTmpl.Execute(w, message)
}
