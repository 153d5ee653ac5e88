// Package gate is the edge check run before any page work: protected paths
// without the session marker cookie are sent to the login page.
package gate

import (
	"context"
	"log/slog"
	"net/http"

	"unibuild/internal/access"
	"unibuild/internal/platform/metrics"
	"unibuild/internal/session"
	audit "unibuild/pkg/platform/audit"
)

// Gate only proves that some session marker exists. It never reads roles or
// session storage; the page guard does the precise check later.
type Gate struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor audit.Emitter
}

// Option configures a Gate.
type Option func(*Gate)

func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

func WithAuditor(a audit.Emitter) Option {
	return func(g *Gate) { g.auditor = a }
}

func New(opts ...Option) *Gate {
	g := &Gate{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Protect wraps next with the marker check.
func (g *Gate) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		section, protected := access.SectionOf(r.URL.Path)
		if !protected {
			next.ServeHTTP(w, r)
			return
		}
		if session.HasMarker(r) {
			g.metrics.IncGate(section.Name, "allow")
			next.ServeHTTP(w, r)
			return
		}

		g.metrics.IncGate(section.Name, "redirect")
		g.logger.DebugContext(r.Context(), "no session marker, redirecting to login",
			"path", r.URL.Path,
			"section", section.Name,
		)
		g.emit(r.Context(), r.URL.Path)
		http.Redirect(w, r, access.LoginRedirect(r.URL.Path), http.StatusTemporaryRedirect)
	})
}

func (g *Gate) emit(ctx context.Context, path string) {
	if g.auditor == nil {
		return
	}
	if err := g.auditor.Emit(ctx, audit.Event{Action: string(audit.EventGateRedirected), Subject: path}); err != nil {
		g.logger.DebugContext(ctx, "audit emit failed", "error", err)
	}
}
