package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"unibuild/internal/gate"
	"unibuild/internal/platform/metrics"
	audit "unibuild/pkg/platform/audit"
	"unibuild/pkg/platform/audit/publisher"
	dErrors "unibuild/pkg/domain-errors"
	"unibuild/pkg/platform/httputil"
	"unibuild/pkg/platform/middleware/accesslog"
	"unibuild/pkg/platform/middleware/admin"
	"unibuild/pkg/platform/middleware/device"
	"unibuild/pkg/platform/middleware/metadata"
	"unibuild/pkg/platform/middleware/request"
	"unibuild/pkg/platform/middleware/requesttime"
)

// HealthChecker is a dependency probed by /healthz.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// AuditLister reads recorded audit events back for operators.
type AuditLister interface {
	List(ctx context.Context, userID string) ([]audit.Event, error)
}

// RouterConfig carries what the router needs beyond the page handler.
// /admin/audit is served from Audit behind AdminToken when Audit is set.
// TrustedProxies may name the client address through forwarding headers.
type RouterConfig struct {
	Logger         *slog.Logger
	Gate           *gate.Gate
	Device         device.Config
	Gatherer       prometheus.Gatherer
	MetricsToken   string
	Audit          AuditLister
	AdminToken     string
	Health         map[string]HealthChecker
	RequestTimeout time.Duration
	TrustedProxies []netip.Prefix
}

// NewRouter assembles the platform middleware, the edge gate and the pages.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := cfg.Gate
	if g == nil {
		g = gate.New(gate.WithLogger(logger))
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.NewResolver(cfg.TrustedProxies).ClientMetadata)
	r.Use(accesslog.Middleware(logger))

	r.Get("/healthz", healthHandler(cfg.Health, logger))
	if cfg.Gatherer != nil {
		r.With(admin.RequireAdminToken(cfg.MetricsToken, logger)).Handle("/metrics", metrics.Handler(cfg.Gatherer))
	}
	if cfg.Audit != nil {
		r.With(admin.RequireAdminToken(cfg.AdminToken, logger)).Get("/admin/audit", auditHandler(cfg.Audit, logger))
	}

	r.Group(func(r chi.Router) {
		r.Use(device.Middleware(cfg.Device))
		r.Use(chimw.Timeout(timeout))
		r.Use(g.Protect)
		h.Register(r)
	})
	return r
}

func healthHandler(checks map[string]HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Health(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				results[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": overall, "dependencies": results})
	}
}

// auditHandler lists one user's audit events, newest first where the sink
// keeps them.
func auditHandler(lister AuditLister, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "user_id is required"))
			return
		}
		events, err := lister.List(r.Context(), userID)
		if err != nil {
			if errors.Is(err, publisher.ErrListingUnsupported) {
				httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "the configured audit sink cannot be read back"))
				return
			}
			logger.ErrorContext(r.Context(), "audit listing failed", "user_id", userID, "error", err)
			httputil.WriteError(w, err)
			return
		}
		if events == nil {
			events = []audit.Event{}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"user_id": userID, "events": events})
	}
}
