package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twmb/franz-go/pkg/kgo"

	"unibuild/internal/backend"
	"unibuild/internal/gate"
	"unibuild/internal/platform/config"
	"unibuild/internal/platform/httpserver"
	"unibuild/internal/platform/kafka"
	"unibuild/internal/platform/logger"
	"unibuild/internal/platform/metrics"
	"unibuild/internal/platform/postgres"
	"unibuild/internal/platform/redis"
	"unibuild/internal/platform/tracing"
	"unibuild/internal/portal/handler"
	"unibuild/internal/portal/views"
	"unibuild/internal/ratelimit"
	ratestore "unibuild/internal/ratelimit/store"
	"unibuild/internal/session"
	"unibuild/internal/session/service"
	sessionstore "unibuild/internal/session/store"
	audit "unibuild/pkg/platform/audit"
	"unibuild/pkg/platform/audit/publisher"
	auditkafka "unibuild/pkg/platform/audit/store/kafka"
	"unibuild/pkg/platform/audit/store/logsink"
	auditpostgres "unibuild/pkg/platform/audit/store/postgres"
	"unibuild/pkg/platform/middleware/device"
)

const (
	janitorInterval = 10 * time.Minute
	auditBuffer     = 1024
	auditPartitions = 3
	startupTimeout  = 15 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	if err := run(); err != nil {
		slog.Error("portal exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, shutdownTracing := tracing.Setup()
	defer func() { _ = shutdownTracing(context.Background()) }()

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	deps, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.close()

	storage, health, err := sessionStorage(ctx, cfg, deps, log)
	if err != nil {
		return err
	}
	if deps.redis != nil && cfg.Storage.Backend != config.StorageRedis {
		if health == nil {
			health = map[string]handler.HealthChecker{}
		}
		health["redis"] = deps.redis
	}
	if p, ok := storage.(sessionstore.Purger); ok {
		go sessionstore.RunJanitor(ctx, p, janitorInterval, log)
	}

	auditStore, err := auditSink(ctx, cfg, deps, log)
	if err != nil {
		return err
	}
	auditor := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(auditBuffer),
		publisher.WithLogger(log),
		publisher.WithDropHook(m.IncAuditDropped),
	)
	defer func() {
		// Runs before deps.close so the kafka client is still open for the flush.
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := auditor.Shutdown(flushCtx); err != nil {
			log.Warn("audit flush on shutdown failed", "error", err)
		}
	}()

	api := backend.New(cfg.API.URL,
		backend.WithTimeout(cfg.API.Timeout),
		backend.WithMetrics(m),
	)
	manager := service.New(api, service.Config{
		RevalidateInterval: cfg.Session.RevalidateInterval,
		RevalidateTimeout:  cfg.Session.RevalidateTimeout,
		GuardWait:          cfg.Session.GuardWait,
	},
		service.WithAuditor(auditor),
		service.WithMetrics(m),
		service.WithLogger(log),
	)

	renderer, err := views.New(log)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	h := handler.New(manager, api, storage, renderer,
		handler.WithLogger(log),
		handler.WithMetrics(m),
		handler.WithAuditor(auditor),
		handler.WithCookieSecure(cfg.Session.CookieSecure),
		handler.WithLifetime(cfg.Session.Lifetime),
		handler.WithAuthThrottle(attemptStore(ctx, deps, log), cfg.RateLimit.AuthAttempts, cfg.RateLimit.AuthWindow),
	)
	router := handler.NewRouter(h, handler.RouterConfig{
		Logger:         log,
		Gate:           gate.New(gate.WithLogger(log), gate.WithMetrics(m), gate.WithAuditor(auditor)),
		Device:         device.Config{Secure: cfg.Session.CookieSecure},
		Gatherer:       reg,
		MetricsToken:   cfg.Server.MetricsToken,
		Audit:          auditor,
		AdminToken:     cfg.Server.AdminToken,
		Health:         health,
		TrustedProxies: cfg.Server.TrustedProxies,
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting unibuild portal",
			"addr", cfg.Server.Addr,
			"api_url", cfg.API.URL,
			"storage", cfg.Storage.Backend,
			"auth_attempts", cfg.RateLimit.AuthAttempts,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// dependencies are the optional infrastructure clients.
type dependencies struct {
	redis *redis.Client
	pool  *pgxpool.Pool
	kafka *kgo.Client
}

func connect(ctx context.Context, cfg config.Config, log *slog.Logger) (*dependencies, error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	d := &dependencies{}
	var err error
	if d.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	if d.pool, err = postgres.New(ctx, cfg.Postgres); err != nil {
		d.close()
		return nil, err
	}
	if d.kafka, err = kafka.New(cfg.Kafka, kgo.WithLogger(kgoLogger{log})); err != nil {
		d.close()
		return nil, err
	}
	if d.kafka != nil {
		if err := kafka.EnsureTopic(ctx, d.kafka, cfg.Kafka.AuditTopic, auditPartitions); err != nil {
			log.WarnContext(ctx, "audit topic not ensured; producing anyway", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
	}
	return d, nil
}

func (d *dependencies) close() {
	if d.kafka != nil {
		d.kafka.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}

func sessionStorage(ctx context.Context, cfg config.Config, d *dependencies, log *slog.Logger) (session.Storage, map[string]handler.HealthChecker, error) {
	switch cfg.Storage.Backend {
	case config.StorageRedis:
		if d.redis == nil {
			return nil, nil, errors.New("STORAGE_BACKEND=redis requires REDIS_URL")
		}
		s := sessionstore.NewRedis(d.redis.Client)
		return s, map[string]handler.HealthChecker{"session_storage": s}, nil
	case config.StoragePostgres:
		if d.pool == nil {
			return nil, nil, errors.New("STORAGE_BACKEND=postgres requires DATABASE_URL")
		}
		s := sessionstore.NewPostgres(d.pool)
		if err := s.Migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("migrate session storage: %w", err)
		}
		return s, map[string]handler.HealthChecker{"session_storage": s}, nil
	case config.StorageNone:
		log.Warn("session storage disabled; sessions will not survive a request")
		return sessionstore.Unavailable{}, nil, nil
	default:
		s := sessionstore.NewMemory()
		return s, map[string]handler.HealthChecker{"session_storage": s}, nil
	}
}

// attemptStore shares throttle windows through redis when it is configured.
func attemptStore(ctx context.Context, d *dependencies, log *slog.Logger) ratelimit.Store {
	if d.redis != nil {
		return ratestore.NewRedis(d.redis.Client, nil)
	}
	s := ratestore.NewMemory(nil)
	go sessionstore.RunJanitor(ctx, s, janitorInterval, log)
	return s
}

// auditSink prefers kafka, then postgres, then the log.
func auditSink(ctx context.Context, cfg config.Config, d *dependencies, log *slog.Logger) (audit.Store, error) {
	switch {
	case d.kafka != nil:
		return auditkafka.New(d.kafka, cfg.Kafka.AuditTopic, log), nil
	case d.pool != nil:
		s := auditpostgres.New(d.pool)
		if err := s.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate audit store: %w", err)
		}
		return s, nil
	default:
		return logsink.New(log), nil
	}
}

// kgoLogger adapts slog to franz-go's logger interface.
type kgoLogger struct {
	log *slog.Logger
}

func (l kgoLogger) Level() kgo.LogLevel { return kgo.LogLevelWarn }

func (l kgoLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	switch level {
	case kgo.LogLevelError:
		l.log.Error(msg, keyvals...)
	case kgo.LogLevelWarn:
		l.log.Warn(msg, keyvals...)
	default:
		l.log.Debug(msg, keyvals...)
	}
}
