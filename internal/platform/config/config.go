package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"net/netip"
	"time"

	"unibuild/pkg/platform/middleware/metadata"
	liststr "unibuild/pkg/platform/strings"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageNone     = "none"
)

// Config is the full runtime configuration of the portal.
type Config struct {
	Server    Server
	API       APIConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Session   SessionConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	// MetricsToken guards /metrics; empty disables the endpoint.
	MetricsToken string
	// AdminToken guards /admin/audit; empty disables the endpoint.
	AdminToken string
	// TrustedProxies are the peers whose forwarding headers name the client.
	TrustedProxies []netip.Prefix
}

// APIConfig points at the remote UniBuild API.
type APIConfig struct {
	URL     string
	Timeout time.Duration
}

// StorageConfig selects the durable per-browser session storage.
type StorageConfig struct {
	Backend string
}

// RedisConfig holds connection settings for the redis storage backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig holds connection settings for the postgres storage backend.
type PostgresConfig struct {
	URL      string
	MaxConns int32
}

// SessionConfig tunes cookie attributes and re-validation.
type SessionConfig struct {
	CookieSecure       bool
	Lifetime           time.Duration
	RevalidateTimeout  time.Duration
	RevalidateInterval time.Duration
	GuardWait          time.Duration
}

// KafkaConfig enables the kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// RateLimitConfig throttles sign-in and registration attempts per client IP.
// Zero Attempts disables throttling.
type RateLimitConfig struct {
	AuthAttempts int
	AuthWindow   time.Duration
}

// LogConfig selects slog level and handler.
type LogConfig struct {
	Level  string
	Format string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	e := &envReader{}
	cfg := Config{
		Server: Server{
			Addr:            e.str("PORTAL_ADDR", ":3000"),
			ShutdownTimeout: e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
			MetricsToken:    e.str("METRICS_TOKEN", ""),
			AdminToken:      e.str("ADMIN_TOKEN", ""),
			TrustedProxies:  e.prefixes("TRUSTED_PROXIES"),
		},
		API: APIConfig{
			URL:     strings.TrimRight(e.str("API_URL", "http://localhost:5002"), "/"),
			Timeout: e.duration("API_TIMEOUT", 15*time.Second),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(e.str("STORAGE_BACKEND", StorageMemory)),
		},
		Redis: RedisConfig{
			URL:          e.str("REDIS_URL", ""),
			PoolSize:     e.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: e.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  e.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  e.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: e.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL:      e.str("DATABASE_URL", ""),
			MaxConns: int32(e.integer("DATABASE_MAX_CONNS", 10)),
		},
		Session: SessionConfig{
			CookieSecure:       e.boolean("COOKIE_SECURE", false),
			Lifetime:           e.duration("SESSION_LIFETIME", 7*24*time.Hour),
			RevalidateTimeout:  e.duration("REVALIDATE_TIMEOUT", 10*time.Second),
			RevalidateInterval: e.duration("REVALIDATE_INTERVAL", 5*time.Minute),
			GuardWait:          e.duration("GUARD_WAIT", 2*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    e.list("KAFKA_BROKERS"),
			AuditTopic: e.str("KAFKA_AUDIT_TOPIC", "unibuild.portal.audit"),
		},
		RateLimit: RateLimitConfig{
			AuthAttempts: e.integer("RATE_LIMIT_AUTH_ATTEMPTS", 10),
			AuthWindow:   e.duration("RATE_LIMIT_AUTH_WINDOW", time.Minute),
		},
		Log: LogConfig{
			Level:  e.str("LOG_LEVEL", "info"),
			Format: e.str("LOG_FORMAT", "json"),
		},
	}

	switch cfg.Storage.Backend {
	case StorageMemory, StorageNone:
	case StorageRedis:
		if cfg.Redis.URL == "" {
			e.errs = append(e.errs, errors.New("REDIS_URL is required when STORAGE_BACKEND=redis"))
		}
	case StoragePostgres:
		if cfg.Postgres.URL == "" {
			e.errs = append(e.errs, errors.New("DATABASE_URL is required when STORAGE_BACKEND=postgres"))
		}
	default:
		e.errs = append(e.errs, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend))
	}

	return cfg, errors.Join(e.errs...)
}

type envReader struct {
	errs []error
}

func (e *envReader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return def
	}
	return d
}

func (e *envReader) integer(key string, def int) int {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return def
	}
	return n
}

func (e *envReader) boolean(key string, def bool) bool {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid boolean %q", key, raw))
		return def
	}
	return b
}

func (e *envReader) list(key string) []string {
	return liststr.SplitList(e.str(key, ""), ",")
}

func (e *envReader) prefixes(key string) []netip.Prefix {
	p, err := metadata.ParsePrefixes(e.list(key))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return nil
	}
	return p
}
