package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"unibuild/internal/ratelimit"
)

// allowScript trims the sorted set to the window, then adds one member when
// the count is below the limit. Returns {allowed, count, oldest_ms}.
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local span = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - span)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, member)
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, span)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local first = now
if oldest[2] then
  first = tonumber(oldest[2])
end
return {allowed, count, first}
`)

// Redis keeps attempt windows in sorted sets shared by every portal instance.
type Redis struct {
	client redis.Scripter
	now    func() time.Time
}

// NewRedis creates a store on client. now defaults to time.Now.
func NewRedis(client redis.Scripter, now func() time.Time) *Redis {
	if now == nil {
		now = time.Now
	}
	return &Redis{client: client, now: now}
}

func (s *Redis) Allow(ctx context.Context, key string, limit int, span time.Duration) (ratelimit.Result, error) {
	now := s.now()
	vals, err := allowScript.Run(ctx, s.client, []string{key},
		now.UnixMilli(),
		span.Milliseconds(),
		limit,
		strconv.FormatInt(now.UnixNano(), 10)+"-"+uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return ratelimit.Result{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return ratelimit.Result{}, fmt.Errorf("rate limit script: unexpected reply %v", vals)
	}

	resetAt := time.UnixMilli(vals[2]).Add(span)
	res := ratelimit.Result{
		Allowed: vals[0] == 1,
		Limit:   limit,
		ResetAt: resetAt,
	}
	if res.Allowed {
		res.Remaining = limit - int(vals[1])
	} else {
		res.RetryAfter = resetAt.Sub(now)
	}
	return res, nil
}
