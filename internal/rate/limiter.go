// Package rate limits login attempts per client with a fixed window.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
	Hits       int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Config selects the backend. Kind follows the cache kind: memory | redis.
type Config struct {
	Kind   string
	Addr   string
	DB     int
	Prefix string
	Max    int
	Window time.Duration
}

// New builds the limiter for cfg.Kind.
func New(cfg Config) (Limiter, error) {
	if cfg.Max <= 0 || cfg.Window <= 0 {
		return nil, fmt.Errorf("rate: max and window must be positive")
	}
	switch cfg.Kind {
	case "redis":
		client := rdb.NewClient(&rdb.Options{Addr: cfg.Addr, DB: cfg.DB})
		return NewRedisLimiter(client, cfg.Prefix, cfg.Max, cfg.Window), nil
	case "memory", "":
		return NewMemoryLimiter(cfg.Max, cfg.Window), nil
	default:
		return nil, fmt.Errorf("rate: unsupported kind %q", cfg.Kind)
	}
}

// window returns the bucket suffix for now and the time left in it.
func window(now time.Time, size time.Duration) (string, time.Duration) {
	start := now.Truncate(size)
	return fmt.Sprintf("%d", start.Unix()), start.Add(size).Sub(now)
}

func result(hits, max int64, left time.Duration) Result {
	res := Result{Allowed: hits <= max, Hits: hits, Remaining: max - hits}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = left
	}
	return res
}

// RedisLimiter is a fixed window (INCR + EXPIRE) shared across replicas.
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{Client: client, Prefix: prefix, Max: int64(max), Window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	bucket, left := window(l.now().UTC(), l.Window)
	redisKey := l.Prefix + strings.ReplaceAll(key, " ", "_") + ":" + bucket

	hits, err := l.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, err
	}
	// set expiry on first hit
	if hits == 1 {
		if err := l.Client.Expire(ctx, redisKey, left).Err(); err != nil {
			return Result{}, err
		}
	}
	return result(hits, l.Max, left), nil
}

// MemoryLimiter keeps counters in-process (single replica).
type MemoryLimiter struct {
	c      *gocache.Cache
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, window),
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	bucket, left := window(l.now().UTC(), l.window)
	k := key + ":" + bucket

	if err := l.c.Add(k, int64(1), left); err == nil {
		return result(1, l.max, left), nil
	}
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// expired between Add and Increment: start a new count
		l.c.Set(k, int64(1), left)
		hits = 1
	}
	return result(hits, l.max, left), nil
}
