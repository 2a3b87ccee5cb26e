// Package cache stores the nonces bound to the OAuth state parameter.
//
// Backends:
//   - Memory (in-process, go-cache, for development or a single node)
//   - Redis (shared across host replicas)
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Client is the nonce store.
type Client interface {
	// Get returns a value, or ErrNotFound if it is missing or expired.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value. A zero ttl uses the backend default.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Take atomically reads and deletes key. A second Take of the same key
	// returns ErrNotFound.
	Take(ctx context.Context, key string) (string, error)

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// Config selects and tunes a backend.
type Config struct {
	Kind       string // "memory" | "redis"
	Addr       string
	DB         int
	Prefix     string // prepended to every key
	DefaultTTL time.Duration
}

// ErrNotFound is returned when the key does not exist or has expired.
var ErrNotFound = errors.New("cache: key not found")

// IsNotFound reports whether err means the key does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// New builds the client for cfg.Kind.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Kind {
	case "redis":
		return NewRedis(ctx, cfg)
	case "memory", "":
		return NewMemory(cfg.Prefix, cfg.DefaultTTL), nil
	default:
		return nil, fmt.Errorf("cache: unsupported kind %q", cfg.Kind)
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + k
}
