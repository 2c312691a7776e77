// Package cache stores short-lived JSON values behind a Store interface.
// Redis is used when reachable; otherwise an in-process map takes over so the
// API keeps working on a developer laptop.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shashiranjanraj/ventas/pkg/logger"
)

// Store is the cache contract used by the HTTP layer.
type Store interface {
	// Get unmarshals the value under key into dest and reports a hit.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	// Driver names the backend ("redis" or "memory").
	Driver() string
	Close() error
}

// Options configures Connect.
type Options struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DialTimeout   time.Duration
}

// Connect returns a Redis-backed store when the server answers a ping and a
// MemoryStore otherwise. The ping error is returned alongside the fallback so
// the caller can log it; the returned Store is never nil.
func Connect(ctx context.Context, opts Options) (Store, error) {
	if opts.RedisAddr == "" {
		return NewMemoryStore(), nil
	}

	rs, err := NewRedisStore(ctx, opts)
	if err != nil {
		logger.Warn("cache: redis unavailable, using in-memory store", "addr", opts.RedisAddr, "error", err)
		return NewMemoryStore(), err
	}
	return rs, nil
}

func encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cache: encode: %w", err)
	}
	return data, nil
}

func decode(data []byte, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache: decode: %w", err)
	}
	return nil
}
