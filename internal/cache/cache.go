// Package cache implements hr.StatsCache on top of Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "staffdesk:"

// Redis stores JSON-encoded values under a key prefix with a fixed TTL.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Option configures Redis.
type Option func(*Redis)

// WithPrefix overrides the key prefix.
func WithPrefix(p string) Option {
	return func(r *Redis) { r.prefix = p }
}

// WithTTL sets how long cached values live. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	r := &Redis{client: client, prefix: defaultPrefix, ttl: 30 * time.Second}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dial connects to addr and pings it before returning.
func Dial(ctx context.Context, addr, password string, db int, opts ...Option) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedis(client, opts...), nil
}

func (r *Redis) key(k string) string { return r.prefix + k }

// Get decodes the value stored at key into dst. A missing key is not an error.
func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	if key == "" {
		return false, errors.New("key cannot be empty")
	}
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores v at key for the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, v any) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.client.Set(ctx, r.key(key), raw, r.ttl).Err()
}

// Invalidate removes keys.
func (r *Redis) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// Close releases the client.
func (r *Redis) Close() error { return r.client.Close() }

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, string, any) error         { return nil }
func (Nop) Invalidate(context.Context, ...string) error    { return nil }
