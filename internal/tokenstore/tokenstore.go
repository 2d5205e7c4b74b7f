// Package tokenstore keeps revoked JWTs until they would have expired anyway.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"booking-system/pkg/config"
)

const (
	servicePrefix = "booking."
	jwtPrefix     = "jwt."
)

// Blacklist records logged-out tokens
type Blacklist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	Close() error
}

func jwtKey(token string) string {
	return servicePrefix + jwtPrefix + token
}

// RedisBlacklist stores revoked tokens in Redis with their remaining lifetime as TTL
type RedisBlacklist struct {
	client *redis.Client
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*RedisBlacklist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("can't ping redis: %w", err)
	}

	return &RedisBlacklist{client: client}, nil
}

func (b *RedisBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, jwtKey(token), true, ttl).Err()
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := b.client.Get(ctx, jwtKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *RedisBlacklist) Close() error {
	return b.client.Close()
}

// MemoryBlacklist is the single-process fallback used when Redis is disabled
type MemoryBlacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	now    func() time.Time
}

func NewMemory() *MemoryBlacklist {
	return &MemoryBlacklist{tokens: make(map[string]time.Time), now: time.Now}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for t, exp := range b.tokens {
		if !exp.After(now) {
			delete(b.tokens, t)
		}
	}
	b.tokens[token] = now.Add(ttl)
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.tokens[token]
	if !ok {
		return false, nil
	}
	if !exp.After(b.now()) {
		delete(b.tokens, token)
		return false, nil
	}
	return true, nil
}

func (b *MemoryBlacklist) Close() error { return nil }

// New picks the Redis blacklist when enabled, the in-memory one otherwise
func New(ctx context.Context, cfg config.RedisConfig) (Blacklist, error) {
	if !cfg.Enabled {
		return NewMemory(), nil
	}
	return NewRedis(ctx, cfg)
}
