// Package cache holds the distributed and in-process coordination
// primitives backed by Redis or local memory.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

const defaultLockPrefix = "sync:lock:"

// releaseScript deletes the lock only when it still holds this run's
// token, so a run that outlived the TTL cannot free a newer run's lock.
var releaseScript = redis.NewScript(
	`if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) end return 0`)

// RedisRunLock implements supplier.RunLock with SETNX and a TTL. This is
// the lock for distributed deployments where more than one instance may
// trigger a sync.
type RedisRunLock struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration

	mu     sync.Mutex
	tokens map[supplier.Code]string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisRunLock creates a run lock over a new Redis connection. The
// TTL must exceed the sync run timeout so a crashed run eventually
// releases its lock.
func NewRedisRunLock(cfg RedisConfig, ttl time.Duration) (*RedisRunLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRunLockWithClient(client, defaultLockPrefix, ttl), nil
}

// NewRedisRunLockWithClient creates a run lock over an existing client
func NewRedisRunLockWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisRunLock {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisRunLock{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		tokens:    make(map[supplier.Code]string),
	}
}

// TryAcquire attempts to take the per-supplier lock. Returns false when
// another run already holds it.
func (l *RedisRunLock) TryAcquire(ctx context.Context, code supplier.Code) (bool, error) {
	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, l.keyPrefix+code.String(), token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if acquired {
		l.mu.Lock()
		l.tokens[code] = token
		l.mu.Unlock()
	}
	return acquired, nil
}

// Release frees the lock if this instance still owns it. Releasing a
// lock that was never acquired, or whose TTL already expired and was
// taken over by another run, is a no-op.
func (l *RedisRunLock) Release(ctx context.Context, code supplier.Code) error {
	l.mu.Lock()
	token, held := l.tokens[code]
	delete(l.tokens, code)
	l.mu.Unlock()
	if !held {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + code.String()}, token).Err(); err != nil {
		return fmt.Errorf("failed to release sync lock: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisRunLock) Close() error {
	return l.client.Close()
}

var _ supplier.RunLock = (*RedisRunLock)(nil)
