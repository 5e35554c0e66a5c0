package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

// The lock against a live Redis is exercised in deployment; these tests
// cover the ownership bookkeeping that never needs a connection.

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: time.Millisecond})
}

func TestRedisRunLockReleaseWithoutOwnershipIsNoop(t *testing.T) {
	lock := NewRedisRunLockWithClient(unreachableClient(), "", time.Minute)

	// No token was ever acquired for this supplier, so Release must not
	// touch Redis at all, let alone delete another run's lock.
	err := lock.Release(context.Background(), supplier.CodeSyscom)
	assert.NoError(t, err)
}

func TestRedisRunLockReleaseDropsTokenOnce(t *testing.T) {
	lock := NewRedisRunLockWithClient(unreachableClient(), "", time.Minute)
	lock.tokens[supplier.CodeSyscom] = "run-token"

	// First release owns the token and reaches for Redis, which is down
	err := lock.Release(context.Background(), supplier.CodeSyscom)
	require.Error(t, err)
	assert.Empty(t, lock.tokens)

	// The token is gone either way, so a second release is a no-op
	err = lock.Release(context.Background(), supplier.CodeSyscom)
	assert.NoError(t, err)
}

func TestRedisRunLockDefaults(t *testing.T) {
	lock := NewRedisRunLockWithClient(unreachableClient(), "", 0)
	assert.Equal(t, defaultLockPrefix, lock.keyPrefix)
	assert.Equal(t, 15*time.Minute, lock.ttl)
	assert.NotNil(t, lock.tokens)
}
