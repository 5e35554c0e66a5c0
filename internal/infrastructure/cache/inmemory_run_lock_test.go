package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

func TestInMemoryRunLock(t *testing.T) {
	lock := NewInMemoryRunLock(time.Minute)
	ctx := context.Background()

	acquired, err := lock.TryAcquire(ctx, supplier.CodeSyscom)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = lock.TryAcquire(ctx, supplier.CodeSyscom)
	require.NoError(t, err)
	assert.False(t, acquired, "second acquire must fail while held")

	// Other suppliers are independent
	acquired, err = lock.TryAcquire(ctx, supplier.CodeTecnosinergia)
	require.NoError(t, err)
	assert.True(t, acquired)

	require.NoError(t, lock.Release(ctx, supplier.CodeSyscom))
	acquired, err = lock.TryAcquire(ctx, supplier.CodeSyscom)
	require.NoError(t, err)
	assert.True(t, acquired, "lock is reusable after release")
}

func TestInMemoryRunLockExpiry(t *testing.T) {
	lock := NewInMemoryRunLock(time.Minute)
	now := time.Now()
	lock.clock = func() time.Time { return now }
	ctx := context.Background()

	acquired, err := lock.TryAcquire(ctx, supplier.CodeSyscom)
	require.NoError(t, err)
	require.True(t, acquired)

	lock.clock = func() time.Time { return now.Add(2 * time.Minute) }
	acquired, err = lock.TryAcquire(ctx, supplier.CodeSyscom)
	require.NoError(t, err)
	assert.True(t, acquired, "expired lock is reclaimable")
}
