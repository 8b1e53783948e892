package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
)

func TestMutex_Lock_Unlock(t *testing.T) {
	client, mr := newTestClient(t)
	factory := NewLockFactory(client, logging.NewNopLogger())

	ctx := context.Background()
	lock := factory.NewMutex("task:abc", WithLockTTL(time.Second))

	require.NoError(t, lock.Lock(ctx))
	assert.True(t, mr.Exists("lock:task:abc"))

	ttl, err := lock.TTL(ctx)
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, lock.Unlock(ctx))
	assert.False(t, mr.Exists("lock:task:abc"))
}

func TestMutex_Lock_Contention(t *testing.T) {
	client, _ := newTestClient(t)
	factory := NewLockFactory(client, logging.NewNopLogger())

	ctx := context.Background()
	lock1 := factory.NewMutex("test-lock", WithRetryCount(1), WithRetryDelay(10*time.Millisecond))
	lock2 := factory.NewMutex("test-lock", WithRetryCount(1), WithRetryDelay(10*time.Millisecond))

	require.NoError(t, lock1.Lock(ctx))
	assert.Equal(t, ErrLockNotAcquired, lock2.Lock(ctx))

	require.NoError(t, lock1.Unlock(ctx))
	assert.NoError(t, lock2.Lock(ctx))
}

func TestMutex_TryLock(t *testing.T) {
	client, _ := newTestClient(t)
	factory := NewLockFactory(client, logging.NewNopLogger())
	ctx := context.Background()

	a := factory.NewMutex("try")
	b := factory.NewMutex("try")

	ok, err := a.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMutex_UnlockByOtherOwner(t *testing.T) {
	client, _ := newTestClient(t)
	factory := NewLockFactory(client, logging.NewNopLogger())
	ctx := context.Background()

	owner := factory.NewMutex("owned")
	other := factory.NewMutex("owned")

	require.NoError(t, owner.Lock(ctx))
	assert.Equal(t, ErrLockNotHeld, other.Unlock(ctx))
}

func TestMutex_Extend(t *testing.T) {
	client, mr := newTestClient(t)
	factory := NewLockFactory(client, logging.NewNopLogger())
	ctx := context.Background()

	lock := factory.NewMutex("ext", WithLockTTL(time.Second))
	require.NoError(t, lock.Lock(ctx))

	ok, err := lock.Extend(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Greater(t, mr.TTL("lock:ext"), 30*time.Second)
}

func TestMutex_ContextCancelled(t *testing.T) {
	client, _ := newTestClient(t)
	factory := NewLockFactory(client, logging.NewNopLogger())

	holder := factory.NewMutex("busy")
	require.NoError(t, holder.Lock(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	waiter := factory.NewMutex("busy", WithRetryDelay(5*time.Millisecond), WithRetryCount(1000))
	assert.ErrorIs(t, waiter.Lock(ctx), context.DeadlineExceeded)
}

//Personal.AI order the ending
