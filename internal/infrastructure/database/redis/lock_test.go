package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frknaykc/dragonseye/internal/config"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(config.RedisConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestMutexTryLockExcludesSecondHolder(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()

	m1 := NewMutex(client, "dragonseye:lock:refresh")
	m2 := NewMutex(client, "dragonseye:lock:refresh")

	ok, err := m1.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m2.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m1.Unlock(ctx))

	ok, err = m2.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMutexUnlockByNonOwnerFails(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()

	owner := NewMutex(client, "dragonseye:lock:refresh")
	other := NewMutex(client, "dragonseye:lock:refresh")

	ok, err := owner.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	err = other.Unlock(ctx)
	assert.Equal(t, ErrLockNotHeld, err)

	// Owner can still release.
	require.NoError(t, owner.Unlock(ctx))
}

func TestMutexLockGivesUpAfterRetries(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()

	holder := NewMutex(client, "dragonseye:lock:refresh")
	ok, err := holder.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	waiter := NewMutex(client, "dragonseye:lock:refresh",
		WithRetry(2, time.Millisecond))
	err = waiter.Lock(ctx)
	assert.Equal(t, ErrLockNotAcquired, err)
}

func TestMutexExpiresAfterTTL(t *testing.T) {
	mr, client := newTestClient(t)
	ctx := context.Background()

	holder := NewMutex(client, "dragonseye:lock:refresh", WithLockTTL(time.Second))
	ok, err := holder.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	next := NewMutex(client, "dragonseye:lock:refresh")
	ok, err = next.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
