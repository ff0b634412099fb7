package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, "clinic_scheduler:"), mr
}

func TestRedisLocker_TryLockIsExclusive(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	ok, token, err := l.TryLock(ctx, "archive", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)
	assert.True(t, mr.Exists("clinic_scheduler:archive"))

	ok, other, err := l.TryLock(ctx, "archive", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, other)
}

func TestRedisLocker_UnlockRequiresToken(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	_, token, err := l.TryLock(ctx, "archive", time.Minute)
	require.NoError(t, err)

	assert.ErrorIs(t, l.Unlock(ctx, "archive", "someone-else"), ErrNotOwner)
	assert.True(t, mr.Exists("clinic_scheduler:archive"))

	require.NoError(t, l.Unlock(ctx, "archive", token))
	assert.False(t, mr.Exists("clinic_scheduler:archive"))

	ok, _, err := l.TryLock(ctx, "archive", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ExpiresAndRefreshes(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	_, token, err := l.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)

	mr.FastForward(30 * time.Second)
	require.NoError(t, l.Refresh(ctx, "sweep", token, time.Minute))
	mr.FastForward(45 * time.Second)
	assert.True(t, mr.Exists("clinic_scheduler:sweep"))

	mr.FastForward(time.Minute)
	assert.False(t, mr.Exists("clinic_scheduler:sweep"))
	assert.ErrorIs(t, l.Refresh(ctx, "sweep", token, time.Minute), ErrNotOwner)
}

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	l.clock = func() time.Time { return now }
	ctx := context.Background()

	ok, token, err := l.TryLock(ctx, "archive", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, _, _ = l.TryLock(ctx, "archive", time.Minute)
	assert.False(t, ok)

	assert.ErrorIs(t, l.Unlock(ctx, "archive", "wrong"), ErrNotOwner)
	require.NoError(t, l.Unlock(ctx, "archive", token))

	ok, _, _ = l.TryLock(ctx, "archive", time.Minute)
	assert.True(t, ok)

	// просроченная блокировка перехватывается
	now = now.Add(2 * time.Minute)
	ok, _, _ = l.TryLock(ctx, "archive", time.Minute)
	assert.True(t, ok)
}
