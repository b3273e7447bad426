package helpers_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/midnight-circuit/pkg/helpers"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr
}

func TestRedisLockerIsExclusive(t *testing.T) {
	mr := setupRedis(t)
	rdb := helpers.NewRedisClient(mr.Addr(), "", 0)
	defer func() { _ = rdb.Close() }()
	locker := helpers.NewRedisLocker(rdb)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "follow:lock:a|b", time.Second)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "follow:lock:a|b", time.Second)
	require.ErrorIs(t, err, helpers.ErrLockNotAcquired)

	release()
	assert.False(t, mr.Exists("follow:lock:a|b"))

	release2, err := locker.Acquire(ctx, "follow:lock:a|b", time.Second)
	require.NoError(t, err)
	release2()
}

func TestRedisLockerReleaseKeepsForeignLock(t *testing.T) {
	mr := setupRedis(t)
	rdb := helpers.NewRedisClient(mr.Addr(), "", 0)
	defer func() { _ = rdb.Close() }()
	locker := helpers.NewRedisLocker(rdb)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	// TTL expires and another holder takes the key.
	mr.FastForward(2 * time.Second)
	release2, err := locker.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	release()
	assert.True(t, mr.Exists("k"), "stale release must not drop the new holder's lock")
	release2()
	assert.False(t, mr.Exists("k"))
}

func TestRedisJSONRoundTrip(t *testing.T) {
	mr := setupRedis(t)
	rdb := helpers.NewRedisClient(mr.Addr(), "", 0)
	defer func() { _ = rdb.Close() }()
	ctx := context.Background()

	var missing []string
	ok, err := helpers.RedisGetJSON(ctx, rdb, "absent", &missing)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, helpers.RedisSetJSON(ctx, rdb, "present", []string{"a", "b"}, time.Minute))
	var got []string
	ok, err = helpers.RedisGetJSON(ctx, rdb, "present", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)
}
