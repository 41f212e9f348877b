package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisIdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisIdempotencyStore(client, "mpt:idem:", ttl), mr
}

func TestRedisIdempotencyStore_AddAndContains(t *testing.T) {
	store, mr := setupRedisStore(t, time.Hour)
	ctx := context.Background()

	seen, err := store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Add(ctx, "evt-1"))

	seen, err = store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.True(t, mr.Exists("mpt:idem:evt-1"))
}

func TestRedisIdempotencyStore_Expiry(t *testing.T) {
	store, mr := setupRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "evt-2"))
	mr.FastForward(2 * time.Minute)

	seen, err := store.Contains(ctx, "evt-2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisIdempotencyStore_Unavailable(t *testing.T) {
	store, mr := setupRedisStore(t, time.Minute)
	mr.Close()

	_, err := store.Contains(context.Background(), "evt-3")
	assert.Error(t, err)
}

func TestMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "evt-4"))
	seen, _ := store.Contains(ctx, "evt-4")
	assert.True(t, seen)

	now = now.Add(2 * time.Minute)
	seen, _ = store.Contains(ctx, "evt-4")
	assert.False(t, seen)
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	store, _ := setupRedisStore(t, time.Hour)
	calls := 0
	h := IdempotentHandler(store, func(context.Context, *Event) error { calls++; return nil }, testLogger)

	ev := &Event{EventID: "evt-5", EventType: "notification.requested"}
	require.NoError(t, h(context.Background(), ev))
	require.NoError(t, h(context.Background(), ev))

	assert.Equal(t, 1, calls)
}

func TestIdempotentHandler_FailureIsNotRecorded(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	calls := 0
	h := IdempotentHandler(store, func(context.Context, *Event) error {
		calls++
		if calls == 1 {
			return errBoom
		}
		return nil
	}, testLogger)

	ev := &Event{EventID: "evt-6"}
	require.ErrorIs(t, h(context.Background(), ev), errBoom)
	require.NoError(t, h(context.Background(), ev))
	assert.Equal(t, 2, calls)
}

func TestIdempotentHandler_StoreDownStillProcesses(t *testing.T) {
	store, mr := setupRedisStore(t, time.Hour)
	mr.Close()
	calls := 0
	h := IdempotentHandler(store, func(context.Context, *Event) error { calls++; return nil }, testLogger)

	require.NoError(t, h(context.Background(), &Event{EventID: "evt-7"}))
	assert.Equal(t, 1, calls)
}
