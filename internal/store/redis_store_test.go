package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestGetAbsent(t *testing.T) {
	s, _ := newTestStore(t)

	_, ok, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetWithExpiryAndGet(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetWithExpiry(ctx, "k", "v", time.Minute))

	val, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", val)

	mr.FastForward(2 * time.Minute)

	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetWithExpiryRefreshesTTL(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetWithExpiry(ctx, "k", "v1", time.Minute))
	mr.FastForward(45 * time.Second)

	// Overwrite resets the clock; the key must survive past the original
	// deadline.
	require.NoError(t, s.SetWithExpiry(ctx, "k", "v2", time.Minute))
	mr.FastForward(45 * time.Second)

	val, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", val)
}

func TestSetWithExpiryRejectsNonPositiveTTL(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.SetWithExpiry(context.Background(), "k", "v", 0)
	require.Error(t, err)
}

func TestIncrementCreatesAndCounts(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	n, err := s.Increment(ctx, "counter")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = s.Increment(ctx, "counter")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestSetOperations(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddToSet(ctx, "pool", "a"))
	require.NoError(t, s.AddToSet(ctx, "pool", "b"))
	require.NoError(t, s.AddToSet(ctx, "pool", "a")) // idempotent

	members, err := s.ListSet(ctx, "pool")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, members)

	require.NoError(t, s.RemoveFromSet(ctx, "pool", "a"))

	members, err = s.ListSet(ctx, "pool")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"b"}, members)
}

func TestDeleteAbsentKeyIsNotAnError(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Delete(context.Background(), "missing"))
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client)

	mr.Close()

	ctx := context.Background()

	_, _, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrUnavailable)

	_, err = s.Increment(ctx, "k")
	require.ErrorIs(t, err, ErrUnavailable)

	err = s.SetWithExpiry(ctx, "k", "v", time.Minute)
	require.ErrorIs(t, err, ErrUnavailable)

	err = s.AddToSet(ctx, "pool", "m")
	require.ErrorIs(t, err, ErrUnavailable)

	_, err = s.ListSet(ctx, "pool")
	require.ErrorIs(t, err, ErrUnavailable)
}
