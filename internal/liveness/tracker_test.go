package liveness

import (
	"context"
	"errors"
	"testing"
	"time"

	"admission-service/internal/store"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	testRecordTTL  = 10 * time.Minute
	testStaleAfter = 5 * time.Minute
)

func newTestTracker(t *testing.T) (*Tracker, store.Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	kv := store.NewRedisStore(client)
	return New(kv, testRecordTTL, testStaleAfter, nil), kv
}

func TestTouchAndCountLive(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Touch(ctx, "tok-a"))
	require.NoError(t, tr.Touch(ctx, "tok-b"))
	require.NoError(t, tr.Touch(ctx, "tok-a")) // idempotent

	live, err := tr.CountLive(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, live)
}

func TestReleaseExcludesTokenImmediately(t *testing.T) {
	tr, kv := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Touch(ctx, "tok-a"))
	require.NoError(t, tr.Touch(ctx, "tok-b"))

	require.NoError(t, tr.Release(ctx, "tok-a"))

	// Even if the record were still present, pool removal alone must be
	// enough to drop the token from the count.
	live, err := tr.CountLive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, live)

	members, err := kv.ListSet(ctx, PoolKey)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"tok-b"}, members)
}

func TestStaleSessionExcludedAndPurged(t *testing.T) {
	tr, kv := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Touch(ctx, "tok-old"))

	// Move the tracker's clock past the staleness window, but not past
	// the record TTL: the record still exists yet must not count.
	base := tr.now()
	tr.now = func() time.Time { return base.Add(testStaleAfter + time.Second) }

	require.NoError(t, tr.Touch(ctx, "tok-new"))

	live, err := tr.CountLive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, live)

	// The read that discovered staleness is also the garbage collector.
	members, err := kv.ListSet(ctx, PoolKey)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"tok-new"}, members)
}

func TestJustUnderStalenessWindowCounts(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Touch(ctx, "tok"))

	base := tr.now()
	tr.now = func() time.Time { return base.Add(testStaleAfter - time.Second) }

	live, err := tr.CountLive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, live)
}

func TestExpiredRecordPurgedFromPool(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	kv := store.NewRedisStore(client)
	tr := New(kv, testRecordTTL, testStaleAfter, nil)
	ctx := context.Background()

	require.NoError(t, tr.Touch(ctx, "tok"))

	// Past the record TTL the store forgets the session entirely, but
	// the pool set has no per-member expiry. CountLive must reconcile.
	mr.FastForward(testRecordTTL + time.Minute)
	base := time.Now()
	tr.now = func() time.Time { return base.Add(testRecordTTL + time.Minute) }

	live, err := tr.CountLive(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, live)

	members, err := kv.ListSet(ctx, PoolKey)
	require.NoError(t, err)
	require.Empty(t, members)
}

// failingReadStore delegates to an inner store but fails liveness
// record reads for selected tokens.
type failingReadStore struct {
	store.Store
	failKeys map[string]bool
}

func (f *failingReadStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failKeys[key] {
		return "", false, errors.New("read exploded")
	}
	return f.Store.Get(ctx, key)
}

func TestUnreadableRecordCountsAsLive(t *testing.T) {
	tr, kv := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Touch(ctx, "tok-ok"))
	require.NoError(t, tr.Touch(ctx, "tok-broken"))

	tr.store = &failingReadStore{
		Store:    kv,
		failKeys: map[string]bool{RecordKey("tok-broken"): true},
	}

	// Fail toward under-admission: the unreadable member is presumed
	// live and stays in the pool.
	live, err := tr.CountLive(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, live)

	members, err := kv.ListSet(ctx, PoolKey)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"tok-ok", "tok-broken"}, members)
}

func TestCountLivePropagatesPoolListFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	kv := store.NewRedisStore(client)
	tr := New(kv, testRecordTTL, testStaleAfter, nil)

	mr.Close()

	_, err := tr.CountLive(context.Background())
	require.ErrorIs(t, err, store.ErrUnavailable)
}
