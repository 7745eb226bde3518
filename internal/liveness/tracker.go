// Package liveness tracks which admitted sessions are still active.
// There is no background sweep: CountLive is both the query and the
// garbage collector, purging stale pool members as it reads.
package liveness

import (
	"context"
	"strconv"
	"time"

	"admission-service/internal/logger"
	"admission-service/internal/metrics"
	"admission-service/internal/store"
)

const (
	// PoolKey is the singleton set of candidate online session tokens.
	PoolKey = "online_sessions"

	recordPrefix = "session:"
)

// RecordKey names the last-active record for a session token.
func RecordKey(token string) string {
	return recordPrefix + token
}

type Tracker struct {
	store store.Store

	// recordTTL bounds how long a record survives with no heartbeat at
	// all; staleAfter is the shorter window a record must fall within to
	// count as live. Two independent layers of expiry.
	recordTTL  time.Duration
	staleAfter time.Duration

	metrics *metrics.Metrics

	now func() time.Time
}

func New(s store.Store, recordTTL, staleAfter time.Duration, m *metrics.Metrics) *Tracker {
	return &Tracker{
		store:      s,
		recordTTL:  recordTTL,
		staleAfter: staleAfter,
		metrics:    m,
		now:        time.Now,
	}
}

// Touch records the session as active right now and ensures it is in
// the online pool. Idempotent; every call resets the record TTL.
func (t *Tracker) Touch(ctx context.Context, token string) error {
	millis := strconv.FormatInt(t.now().UnixMilli(), 10)

	if err := t.store.SetWithExpiry(ctx, RecordKey(token), millis, t.recordTTL); err != nil {
		return err
	}

	return t.store.AddToSet(ctx, PoolKey, token)
}

// Release vacates the session's slot. Pool removal is the operation the
// concurrency count depends on; the record delete is best-effort since
// the record would expire on its own anyway.
func (t *Tracker) Release(ctx context.Context, token string) error {
	if err := t.store.RemoveFromSet(ctx, PoolKey, token); err != nil {
		return err
	}

	if err := t.store.Delete(ctx, RecordKey(token)); err != nil {
		logger.Warn("liveness record delete failed", map[string]any{
			"error": err.Error(),
		})
	}

	return nil
}

// CountLive computes the live session count by filtering the pool
// against the staleness window, removing stale members as it goes.
//
// A member whose record read fails is counted as live and left alone:
// failing toward under-admission keeps the concurrency cap honest, and
// keeps cleanup writes off an already degraded store.
func (t *Tracker) CountLive(ctx context.Context) (int, error) {
	members, err := t.store.ListSet(ctx, PoolKey)
	if err != nil {
		return 0, err
	}

	now := t.now()
	live := 0

	for _, token := range members {
		val, ok, err := t.store.Get(ctx, RecordKey(token))
		if err != nil {
			live++
			continue
		}

		if ok && t.isLive(now, val) {
			live++
			continue
		}

		// Expired record, or one we cannot parse. Lazy cleanup: this
		// read pays the cost instead of a background job. A concurrent
		// Touch for the same token can be erased here; its owner
		// re-adds itself on the next heartbeat.
		if err := t.store.RemoveFromSet(ctx, PoolKey, token); err != nil {
			logger.Warn("stale session cleanup failed", map[string]any{
				"error": err.Error(),
			})
		}
	}

	t.metrics.SetLiveSessions(live)

	return live, nil
}

func (t *Tracker) isLive(now time.Time, lastActiveMillis string) bool {
	ms, err := strconv.ParseInt(lastActiveMillis, 10, 64)
	if err != nil {
		return false
	}
	return now.Sub(time.UnixMilli(ms)) < t.staleAfter
}
