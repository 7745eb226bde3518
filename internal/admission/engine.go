// Package admission decides whether a client may begin a usage session.
// One pass per request: once-per-day gate, concurrency gate, daily
// quota gate, then commit. Store faults fail open rather than blocking
// the product on an infrastructure outage.
package admission

import (
	"context"
	"errors"
	"strconv"

	"admission-service/internal/daykey"
	"admission-service/internal/liveness"
	"admission-service/internal/logger"
	"admission-service/internal/metrics"
	"admission-service/internal/store"
	"admission-service/internal/visitor"
)

type Engine struct {
	store   store.Store
	tracker *liveness.Tracker
	metrics *metrics.Metrics

	dailyLimit      int64
	concurrentLimit int
}

func NewEngine(
	s store.Store,
	tracker *liveness.Tracker,
	m *metrics.Metrics,
	dailyLimit int64,
	concurrentLimit int,
) *Engine {
	return &Engine{
		store:           s,
		tracker:         tracker,
		metrics:         m,
		dailyLimit:      dailyLimit,
		concurrentLimit: concurrentLimit,
	}
}

// Admit runs the gates for one request. today must be the day key
// derived from the single instant captured for this request; Admit
// never derives time itself.
func (e *Engine) Admit(ctx context.Context, id visitor.Identity, today string) Decision {

	// 1. Once-per-day gate. No store access; rejecting here must leave
	// no trace in the store.
	if id.HasUsedToday {
		d := rejected(ReasonOncePerDay, "daily session already used, come back tomorrow")
		e.record(d)
		return d
	}

	// 2. Concurrency gate. Checked before the quota gate so a request
	// bounced on capacity never burns a daily counter increment.
	live, err := e.tracker.CountLive(ctx)
	if err != nil {
		return e.failOpen(ctx, id, err)
	}
	if live >= e.concurrentLimit {
		d := rejected(ReasonConcurrency, "all seats are busy, try again in a few minutes")
		d.Concurrent = live
		e.record(d)
		return d
	}

	// 3. Daily quota gate. Only a first visit increments; a re-entry
	// reads the counter it already contributed to.
	var total int64
	if id.IsFirstVisitToday {
		total, err = e.store.Increment(ctx, daykey.CounterKey(today))
	} else {
		total, err = e.readCounter(ctx, today)
	}
	if err != nil {
		return e.failOpen(ctx, id, err)
	}

	// The comparison is against the count as it stood before this
	// client, with a strict >. The source system admits exactly
	// DailyLimit+1 first visits per day; kept as-is.
	if total-1 > e.dailyLimit {
		d := rejected(ReasonDailyLimit, "daily visitor quota is exhausted for today")
		d.Total = total
		e.record(d)
		return d
	}

	// 4. Commit: resolve or mint the token, then claim the slot.
	token := id.SessionToken
	if token == "" {
		token, err = visitor.GenerateToken()
		if err != nil {
			logger.Error("session token mint failed", map[string]any{
				"error": err.Error(),
			})
			d := rejected(ReasonServerError, "could not start a session, please retry")
			e.record(d)
			return d
		}
	}

	if err := e.tracker.Touch(ctx, token); err != nil {
		// The slot claim failed, not the decision. Availability wins.
		return e.failOpenWithToken(token, err)
	}

	d := Decision{
		Allowed:      true,
		Total:        total,
		Concurrent:   live + 1,
		SessionToken: token,
	}
	e.record(d)
	return d
}

func (e *Engine) readCounter(ctx context.Context, today string) (int64, error) {
	val, ok, err := e.store.Get(ctx, daykey.CounterKey(today))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// Counter keys are only ever written by Increment; a non-integer
		// value means someone else owns this key.
		logger.Warn("daily counter is not an integer", map[string]any{
			"value": val,
		})
		return 0, nil
	}
	return n, nil
}

// failOpen grants a degraded admission when the store is unreachable.
// The product stays available; enforcement resumes when the store does.
func (e *Engine) failOpen(ctx context.Context, id visitor.Identity, cause error) Decision {
	if !errors.Is(cause, store.ErrUnavailable) {
		logger.Error("unexpected admission failure treated as degraded", map[string]any{
			"error": cause.Error(),
		})
	}

	token := id.SessionToken
	if token == "" {
		var err error
		token, err = visitor.GenerateToken()
		if err != nil {
			d := rejected(ReasonServerError, "could not start a session, please retry")
			e.record(d)
			return d
		}
	}

	// Best-effort slot claim; with the store down this usually fails too.
	if err := e.tracker.Touch(ctx, token); err != nil {
		logger.Warn("degraded admission without liveness record", map[string]any{
			"error": err.Error(),
		})
	}

	return e.failOpenWithToken(token, cause)
}

func (e *Engine) failOpenWithToken(token string, cause error) Decision {
	logger.Warn("store unavailable, admitting fail-open", map[string]any{
		"error": cause.Error(),
	})

	d := Decision{
		Allowed:      true,
		SessionToken: token,
		Degraded:     true,
	}
	e.record(d)
	return d
}

func (e *Engine) record(d Decision) {
	switch {
	case d.Degraded:
		e.metrics.RecordDecision(metrics.OutcomeDegraded, "")
	case d.Allowed:
		e.metrics.RecordDecision(metrics.OutcomeAdmitted, "")
	default:
		e.metrics.RecordDecision(metrics.OutcomeRejected, string(d.Reason))
	}
}
