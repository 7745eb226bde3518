package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a transient store failure. Callers check it with
// errors.Is; the admission engine is the only place that catches it.
var ErrUnavailable = errors.New("store unavailable")

// Store defines the key-value primitives the admission subsystem needs.
// Implementations must guarantee that Increment is atomic. Nothing here
// spans more than one key; no transactions are assumed anywhere.
type Store interface {
	// Get returns the value for key, or ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Increment atomically increments the integer at key, creating it at
	// zero first when absent, and returns the new value. No expiry is
	// attached; callers must partition such keys by day.
	Increment(ctx context.Context, key string) (int64, error)

	// SetWithExpiry overwrites key with value and resets its TTL.
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	AddToSet(ctx context.Context, key, member string) error
	RemoveFromSet(ctx context.Context, key, member string) error
	ListSet(ctx context.Context, key string) ([]string, error)
}
