// Package visitor resolves the per-request identity bundle from the
// three client-held marker cookies. The store keeps no per-client
// identity; these markers are untrusted hints, not security tokens.
package visitor

import "net/http"

// Identity is everything the admission engine knows about a client.
type Identity struct {
	// HasUsedToday reports whether the once-per-day marker matches the
	// current day key.
	HasUsedToday bool

	// IsFirstVisitToday reports whether the first-visit marker is absent
	// or stale for the current day key. First visits are the only
	// requests that increment the daily counter.
	IsFirstVisitToday bool

	// SessionToken is the client's opaque token, or "" when it holds none.
	SessionToken string
}

// Resolve reads the marker cookies against the given day key. Markers
// store a day value rather than a boolean, so comparing against today
// is the sole expiry mechanism.
func Resolve(r *http.Request, today string) Identity {
	return Identity{
		HasUsedToday:      cookieValue(r, UsedTodayCookie) == today,
		IsFirstVisitToday: cookieValue(r, FirstVisitCookie) != today,
		SessionToken:      cookieValue(r, SessionCookie),
	}
}

// SetAdmitted writes all three markers after a successful admission.
// The first-visit marker must be set before the response returns so a
// later request today is classified as a non-incrementing re-entry.
func SetAdmitted(w http.ResponseWriter, today, token string, opts CookieOptions) {
	SetMarker(w, UsedTodayCookie, today, opts)
	SetMarker(w, FirstVisitCookie, today, opts)
	SetMarker(w, SessionCookie, token, opts)
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
