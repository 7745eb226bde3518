package visitor

import (
	"net/http"
	"time"
)

const (
	// Marker cookies. All three are non-sensitive hints the client is
	// free to read or clear; clearing them just makes the client look new.
	UsedTodayCookie  = "adm_used_day"
	FirstVisitCookie = "adm_first_day"
	SessionCookie    = "adm_session"

	markerLifetime = 24 * time.Hour
)

// CookieOptions defines how marker cookies are issued.
type CookieOptions struct {
	Path     string
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// SetMarker issues one marker cookie with the standard ~24h lifetime.
// Markers stay readable by client script; day comparison, not the
// cookie's own expiry, is what actually retires them.
func SetMarker(w http.ResponseWriter, name, value string, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Expires:  time.Now().Add(markerLifetime),
		HttpOnly: false,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearMarker removes a marker cookie from the client.
func ClearMarker(w http.ResponseWriter, name string, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: false,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}
