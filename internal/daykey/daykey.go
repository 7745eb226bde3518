// Package daykey derives the calendar-day partition keys used for quota
// accounting. Callers must capture "now" once per request and pass the
// same instant to every derivation, so a request straddling midnight
// never sees a torn day key.
package daykey

import (
	"fmt"
	"time"
)

const layout = "2006-01-02"

// ForAdmission returns the UTC day key the admission path uses for both
// the once-per-day marker and the daily counter.
func ForAdmission(now time.Time) string {
	return now.UTC().Format(layout)
}

// InZone returns the day key in a named timezone. Only the read-only
// stats view uses this; admission accounting stays on ForAdmission.
func InZone(now time.Time, name string) (string, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return "", fmt.Errorf("daykey: load location %q: %w", name, err)
	}
	return now.In(loc).Format(layout), nil
}

// CounterKey names the daily admission counter for a day key.
func CounterKey(day string) string {
	return "daily:" + day
}
