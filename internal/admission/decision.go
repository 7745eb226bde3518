package admission

// Reason is the stable rejection code surfaced to clients.
type Reason string

const (
	ReasonOncePerDay  Reason = "ONCE_PER_DAY"
	ReasonConcurrency Reason = "CONCURRENCY_LIMIT"
	ReasonDailyLimit  Reason = "DAILY_LIMIT"
	ReasonServerError Reason = "SERVER_ERROR"
)

// Decision is the terminal outcome of one admission pass.
type Decision struct {
	Allowed bool
	Reason  Reason // empty when Allowed
	Message string // human-readable, rejections only

	// Total is the daily counter as of this request; Concurrent is the
	// live session count. Both are zero when Degraded.
	Total      int64
	Concurrent int

	SessionToken string

	// Degraded marks a fail-open admit granted while the store was
	// unreachable. Enforcement was skipped, not passed.
	Degraded bool
}

func rejected(reason Reason, message string) Decision {
	return Decision{Allowed: false, Reason: reason, Message: message}
}
