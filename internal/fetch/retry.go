package fetch

import "time"

// Transient status codes worth retrying; everything else non-2xx is
// terminal for that one page.
var retryableStatuses = map[int]struct{}{
	429: {},
	500: {},
	502: {},
	503: {},
	504: {},
}

// backoffPolicy implements exponential backoff between retry attempts.
type backoffPolicy struct {
	maxRetries int
	base       time.Duration
}

// shouldRetry reports whether another attempt is warranted after a
// failure with the given status. Status 0 means a transport-level
// error, which is always considered transient.
func (p backoffPolicy) shouldRetry(status, attempt int) bool {
	if attempt >= p.maxRetries {
		return false
	}
	if status == 0 {
		return true
	}
	_, ok := retryableStatuses[status]
	return ok
}

// wait returns base * 2^attempt.
func (p backoffPolicy) wait(attempt int) time.Duration {
	return p.base << uint(attempt)
}
