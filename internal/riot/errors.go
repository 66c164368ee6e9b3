package riot

import (
	"fmt"
	"time"
)

// NotFoundError is returned when the remote service has no record for the
// requested resource (unknown Riot ID, stale match id). Callers treat it as
// recoverable: a missing match is skipped, not fatal to the batch.
type NotFoundError struct {
	Resource string // "account" or "match"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// RateLimitError is returned when the service keeps answering 429 after the
// retry budget is exhausted.
type RateLimitError struct {
	RetryAfter time.Duration // last Retry-After hint, 0 if none was sent
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by Riot API (retry after %s)", e.RetryAfter)
	}
	return "rate limited by Riot API"
}

// TransientError covers network failures and 5xx responses that survived the
// retry budget. Callers may retry the whole operation later.
type TransientError struct {
	StatusCode int // 0 for transport-level failures
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("riot API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("riot API request failed: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
