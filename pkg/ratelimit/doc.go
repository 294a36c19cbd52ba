// Package ratelimit keeps the pipeline inside the API's rate limit
// contract.
//
// Two cooperating pieces:
//
// TokenBucket paces requests client-side against the documented
// requests-per-window budget, so the pipeline rarely provokes a 429 in
// the first place.
//
// Waiter handles the 429s that happen anyway: it suspends the calling
// flow until the API-reported reset time (plus a safety margin) and then
// retries the same request. The retry loop is unbounded per the API
// contract, which guarantees the limit eventually resets. Transient
// network errors get one bounded retry; every other error surfaces
// unchanged.
//
// Usage:
//
//	limiter := ratelimit.NewTokenBucket(15, 15*time.Minute)
//	waiter := ratelimit.NewWaiter(2*time.Second, 1, log)
//
//	if !limiter.Allow() {
//	    limiter.Wait()
//	}
//	err := waiter.Do(ctx, func() error {
//	    page, err = client.FetchTimeline(ctx, userID, handle, params)
//	    return err
//	})
package ratelimit
