// Package ratelimit implements the quota handling for the platform API.
//
// The server publishes the remaining request count of the current window
// and the epoch second at which it resets. When the count reaches zero the
// caller blocks until the reset instant plus a fixed SafetyMargin. There is
// no backoff and no retry: one wait, then the next request.
//
// Usage:
//
//	limiter := ratelimit.New(ratelimit.WithLogger(log))
//
//	resp, err := client.Get(ctx, url)
//	// ... handle resp ...
//	if err := limiter.Observe(ctx, resp.Header); err != nil {
//	    return err // fatal: wait overflow or interrupted suspension
//	}
package ratelimit
