package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"uranus/pkg/errors"
	"uranus/pkg/logger"
)

// Header names carrying the quota state of the current window
const (
	HeaderRemaining = "x-rate-limit-remaining"
	HeaderReset     = "x-rate-limit-reset"
)

const (
	// SafetyMargin is added past the published reset instant to absorb clock skew
	SafetyMargin = 5 * time.Second

	// MaxSuspend is the longest wait the limiter will honour
	MaxSuspend = time.Duration(math.MaxInt32) * time.Millisecond
)

// SleepFunc blocks for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Limiter decides from response headers whether the next request must wait
// for the quota window to reset. It keeps no state between responses.
type Limiter struct {
	now         func() time.Time
	sleep       SleepFunc
	log         logger.Logger
	suspensions atomic.Int64
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithSleeper overrides how the limiter blocks
func WithSleeper(sleep SleepFunc) Option {
	return func(l *Limiter) { l.sleep = sleep }
}

// WithLogger sets the logger used for suspension records
func WithLogger(log logger.Logger) Option {
	return func(l *Limiter) { l.log = log }
}

// New creates a Limiter using the wall clock and a context-aware sleep
func New(opts ...Option) *Limiter {
	l := &Limiter{
		now:   time.Now,
		sleep: sleepContext,
		log:   logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ShouldSuspend returns how long the caller must wait before its next request.
// The boolean is false when no wait is needed. A wait longer than MaxSuspend
// is returned as a fatal rate_limit error rather than capped.
func (l *Limiter) ShouldSuspend(h http.Header) (time.Duration, bool, error) {
	remainingRaw := h.Get(HeaderRemaining)
	resetRaw := h.Get(HeaderReset)
	if remainingRaw == "" || resetRaw == "" {
		l.log.DebugWithFields("Rate limit headers missing", map[string]interface{}{
			"remaining": remainingRaw,
			"reset":     resetRaw,
		})
		return 0, false, nil
	}

	remaining, err := strconv.Atoi(remainingRaw)
	if err != nil {
		l.log.DebugWithFields("Unparsable rate limit header", map[string]interface{}{
			"header": HeaderRemaining,
			"value":  remainingRaw,
		})
		return 0, false, nil
	}
	if remaining != 0 {
		return 0, false, nil
	}

	reset, err := strconv.ParseInt(resetRaw, 10, 64)
	if err != nil {
		l.log.DebugWithFields("Unparsable rate limit header", map[string]interface{}{
			"header": HeaderReset,
			"value":  resetRaw,
		})
		return 0, false, nil
	}

	waitMs := reset*1000 - l.now().UnixMilli() + SafetyMargin.Milliseconds()
	if waitMs > MaxSuspend.Milliseconds() {
		e := errors.New(errors.ErrorTypeRateLimit,
			fmt.Sprintf("rate limit reset %d requires a wait of %dms, longer than the maximum of %dms", reset, waitMs, MaxSuspend.Milliseconds()))
		return 0, false, e
	}
	if waitMs <= 0 {
		return 0, false, nil
	}

	wait := time.Duration(waitMs) * time.Millisecond
	logger.LogRateLimit(l.log, remainingRaw, reset, wait)
	return wait, true, nil
}

// Suspend blocks for d. An interrupted wait is a fatal rate_limit error since
// the next request would break the published quota.
func (l *Limiter) Suspend(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	l.suspensions.Add(1)
	if err := l.sleep(ctx, d); err != nil {
		return errors.Wrap(errors.ErrorTypeRateLimit, "rate limit suspension interrupted", err)
	}
	l.log.InfoWithFields("Rate limit window reset, resuming", map[string]interface{}{"waited": d})
	return nil
}

// Observe consults the headers of a response and suspends when required
func (l *Limiter) Observe(ctx context.Context, h http.Header) error {
	wait, suspend, err := l.ShouldSuspend(h)
	if err != nil {
		return err
	}
	if !suspend {
		return nil
	}
	return l.Suspend(ctx, wait)
}

// Suspensions reports how many times the limiter has blocked
func (l *Limiter) Suspensions() int64 {
	return l.suspensions.Load()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
