package ratelimit

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"uranus/pkg/errors"
	"uranus/pkg/logger"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func headers(remaining string, reset int64) http.Header {
	h := http.Header{}
	h.Set(HeaderRemaining, remaining)
	h.Set(HeaderReset, strconv.FormatInt(reset, 10))
	return h
}

func fixedLimiter(opts ...Option) *Limiter {
	return New(append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func TestShouldSuspendExhaustedWindow(t *testing.T) {
	l := fixedLimiter()

	wait, suspend, err := l.ShouldSuspend(headers("0", fixedNow.Unix()+10))
	require.NoError(t, err)
	assert.True(t, suspend)
	assert.Equal(t, 15*time.Second, wait)
}

func TestShouldSuspendWallClock(t *testing.T) {
	l := New()
	now := time.Now()

	wait, suspend, err := l.ShouldSuspend(headers("0", now.Add(10*time.Second).Unix()+1))
	require.NoError(t, err)
	assert.True(t, suspend)
	assert.GreaterOrEqual(t, wait, 15*time.Second)
	assert.Less(t, wait, 17*time.Second)
}

func TestShouldSuspendNoWait(t *testing.T) {
	tests := []struct {
		name string
		h    http.Header
	}{
		{"remaining positive", headers("12", fixedNow.Unix()+600)},
		{"reset long past", headers("0", fixedNow.Unix()-10)},
		{"margin elapsed exactly", headers("0", fixedNow.Unix()-5)},
		{"no headers", http.Header{}},
		{"garbage remaining", headers("many", fixedNow.Unix()+10)},
		{"garbage reset", http.Header{"X-Rate-Limit-Remaining": {"0"}, "X-Rate-Limit-Reset": {"soon"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wait, suspend, err := fixedLimiter().ShouldSuspend(tt.h)
			require.NoError(t, err)
			assert.False(t, suspend)
			assert.Zero(t, wait)
		})
	}
}

func TestShouldSuspendOverflowIsFatal(t *testing.T) {
	l := fixedLimiter()
	reset := fixedNow.Unix() + int64(math.MaxInt32/1000) + 10

	_, suspend, err := l.ShouldSuspend(headers("0", reset))
	require.Error(t, err)
	assert.False(t, suspend)
	assert.Equal(t, errors.ErrorTypeRateLimit, errors.TypeOf(err))
	assert.True(t, errors.IsFatal(err))
}

func TestShouldSuspendHonoursMaxSuspend(t *testing.T) {
	l := fixedLimiter()
	longest := fixedNow.Unix() + (MaxSuspend.Milliseconds()-SafetyMargin.Milliseconds())/1000

	wait, suspend, err := l.ShouldSuspend(headers("0", longest))
	require.NoError(t, err)
	assert.True(t, suspend)
	assert.LessOrEqual(t, wait, MaxSuspend)

	_, _, err = l.ShouldSuspend(headers("0", longest+1))
	assert.True(t, errors.IsFatal(err))
}

func TestShouldSuspendLogsMissingHeaders(t *testing.T) {
	tl := logger.NewTestLogger()
	l := fixedLimiter(WithLogger(tl))

	_, suspend, err := l.ShouldSuspend(http.Header{"X-Rate-Limit-Remaining": {"0"}})
	require.NoError(t, err)
	assert.False(t, suspend)
	assert.True(t, tl.HasMessageContaining("DEBUG", "Rate limit headers missing"))
}

func TestObserveSleepsForComputedWait(t *testing.T) {
	var slept []time.Duration
	tl := logger.NewTestLogger()
	l := fixedLimiter(
		WithLogger(tl),
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}),
	)

	require.NoError(t, l.Observe(context.Background(), headers("0", fixedNow.Unix()+10)))
	require.NoError(t, l.Observe(context.Background(), headers("3", fixedNow.Unix()+10)))

	assert.Equal(t, []time.Duration{15 * time.Second}, slept)
	assert.Equal(t, int64(1), l.Suspensions())
	assert.True(t, tl.HasMessage("Rate limit reached, suspending"))
}

func TestSuspendCancelled(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Suspend(ctx, time.Hour)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSuspendRealSleep(t *testing.T) {
	l := New()
	start := time.Now()

	require.NoError(t, l.Suspend(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
