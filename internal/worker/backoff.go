package worker

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoff returns base * 2^attempt capped at capDelay, plus up to
// 250ms of jitter.
//
// attempt=0 => base, attempt=1 => 2*base, attempt=2 => 4*base
func ExponentialBackoff(attempt int, base, capDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	multiple := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(base) * multiple)

	if delay > capDelay {
		delay = capDelay
	}

	// small jitter (0–250ms) to avoid thundering herd
	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}

// Retry calls fn up to attempts times, sleeping with ExponentialBackoff
// between failures. It returns the last error, or ctx.Err() if ctx ends first.
func Retry(ctx context.Context, attempts int, base, capDelay time.Duration, fn func(ctx context.Context) error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		t := time.NewTimer(ExponentialBackoff(i, base, capDelay))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}
