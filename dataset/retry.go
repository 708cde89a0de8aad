package dataset

import (
	"context"
	"math"
	"time"
)

// Backoff retries a failing operation a bounded number of times with
// exponentially growing delays.
type Backoff struct {
	Attempts   int
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// DefaultBackoff is used for image and label writes.
func DefaultBackoff() Backoff {
	return Backoff{
		Attempts:   3,
		Initial:    50 * time.Millisecond,
		Max:        time.Second,
		Multiplier: 2,
	}
}

// Delay returns the wait before retry number attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return b.Initial
	}
	delay := time.Duration(float64(b.Initial) * math.Pow(b.Multiplier, float64(attempt)))
	if b.Max > 0 && delay > b.Max {
		delay = b.Max
	}
	return delay
}

// Do calls fn until it succeeds, the attempts are exhausted or ctx is done.
// onRetry, if set, is called before each wait. The last error is returned.
func (b Backoff) Do(ctx context.Context, fn func() error, onRetry func(attempt int, err error)) error {
	attempts := b.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		if onRetry != nil {
			onRetry(attempt+1, err)
		}
		timer := time.NewTimer(b.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}
