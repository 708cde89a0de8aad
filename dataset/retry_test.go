package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffStopsAfterAttempts(t *testing.T) {
	b := Backoff{Attempts: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond, Multiplier: 2}
	calls, retries := 0, 0
	err := b.Do(context.Background(), func() error {
		calls++
		return errors.New("disk full")
	}, func(int, error) { retries++ })

	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retries)
}

func TestBackoffSucceedsOnRetry(t *testing.T) {
	b := Backoff{Attempts: 3, Initial: time.Millisecond, Multiplier: 2}
	calls := 0
	err := b.Do(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("busy")
		}
		return nil
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestBackoffHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := Backoff{Attempts: 5, Initial: time.Hour, Multiplier: 2}
	calls := 0
	err := b.Do(ctx, func() error {
		calls++
		return errors.New("busy")
	}, nil)

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestBackoffDelay(t *testing.T) {
	b := DefaultBackoff()
	assert.Equal(t, 50*time.Millisecond, b.Delay(0))
	assert.Equal(t, 100*time.Millisecond, b.Delay(1))
	assert.Equal(t, 200*time.Millisecond, b.Delay(2))
	assert.Equal(t, time.Second, b.Delay(10))
}
