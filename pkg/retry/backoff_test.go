package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(retries int) Config {
	return Config{
		MaxRetries:     retries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	var notified []int

	err := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("broker unavailable")
		}
		return nil
	}, func(attempt int, _ time.Duration, err error) {
		notified = append(notified, attempt)
		assert.EqualError(t, err, "broker unavailable")
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, notified)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	cause := errors.New("connection refused")
	attempts := 0

	err := Do(context.Background(), fastConfig(2), func(ctx context.Context) error {
		attempts++
		return cause
	}, nil)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, attempts)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	cause := errors.New("bad credentials")
	attempts := 0

	err := Do(context.Background(), fastConfig(-1), func(ctx context.Context) error {
		attempts++
		return Permanent(cause)
	}, nil)

	assert.Equal(t, cause, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(-1)
	cfg.InitialBackoff = time.Hour
	cfg.MaxBackoff = time.Hour

	err := Do(ctx, cfg, func(ctx context.Context) error {
		return errors.New("unreachable")
	}, func(int, time.Duration, error) { cancel() })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff_Growth(t *testing.T) {
	cfg := Config{InitialBackoff: time.Second, MaxBackoff: 30 * time.Second, Multiplier: 2.0}

	tests := []struct {
		n    int
		want time.Duration
	}{
		{0, 0},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second},
		{10, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("retry_%d", tt.n), func(t *testing.T) {
			assert.Equal(t, tt.want, backoff(tt.n, cfg))
		})
	}
}

func TestBackoff_JitterStaysInRange(t *testing.T) {
	cfg := Config{InitialBackoff: time.Second, MaxBackoff: 10 * time.Second, Multiplier: 2.0, Jitter: true}

	for i := 0; i < 20; i++ {
		d := backoff(3, cfg)
		assert.GreaterOrEqual(t, d, 3*time.Second)
		assert.LessOrEqual(t, d, 5*time.Second)
	}
}
