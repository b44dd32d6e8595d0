// Package retry re-runs connection attempts with capped exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Config controls how often and how long an operation is retried.
type Config struct {
	// MaxRetries is the number of retries after the first attempt. -1 retries forever.
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	// Jitter spreads each wait by up to 25% in either direction.
	Jitter bool
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:     5,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

// Operation is one attempt. A nil error ends the loop.
type Operation func(ctx context.Context) error

// Notify is called after each failed attempt that will be retried.
type Notify func(attempt int, wait time.Duration, err error)

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs op until it succeeds, returns a Permanent error, exhausts
// cfg.MaxRetries or ctx is done.
func Do(ctx context.Context, cfg Config, op Operation, notify Notify) error {
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if cfg.MaxRetries >= 0 && attempt > cfg.MaxRetries {
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}

		wait := backoff(attempt, cfg)
		if notify != nil {
			notify(attempt, wait, err)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("canceled after %d attempts: %w", attempt, ctx.Err())
		case <-t.C:
		}
	}
}

// backoff returns the wait before retry number n (1-based).
func backoff(n int, cfg Config) time.Duration {
	if n <= 0 {
		return 0
	}
	d := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(n-1))
	if cfg.MaxBackoff > 0 && d > float64(cfg.MaxBackoff) {
		d = float64(cfg.MaxBackoff)
	}

	if cfg.Jitter {
		spread := d * 0.25
		d += rand.Float64()*2*spread - spread
		if cfg.MaxBackoff > 0 && d > float64(cfg.MaxBackoff) {
			d = float64(cfg.MaxBackoff)
		}
		if d < 0 {
			d = 0
		}
	}
	return time.Duration(d)
}
