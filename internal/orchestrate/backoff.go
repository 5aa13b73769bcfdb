package orchestrate

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryConfig bounds the launch retry loop. The value is immutable for the
// duration of one launch call.
type RetryConfig struct {
	// MaxAttempts is the number of retries after the first attempt.
	// Zero means fail on the first retryable error.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// Multiplier is the exponential growth factor, >= 1.
	Multiplier float64
	// Jitter spreads each delay uniformly over [delay/2, delay] to
	// decorrelate concurrent retriers. Off by default so delays stay
	// deterministic.
	Jitter bool
}

// Validate checks the configuration bounds.
func (c RetryConfig) Validate() error {
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must be >= 0, got %d", c.MaxAttempts)
	}
	if c.InitialDelay <= 0 {
		return fmt.Errorf("initial delay must be positive, got %s", c.InitialDelay)
	}
	if c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("max delay %s must be >= initial delay %s", c.MaxDelay, c.InitialDelay)
	}
	if c.Multiplier < 1 {
		return fmt.Errorf("multiplier must be >= 1, got %g", c.Multiplier)
	}
	return nil
}

// NextDelay computes the backoff delay before retrying attempt number
// attempt (zero-based): min(initial * multiplier^attempt, max). The result
// is monotone non-decreasing in attempt and saturates at MaxDelay. With
// Jitter disabled this is a pure function of its inputs.
func NextDelay(attempt int, cfg RetryConfig) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := cfg.MaxDelay
	scaled := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt))
	// Pow overflows to +Inf long before Duration does; compare in float space.
	if scaled < float64(cfg.MaxDelay) {
		delay = time.Duration(scaled)
	}
	if delay < cfg.InitialDelay {
		delay = cfg.InitialDelay
	}
	// MaxDelay wins if the config has initial > max.
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}

	if cfg.Jitter {
		// Equal jitter: keep a deterministic floor of half the delay so
		// backoff always makes forward progress.
		half := delay / 2
		delay = half + time.Duration(rand.Int63n(int64(half)+1))
	}
	return delay
}
