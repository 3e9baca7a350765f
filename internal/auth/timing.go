package auth

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig holds configuration for timing attack prevention
type TimingConfig struct {
	BaseDelayMs    int  // Base delay in milliseconds
	RandomDelayMs  int  // Random delay range in milliseconds
	DelayOnSuccess bool // If true, delay even on successful login
}

// TimingDelay pads login responses so that an unknown username, a wrong
// password and an inactive account take roughly the same time.
type TimingDelay struct {
	config TimingConfig
	sleep  func(ctx context.Context, d time.Duration)
}

// NewTimingDelay creates a new TimingDelay instance
func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{
		config: config,
		sleep:  sleepContext,
	}
}

// cryptoRandIntn returns a random number in [0, max) from crypto/rand.
func cryptoRandIntn(max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint64(buf[:]) % uint64(max)), nil
}

// target returns base delay plus a random jitter.
func (td *TimingDelay) target() time.Duration {
	delay := time.Duration(td.config.BaseDelayMs) * time.Millisecond
	if td.config.RandomDelayMs > 0 {
		if jitter, err := cryptoRandIntn(td.config.RandomDelayMs); err == nil {
			delay += time.Duration(jitter) * time.Millisecond
		}
	}
	return delay
}

// WaitFrom sleeps until at least the target delay has elapsed since start.
// Successful attempts return at once unless DelayOnSuccess is set. The wait
// ends early if ctx is cancelled.
func (td *TimingDelay) WaitFrom(ctx context.Context, start time.Time, success bool) {
	if success && !td.config.DelayOnSuccess {
		return
	}

	if remaining := td.target() - time.Since(start); remaining > 0 {
		td.sleep(ctx, remaining)
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
