package extract

import (
	"math/rand"
	"time"

	"github.com/use-agent/finspider/config"
)

// RetryPolicy bounds repeated extraction attempts: exponential backoff
// from BaseDelay, capped at MaxDelay, with full jitter. It is passed in
// rather than ambient so tests can inject a zero-delay policy.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Jitter scales a delay to a random fraction of itself. Defaults to
	// math/rand full jitter; tests may pin it.
	Jitter func(d time.Duration) time.Duration
}

// PolicyFromConfig builds the production policy.
func PolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		Attempts:  cfg.Attempts,
		BaseDelay: cfg.BaseDelay,
		MaxDelay:  cfg.MaxDelay,
	}
}

// ZeroDelayPolicy retries the given number of times without sleeping.
func ZeroDelayPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		Attempts: attempts,
		Jitter:   func(time.Duration) time.Duration { return 0 },
	}
}

// Backoff returns the delay to sleep before attempt n (0-based; called
// after attempt n failed, before attempt n+1 starts).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d <= 0 {
		return 0
	}
	jitter := p.Jitter
	if jitter == nil {
		jitter = func(d time.Duration) time.Duration {
			return time.Duration(rand.Int63n(int64(d) + 1))
		}
	}
	return jitter(d)
}
