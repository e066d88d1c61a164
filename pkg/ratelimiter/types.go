package ratelimiter

import (
	"fmt"
	"time"
)

// Config sets the budget for each key.
type Config struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"20"` // requests allowed per window
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	Burst    int           `env:"RATE_LIMIT_BURST"` // token bucket size; defaults to Requests
}

func (c Config) validate() error {
	if c.Requests <= 0 {
		return fmt.Errorf("%w: requests must be positive, got %d", ErrInvalidConfig, c.Requests)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, c.Window)
	}
	if c.Burst < 0 {
		return fmt.Errorf("%w: burst must not be negative, got %d", ErrInvalidConfig, c.Burst)
	}
	return nil
}

func (c Config) burst() int {
	if c.Burst > 0 {
		return c.Burst
	}
	return c.Requests
}

// Result describes one rate limit decision.
type Result struct {
	Limit     int
	Remaining int // negative when the request was denied
	ResetAt   time.Time
}

func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before retrying. Zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}
