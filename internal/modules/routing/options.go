package routing

import (
	"context"
	"time"

	"routecost/internal/metrics"
)

// Option customises a Calculator.
type Option func(*Calculator)

// WithMaxAttempts sets the total primary attempts; values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(c *Calculator) {
		if n >= 1 {
			c.maxAttempts = n
		}
	}
}

// WithBackoffStep sets the linear backoff unit.
func WithBackoffStep(d time.Duration) Option {
	return func(c *Calculator) {
		if d >= 0 {
			c.backoffStep = d
		}
	}
}

// WithSleeper replaces the context-aware sleep, mainly for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Calculator) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Calculator) {
		c.metrics = m
	}
}
