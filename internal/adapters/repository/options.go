package repository

import (
	"time"

	"github.com/okian/laurel/pkg/logger"
)

const (
	defaultShardCount            = 64
	defaultRetryAttempts         = 5
	defaultRetryBackoff          = 10 * time.Millisecond
	defaultMetricsUpdateInterval = 5 * time.Second
)

type settings struct {
	shardCount            int
	retryAttempts         int
	retryBackoff          time.Duration
	metricsUpdateInterval time.Duration
	now                   func() time.Time
	logger                logger.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		shardCount:            defaultShardCount,
		retryAttempts:         defaultRetryAttempts,
		retryBackoff:          defaultRetryBackoff,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		now:                   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Option configures a store.
type Option func(*settings)

// WithShardCount sets the number of lock stripes.
func WithShardCount(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithRetryAttempts bounds retries of a write that hit a conflict or a busy database.
func WithRetryAttempts(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.retryAttempts = n
		}
	}
}

// WithRetryBackoff sets the base delay between write retries.
func WithRetryBackoff(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.retryBackoff = d
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *settings) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithClock replaces the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
