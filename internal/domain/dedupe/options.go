package dedupe

import "time"

// Option configures a Window.
type Option func(*Window)

// WithMaxSize bounds the number of pending keys; the oldest is evicted when
// full. Zero or negative means unbounded.
func WithMaxSize(n int) Option {
	return func(w *Window) { w.maxSize = n }
}

// WithTTL expires claims older than d so a lost Release cannot block a key
// forever. Zero disables expiry.
func WithTTL(d time.Duration) Option {
	return func(w *Window) {
		if d >= 0 {
			w.ttl = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Window) {
		if now != nil {
			w.now = now
		}
	}
}
