// Package player keeps resolved displays fresh: it re-resolves on a fixed
// tick and whenever the TV or event collections change.
package player

import (
	"context"
	"time"
)

// DefaultInterval is the periodic re-resolution tick.
const DefaultInterval = 30 * time.Second

// Run calls fn once immediately, then on every tick of interval and after
// every signal on changes, until ctx is done. Signals arriving while fn runs
// collapse into a single extra call.
func Run(ctx context.Context, interval time.Duration, changes <-chan struct{}, fn func(ctx context.Context)) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-changes:
		}
		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	}
}

// Signal returns a one-slot channel and a non-blocking func that marks it.
// Pending marks coalesce.
func Signal() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	return ch, func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
