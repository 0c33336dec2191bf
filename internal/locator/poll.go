package locator

import (
	"context"
	"time"
)

// Poll calls fn until it reports found, timeout elapses or ctx is done.
// The first attempt is immediate. On timeout it returns the zero value and
// false.
func Poll[T any](ctx context.Context, timeout, interval time.Duration, fn func(context.Context) (T, bool)) (T, bool) {
	var zero T
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if v, ok := fn(ctx); ok {
			return v, true
		}
		select {
		case <-ctx.Done():
			return zero, false
		case <-deadline.C:
			return zero, false
		case <-ticker.C:
		}
	}
}
