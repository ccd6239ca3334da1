package nominatim

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// intervalLimiter enforces a minimum spacing after each external call,
// regardless of its outcome. It holds its lock while waiting so concurrent
// callers are serialized; the external service sees at most one request per
// interval from this process.
type intervalLimiter struct {
	clock    clockwork.Clock
	interval time.Duration

	mu   sync.Mutex
	next time.Time
}

func newIntervalLimiter(clock clockwork.Clock, interval time.Duration) *intervalLimiter {
	return &intervalLimiter{clock: clock, interval: interval}
}

// wait blocks until the spacing from the previous call has elapsed.
func (l *intervalLimiter) wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.Before(l.next) {
		select {
		case <-l.clock.After(l.next.Sub(now)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// mark records that an external call just finished, starting a new interval.
func (l *intervalLimiter) mark() {
	l.mu.Lock()
	l.next = l.clock.Now().Add(l.interval)
	l.mu.Unlock()
}
