package observe

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Timing records the start/end readings of a single invocation.
// It lives on the invoking goroutine's stack and is never shared.
type Timing struct {
	clock       clockwork.Clock
	StartedAt   time.Time
	CompletedAt time.Time
}

// NewTiming creates timing with the clock's current reading as start
func NewTiming(clock clockwork.Clock) *Timing {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Timing{
		clock:     clock,
		StartedAt: clock.Now(),
	}
}

// Complete records completion time
func (t *Timing) Complete() {
	t.CompletedAt = t.clock.Now()
}

// Duration returns elapsed time, clamped at zero.
// Before Complete it reports the time elapsed so far.
func (t *Timing) Duration() time.Duration {
	var d time.Duration
	if t.CompletedAt.IsZero() {
		d = t.clock.Since(t.StartedAt)
	} else {
		d = t.CompletedAt.Sub(t.StartedAt)
	}
	if d < 0 {
		return 0
	}
	return d
}
