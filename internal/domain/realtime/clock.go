package realtime

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the time source behind debounce, tier and expiry timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback scheduled by a Clock.
type Timer interface {
	// Stop cancels the callback and reports whether it was still pending.
	Stop() bool
}

type clockworkClock struct {
	clock clockwork.Clock
}

// NewClock adapts a clockwork clock; production passes clockwork.NewRealClock().
func NewClock(clock clockwork.Clock) Clock {
	return clockworkClock{clock: clock}
}

func (c clockworkClock) Now() time.Time {
	return c.clock.Now()
}

func (c clockworkClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.clock.AfterFunc(d, f)
}
