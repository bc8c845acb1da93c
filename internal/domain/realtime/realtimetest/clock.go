// Package realtimetest provides a controllable realtime.Clock for tests.
package realtimetest

import (
	"sync"
	"time"

	"beacon/internal/domain/realtime"

	"github.com/jonboulle/clockwork"
)

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

// Clock is a realtime.Clock driven by a clockwork fake clock. clockwork runs due
// callbacks on their own goroutines; Advance steps from deadline to deadline and
// returns only once every callback that fell due has finished.
type Clock struct {
	fake  fakeClock
	clock realtime.Clock

	mu     sync.Mutex
	seq    int
	timers []*timer
}

type timer struct {
	clock *Clock
	inner realtime.Timer
	at    time.Time
	seq   int
	done  chan struct{}
}

// NewClock returns a Clock frozen at start.
func NewClock(start time.Time) *Clock {
	fake := clockwork.NewFakeClockAt(start)

	return &Clock{fake: fake, clock: realtime.NewClock(fake)}
}

// Now returns the fake time.
func (c *Clock) Now() time.Time {
	return c.clock.Now()
}

// AfterFunc schedules f d after the current fake time.
func (c *Clock) AfterFunc(d time.Duration, f func()) realtime.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &timer{clock: c, at: c.fake.Now().Add(d), seq: c.seq, done: make(chan struct{})}
	t.inner = c.clock.AfterFunc(d, func() {
		defer close(t.done)
		f()
	})
	c.timers = append(c.timers, t)

	return t
}

// Advance moves the clock forward by d. Timers scheduled by a callback run too when
// they fall inside d.
func (c *Clock) Advance(d time.Duration) {
	target := c.fake.Now().Add(d)

	for next := c.popDue(target); next != nil; next = c.popDue(target) {
		if step := next.at.Sub(c.fake.Now()); step > 0 {
			c.fake.Advance(step)
		}
		<-next.done
	}

	if rest := target.Sub(c.fake.Now()); rest > 0 {
		c.fake.Advance(rest)
	}
}

// Pending reports how many timers are scheduled and neither fired nor stopped.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		select {
		case <-t.done:
		default:
			n++
		}
	}

	return n
}

func (c *Clock) popDue(target time.Time) *timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, t := range c.timers {
		if t.at.After(target) {
			continue
		}
		if idx < 0 || t.at.Before(c.timers[idx].at) || (t.at.Equal(c.timers[idx].at) && t.seq < c.timers[idx].seq) {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}

	next := c.timers[idx]
	c.timers = append(c.timers[:idx], c.timers[idx+1:]...)

	return next
}

func (c *Clock) forget(t *timer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, pending := range c.timers {
		if pending == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)

			return
		}
	}
}

func (t *timer) Stop() bool {
	if !t.inner.Stop() {
		return false
	}
	t.clock.forget(t)

	return true
}
