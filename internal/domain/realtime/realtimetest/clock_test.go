package realtimetest

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu    sync.Mutex
	fired []string
}

func (r *recorder) add(name string) func() {
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.fired = append(r.fired, name)
	}
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.fired...)
}

func TestClock_FiresInDeadlineOrder(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := NewClock(start)
	var rec recorder

	clock.AfterFunc(5*time.Second, rec.add("late"))
	clock.AfterFunc(time.Second, rec.add("early"))
	clock.AfterFunc(2*time.Second, rec.add("middle"))

	clock.Advance(2 * time.Second)
	assert.Equal(t, []string{"early", "middle"}, rec.names())
	assert.Equal(t, 1, clock.Pending())
	assert.Equal(t, start.Add(2*time.Second), clock.Now())

	clock.Advance(3 * time.Second)
	assert.Equal(t, []string{"early", "middle", "late"}, rec.names())
	assert.Zero(t, clock.Pending())
}

func TestClock_Stop(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Now())
	var rec recorder

	timer := clock.AfterFunc(time.Second, rec.add("stopped"))
	assert.True(t, timer.Stop())
	assert.Zero(t, clock.Pending())

	clock.Advance(time.Minute)
	assert.Empty(t, rec.names())
	assert.False(t, timer.Stop())
}

func TestClock_RunsTimersScheduledByCallbacks(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Now())
	var rec recorder

	var tick func()
	tick = func() {
		rec.add("tick")()
		clock.AfterFunc(time.Second, tick)
	}
	clock.AfterFunc(time.Second, tick)

	clock.Advance(3 * time.Second)

	assert.Len(t, rec.names(), 3)
	assert.Equal(t, 1, clock.Pending())
}
