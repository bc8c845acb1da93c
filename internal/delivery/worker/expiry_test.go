package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"beacon/config"
	"beacon/internal/domain/realtime"
	"beacon/internal/domain/realtime/realtimetest"
	"beacon/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

type fakeFanout struct {
	usecase.FanoutUsecase

	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeFanout) ExpireListings(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	return 2, f.err
}

func (f *fakeFanout) sweeps() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func newTestSweeper(t *testing.T, enabled bool) (*fxtest.Lifecycle, *realtimetest.Clock, *fakeFanout, func() error) {
	t.Helper()

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Expiry.Enabled = enabled

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := realtimetest.NewClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	fanout := &fakeFanout{}
	lc := fxtest.NewLifecycle(t)

	sweeper := NewExpirySweeper(ExpirySweeperParams{
		Lc:     lc,
		Cfg:    cfg,
		Hub:    realtime.NewHub(clock, logger),
		Fanout: fanout,
		Logger: logger,
	})
	lc.RequireStart()

	served := make(chan error, 1)
	go func() {
		served <- sweeper.Serve(context.Background())
	}()

	wait := func() error {
		select {
		case err := <-served:
			return err
		case <-time.After(time.Second):
			t.Fatal("Serve did not return")

			return nil
		}
	}

	return lc, clock, fanout, wait
}

func TestExpirySweeper_RunsOnSchedule(t *testing.T) {
	lc, clock, fanout, wait := newTestSweeper(t, true)

	require.Eventually(t, func() bool { return clock.Pending() == 1 }, time.Second, 5*time.Millisecond)

	clock.Advance(4 * time.Second)
	assert.Zero(t, fanout.sweeps())

	clock.Advance(time.Second)
	assert.Equal(t, 1, fanout.sweeps())

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 2, fanout.sweeps())

	clock.Advance(15 * time.Minute)
	assert.Equal(t, 5, fanout.sweeps())

	lc.RequireStop()
	require.NoError(t, wait())
	assert.Zero(t, clock.Pending())

	clock.Advance(time.Hour)
	assert.Equal(t, 5, fanout.sweeps())
}

func TestExpirySweeper_KeepsRunningAfterFailure(t *testing.T) {
	lc, clock, fanout, wait := newTestSweeper(t, true)
	fanout.mu.Lock()
	fanout.err = assert.AnError
	fanout.mu.Unlock()

	require.Eventually(t, func() bool { return clock.Pending() == 1 }, time.Second, 5*time.Millisecond)

	clock.Advance(5*time.Second + 5*time.Minute)
	assert.Equal(t, 2, fanout.sweeps())

	lc.RequireStop()
	require.NoError(t, wait())
}

func TestExpirySweeper_Disabled(t *testing.T) {
	lc, clock, fanout, wait := newTestSweeper(t, false)

	require.NoError(t, wait())
	clock.Advance(time.Hour)

	assert.Zero(t, fanout.sweeps())
	assert.Zero(t, clock.Pending())
	lc.RequireStop()
}
