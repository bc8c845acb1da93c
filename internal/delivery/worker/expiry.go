package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"beacon/config"
	"beacon/internal/delivery"
	"beacon/internal/domain/realtime"
	"beacon/internal/usecase"

	"go.uber.org/fx"
)

// expirySweeper periodically retires listings whose expiry has passed.
type expirySweeper struct {
	fanout usecase.FanoutUsecase
	clock  realtime.Clock
	cfg    config.ExpiryConfig
	logger *slog.Logger

	mu       sync.Mutex
	timer    realtime.Timer
	stopped  bool
	done     chan struct{}
	stopOnce sync.Once
}

// ExpirySweeperParams holds dependencies for the expiry sweeper
type ExpirySweeperParams struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	Hub    *realtime.Hub
	Fanout usecase.FanoutUsecase
	Logger *slog.Logger
}

// NewExpirySweeper creates the delivery running the listing expiry sweep
func NewExpirySweeper(params ExpirySweeperParams) delivery.Delivery {
	s := &expirySweeper{
		fanout: params.Fanout,
		clock:  params.Hub.Clock(),
		cfg:    params.Cfg.Expiry,
		logger: params.Logger,
		done:   make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: s.stop,
	})

	return s
}

// Serve runs the first sweep after the startup delay and then one per interval, until
// the application stops.
func (s *expirySweeper) Serve(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.logger.Info("[Expiry] Listing expiry sweep disabled")

		return nil
	}

	s.logger.Info("[Expiry] Starting listing expiry sweep",
		slog.Duration("startup_delay", s.cfg.StartupDelay),
		slog.Duration("interval", s.cfg.Interval),
	)
	s.schedule(ctx, s.cfg.StartupDelay)
	<-s.done

	return nil
}

func (s *expirySweeper) schedule(ctx context.Context, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	s.timer = s.clock.AfterFunc(delay, func() {
		s.sweep(ctx)
		s.schedule(ctx, s.cfg.Interval)
	})
}

func (s *expirySweeper) sweep(ctx context.Context) {
	expired, err := s.fanout.ExpireListings(ctx)
	if err != nil {
		s.logger.Error("[Expiry] Sweep failed", slog.Any("error", err))

		return
	}

	if expired > 0 {
		s.logger.Info("[Expiry] Expired listings", slog.Int("count", expired))
	}
}

func (s *expirySweeper) stop(context.Context) error {
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.logger.Info("[Expiry] Stopped listing expiry sweep")

	return nil
}
