package impl

import (
	"context"
	"log/slog"
	"sync"

	"beacon/config"
	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/geo"
	"beacon/internal/domain/realtime"
	"beacon/internal/domain/repository"
	"beacon/internal/domain/service"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// fanoutService implements the FanoutUsecase interface.
type fanoutService struct {
	hub      *realtime.Hub
	listings repository.ListingRepository
	metrics  service.RealtimeMetrics
	cfg      config.RealtimeConfig
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[realtime.Timer]struct{}
	stopped bool
}

// NewFanoutService is the constructor for fanoutService. Tier timers still pending when
// the application stops are cancelled.
func NewFanoutService(
	lc fx.Lifecycle,
	hub *realtime.Hub,
	listings repository.ListingRepository,
	metrics service.RealtimeMetrics,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.FanoutUsecase {
	srv := &fanoutService{
		hub:      hub,
		listings: listings,
		metrics:  metrics,
		cfg:      cfg.Realtime,
		logger:   logger,
		pending:  make(map[realtime.Timer]struct{}),
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			srv.stopTiers()

			return nil
		},
	})

	return srv
}

// ListingCreated notifies nearby map viewers tier by tier and announces the listing to
// the cells around it.
func (srv *fanoutService) ListingCreated(ctx context.Context, listing *entity.Listing) {
	if listing == nil || listing.Location == nil {
		return
	}

	logger := scopedLogger(ctx, srv.logger).With(slog.String("listing_id", listing.ID.String()))

	for i, tier := range realtime.Tiers() {
		tierNumber := i + 1
		if tier.Delay <= 0 {
			srv.notifyTier(logger, listing, tier, tierNumber)

			continue
		}
		srv.schedule(tier, func() {
			srv.notifyTier(logger, listing, tier, tierNumber)
		})
	}

	sent := srv.broadcastCells(*listing.Location, realtime.EventFoodAdded, listing)
	logger.Debug("[Fanout] Listing created", slog.Int("cell_deliveries", sent))
}

// ListingUpdated announces a changed listing to everyone, to its cells and to viewers
// within the update radius.
func (srv *fanoutService) ListingUpdated(ctx context.Context, listing *entity.Listing) {
	if listing == nil {
		return
	}

	global := srv.hub.Broadcast(realtime.EventFoodUpdated, listing)
	srv.metrics.RoomBroadcast(realtime.EventFoodUpdated, global)

	if listing.Location == nil {
		return
	}

	srv.broadcastCells(*listing.Location, realtime.EventFoodUpdated, listing)

	nearby := 0
	for _, viewer := range srv.hub.Presence().MapViewersWithin(*listing.Location, srv.cfg.UpdateRadius) {
		if srv.hub.EmitTo(viewer.Session.ConnID, realtime.EventFoodUpdated, realtime.NearbyFood{
			Food:     listing,
			Distance: viewer.Distance,
		}) {
			nearby++
		}
	}

	scopedLogger(ctx, srv.logger).Debug("[Fanout] Listing updated",
		slog.String("listing_id", listing.ID.String()),
		slog.Int("global_deliveries", global),
		slog.Int("nearby_deliveries", nearby),
	)
}

// ListingDeleted announces a removed listing to everyone and, when its location is
// known, to its cells.
func (srv *fanoutService) ListingDeleted(ctx context.Context, id uuid.UUID, location *orb.Point) {
	global := srv.hub.Broadcast(realtime.EventFoodDeleted, id)
	srv.metrics.RoomBroadcast(realtime.EventFoodDeleted, global)

	if location != nil {
		srv.broadcastCells(*location, realtime.EventFoodDeleted, realtime.DeletedListing{
			ID:       id,
			Location: location,
		})
	}

	scopedLogger(ctx, srv.logger).Debug("[Fanout] Listing deleted", slog.String("listing_id", id.String()))
}

// HandleListingEvent resolves a queued listing event. Events that can never succeed are
// reported as ErrValidationFailed; store failures are returned for redelivery.
func (srv *fanoutService) HandleListingEvent(ctx context.Context, event *service.ListingEvent) error {
	id, err := uuid.Parse(event.ListingID)
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("listing_id is not a UUID")
	}

	logger := scopedLogger(ctx, srv.logger)

	switch event.EventType {
	case service.ListingCreated, service.ListingUpdated:
		listing, err := srv.listings.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrListingNotFound) {
				logger.Info("[Fanout] Listing gone before fan-out, dropping event",
					slog.String("listing_id", id.String()),
					slog.String("event_type", string(event.EventType)),
				)

				return nil
			}

			return domainerrors.NewExternalServiceError("listing store", err)
		}

		if event.EventType == service.ListingCreated {
			srv.ListingCreated(ctx, listing)
		} else {
			srv.ListingUpdated(ctx, listing)
		}

	case service.ListingDeleted:
		var location *orb.Point
		if event.Latitude != nil && event.Longitude != nil {
			location = &orb.Point{*event.Longitude, *event.Latitude}
		}
		srv.ListingDeleted(ctx, id, location)

	default:
		return domainerrors.ErrValidationFailed.WithDetails("unknown event_type " + string(event.EventType))
	}

	return nil
}

// ExpireListings retires overdue listings and announces each through the update path.
func (srv *fanoutService) ExpireListings(ctx context.Context) (int, error) {
	expired, err := srv.listings.ExpireOverdue(ctx, srv.hub.Now())
	if err != nil {
		return 0, domainerrors.NewExternalServiceError("listing store", err)
	}

	for _, listing := range expired {
		srv.ListingUpdated(ctx, listing)
	}

	return len(expired), nil
}

// notifyTier sends nearby_food_added to every matching map viewer within the tier radius.
func (srv *fanoutService) notifyTier(logger *slog.Logger, listing *entity.Listing, tier realtime.Tier, tierNumber int) {
	now := srv.hub.Now()
	sent := 0

	for _, viewer := range srv.hub.Presence().MapViewersWithin(*listing.Location, tier.Radius) {
		if !realtime.ShouldNotify(listing, viewer.Session.Preferences, now) {
			continue
		}
		if srv.hub.EmitTo(viewer.Session.ConnID, realtime.EventNearbyFoodAdded, realtime.NearbyFoodAdded{
			Food:                listing,
			Distance:            viewer.Distance,
			Priority:            tier.Priority,
			NotificationTier:    tierNumber,
			PersonalizedMessage: realtime.PersonalizedMessage(listing, viewer.Distance, now),
		}) {
			sent++
		}
	}

	srv.metrics.TierNotified(tierNumber, sent)
	logger.Debug("[Fanout] Tier notified",
		slog.Int("tier", tierNumber),
		slog.String("priority", string(tier.Priority)),
		slog.Int("recipients", sent),
	)
}

func (srv *fanoutService) broadcastCells(p orb.Point, event string, payload any) int {
	sent := srv.hub.EmitToRooms(srv.hub.Cells(), cellRooms(geo.BroadcastCells(p)), event, payload, "")
	srv.metrics.RoomBroadcast(event, sent)

	return sent
}

// schedule runs f after the tier delay unless the service stops first.
func (srv *fanoutService) schedule(tier realtime.Tier, f func()) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.stopped {
		return
	}

	var timer realtime.Timer
	timer = srv.hub.Clock().AfterFunc(tier.Delay, func() {
		srv.mu.Lock()
		_, live := srv.pending[timer]
		delete(srv.pending, timer)
		srv.mu.Unlock()

		if live {
			f()
		}
	})
	srv.pending[timer] = struct{}{}
}

func (srv *fanoutService) stopTiers() {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.stopped = true
	for timer := range srv.pending {
		timer.Stop()
	}
	clear(srv.pending)
}
