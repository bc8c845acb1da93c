package impl

import (
	"context"
	"log/slog"

	"beacon/config"
	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/geo"
	"beacon/internal/domain/realtime"
	"beacon/internal/domain/repository"
	"beacon/internal/domain/service"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Ring of street cells joined around a reported location: a 5x5 block.
const locationCellRing = 2

// Interaction kinds counted by the map interaction metric.
const (
	interactionMarkerViewed   = "marker_viewed"
	interactionMarkerClicked  = "marker_clicked"
	interactionReserveAttempt = "reserve_attempt"
	interactionFoodMessage    = "food_message"
	interactionMapSearch      = "map_search"
	interactionAnalytics      = "map_analytics"
)

// mapService implements the MapUsecase interface.
type mapService struct {
	hub      *realtime.Hub
	listings repository.ListingRepository
	users    repository.UserRepository
	metrics  service.RealtimeMetrics
	cfg      config.RealtimeConfig
	logger   *slog.Logger
}

// NewMapService is the constructor for mapService.
func NewMapService(
	hub *realtime.Hub,
	listings repository.ListingRepository,
	users repository.UserRepository,
	metrics service.RealtimeMetrics,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.MapUsecase {
	return &mapService{
		hub:      hub,
		listings: listings,
		users:    users,
		metrics:  metrics,
		cfg:      cfg.Realtime,
		logger:   logger,
	}
}

// StartMapSession marks the session as map-viewing and subscribes it to its viewport.
func (srv *mapService) StartMapSession(ctx context.Context, conn realtime.Conn, input *usecase.MapSessionStartInput) error {
	s, err := sessionOf(srv.hub, conn)
	if err != nil {
		return err
	}

	var vp *realtime.Viewport
	if input.Viewport != nil {
		vp = input.Viewport.Viewport(realtime.MapFilters{})
		if err := srv.checkViewport(vp); err != nil {
			return err
		}
	}

	s.StartMap(vp, input.Preferences)
	if vp != nil {
		srv.resubscribeViewport(conn.ID(), vp)
	}
	reportSessions(srv.hub, srv.metrics)

	scopedLogger(ctx, srv.logger).Debug("[Map] Session started",
		slog.Int("cell_count", len(srv.hub.Cells().RoomsOf(conn.ID()))),
	)

	return nil
}

// EndMapSession drops the viewport and every cell subscription.
func (srv *mapService) EndMapSession(ctx context.Context, conn realtime.Conn) error {
	s, err := sessionOf(srv.hub, conn)
	if err != nil {
		return err
	}

	s.EndMap()
	srv.hub.Cells().UnsubscribeAll(conn.ID())
	reportSessions(srv.hub, srv.metrics)

	scopedLogger(ctx, srv.logger).Debug("[Map] Session ended")

	return nil
}

// ChangeViewport swaps the cell subscriptions for the new viewport and debounces the
// viewport update: only the last change of a burst is pushed.
func (srv *mapService) ChangeViewport(_ context.Context, conn realtime.Conn, input *usecase.ViewportChangeInput) error {
	s, err := sessionOf(srv.hub, conn)
	if err != nil {
		return err
	}

	vp := input.ViewportInput.Viewport(input.Filters)
	if err := srv.checkViewport(vp); err != nil {
		return err
	}

	s.SetViewport(vp)
	srv.resubscribeViewport(conn.ID(), vp)

	update := realtime.ViewportFoodUpdate{
		Bounds:  input.Bounds,
		Filters: input.Filters,
	}
	connID := conn.ID()
	s.Debounce(srv.hub.Clock(), srv.cfg.ViewportDebounce, func() {
		update.Timestamp = srv.hub.Now()
		srv.hub.EmitTo(connID, realtime.EventViewportFoodUpdate, update)
	})

	return nil
}

// ChangeFilters replaces the filters of the stored viewport without resubscribing.
func (srv *mapService) ChangeFilters(_ context.Context, conn realtime.Conn, input *usecase.MapFilterChangeInput) error {
	s, err := sessionOf(srv.hub, conn)
	if err != nil {
		return err
	}

	if s.SetFilters(input.Filters) {
		return nil
	}
	if input.Viewport != nil {
		s.SetViewport(input.Viewport.Viewport(input.Filters))
	}

	return nil
}

// JoinArea subscribes conn to a named area room.
func (srv *mapService) JoinArea(ctx context.Context, conn realtime.Conn, input *usecase.JoinAreaInput) (string, error) {
	if _, err := sessionOf(srv.hub, conn); err != nil {
		return "", err
	}

	areaID := input.AreaID
	if areaID == "" {
		areaID = geo.AreaID(input.Latitude, input.Longitude, input.Radius)
	}
	srv.hub.Areas().Subscribe(conn.ID(), realtime.AreaRoom(areaID))

	scopedLogger(ctx, srv.logger).Debug("[Map] Joined area", slog.String("area_id", areaID))

	return areaID, nil
}

// LeaveArea unsubscribes conn from a named area room.
func (srv *mapService) LeaveArea(_ context.Context, conn realtime.Conn, input *usecase.LeaveAreaInput) error {
	srv.hub.Areas().Unsubscribe(conn.ID(), realtime.AreaRoom(input.AreaID))

	return nil
}

// UpdateLocation stores a shared position, joins the cells around it and persists it
// when it is accurate enough.
func (srv *mapService) UpdateLocation(ctx context.Context, conn realtime.Conn, input *usecase.LocationUpdateInput) error {
	if input.ShareLevel == realtime.ShareLevelNone {
		return nil
	}

	s, err := sessionOf(srv.hub, conn)
	if err != nil {
		return err
	}

	logger := scopedLogger(ctx, srv.logger)
	now := srv.hub.Now()
	if !s.AllowLocationUpdate(now) {
		logger.Debug("[Map] Location update throttled")

		return nil
	}

	point := usecase.LatLng{Latitude: input.Latitude, Longitude: input.Longitude}.Point()
	s.SetLocation(realtime.Location{
		Point:      point,
		Accuracy:   input.Accuracy,
		ShareLevel: input.ShareLevel,
		UpdatedAt:  now,
	})

	for _, key := range geo.CellsCoveringPoint(point, geo.ResolutionStreet, locationCellRing) {
		srv.hub.Cells().Subscribe(conn.ID(), string(key))
	}

	if input.Accuracy < srv.cfg.LocationPersistAccuracy {
		if err := srv.users.UpdateLocation(ctx, conn.UserID(), point); err != nil {
			return domainerrors.NewExternalServiceError("user store", err)
		}
	}

	return nil
}

// SetPreferences merges the patch and echoes the resulting preferences.
func (srv *mapService) SetPreferences(_ context.Context, conn realtime.Conn, input *realtime.PreferencesPatch) error {
	s, err := sessionOf(srv.hub, conn)
	if err != nil {
		return err
	}

	prefs := s.UpdatePreferences(input)
	srv.hub.EmitTo(conn.ID(), realtime.EventPreferencesUpdated, prefs)

	return nil
}

// Search tells map viewers near the searched location that someone is looking there.
func (srv *mapService) Search(ctx context.Context, conn realtime.Conn, input *usecase.MapSearchInput) error {
	srv.metrics.Interaction(interactionMapSearch)
	scopedLogger(ctx, srv.logger).Debug("[Map] Search", slog.String("query", input.Query))

	if input.Location == nil {
		return nil
	}

	area := input.Location.Point()
	sent := 0
	for _, nearby := range srv.hub.Presence().MapViewersWithin(area, srv.cfg.SearchActivityRadius) {
		if nearby.Session.UserID == conn.UserID() {
			continue
		}
		if srv.hub.EmitTo(nearby.Session.ConnID, realtime.EventSearchActivity, realtime.SearchActivity{
			SearchType: interactionMapSearch,
			Area:       area,
			Distance:   nearby.Distance,
		}) {
			sent++
		}
	}
	srv.metrics.RoomBroadcast(realtime.EventSearchActivity, sent)

	return nil
}

// MarkerViewed counts a marker view.
func (srv *mapService) MarkerViewed(ctx context.Context, conn realtime.Conn, input *usecase.MarkerViewedInput) error {
	srv.metrics.Interaction(interactionMarkerViewed)
	scopedLogger(ctx, srv.logger).Debug("[Map] Marker viewed",
		slog.String("food_id", input.FoodID.String()),
		slog.Float64("duration", input.Duration),
	)

	return srv.countView(ctx, input.FoodID, entity.ListingViewMapMarker)
}

// MarkerClicked counts a marker click and notifies the owner.
func (srv *mapService) MarkerClicked(ctx context.Context, conn realtime.Conn, input *usecase.MarkerClickedInput) error {
	srv.metrics.Interaction(interactionMarkerClicked)
	scopedLogger(ctx, srv.logger).Debug("[Map] Marker clicked",
		slog.String("food_id", input.FoodID.String()),
		slog.String("action_type", input.ActionType),
	)

	if err := srv.countView(ctx, input.FoodID, entity.ListingViewMapClick); err != nil {
		return err
	}

	return srv.notifyOwner(ctx, conn, input.FoodID, realtime.InteractionViewedOnMap)
}

// ReserveAttempt notifies the listing owner of a reservation attempt.
func (srv *mapService) ReserveAttempt(ctx context.Context, conn realtime.Conn, input *usecase.ReserveAttemptInput) error {
	srv.metrics.Interaction(interactionReserveAttempt)
	scopedLogger(ctx, srv.logger).Debug("[Map] Reserve attempt",
		slog.String("food_id", input.FoodID.String()),
		slog.String("reservation_type", input.ReservationType),
	)

	return srv.notifyOwner(ctx, conn, input.FoodID, realtime.InteractionReservationAttempt)
}

// FoodMessageSent records a message sent about a listing.
func (srv *mapService) FoodMessageSent(ctx context.Context, _ realtime.Conn, input *usecase.FoodMessageInput) error {
	srv.metrics.Interaction(interactionFoodMessage)
	scopedLogger(ctx, srv.logger).Debug("[Map] Food message sent",
		slog.String("food_id", input.FoodID.String()),
		slog.String("message_type", input.MessageType),
	)

	return nil
}

// Analytics records a client analytics event.
func (srv *mapService) Analytics(ctx context.Context, _ realtime.Conn, input *usecase.MapAnalyticsInput) error {
	srv.metrics.Interaction(interactionAnalytics)
	scopedLogger(ctx, srv.logger).Debug("[Map] Analytics event",
		slog.String("event_type", input.EventType),
		slog.Any("event_data", input.EventData),
	)

	return nil
}

func (srv *mapService) checkViewport(vp *realtime.Viewport) error {
	count := geo.CountCellsInBounds(vp.Bounds, geo.ResolutionForZoom(vp.Zoom))
	if count > srv.cfg.MaxViewportCells {
		return domainerrors.ErrViewportTooLarge
	}

	return nil
}

// resubscribeViewport replaces every cell subscription of conn with the cells of vp.
func (srv *mapService) resubscribeViewport(conn realtime.ConnID, vp *realtime.Viewport) {
	cells := srv.hub.Cells()
	cells.UnsubscribeAll(conn)
	for _, key := range geo.CellsCoveringBounds(vp.Bounds, geo.ResolutionForZoom(vp.Zoom)) {
		cells.Subscribe(conn, string(key))
	}
}

func (srv *mapService) countView(ctx context.Context, id uuid.UUID, viewType entity.ListingViewType) error {
	if err := srv.listings.IncrementViews(ctx, id, viewType); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return domainerrors.ErrListingNotFound
		}

		return domainerrors.NewExternalServiceError("listing store", err)
	}

	return nil
}

// notifyOwner tells the owner of a listing about an interaction, when the owner is
// online, wants realtime updates and is not the actor.
func (srv *mapService) notifyOwner(ctx context.Context, conn realtime.Conn, foodID uuid.UUID, interaction string) error {
	listing, err := srv.listings.FindByID(ctx, foodID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return domainerrors.ErrListingNotFound
		}

		return domainerrors.NewExternalServiceError("listing store", err)
	}

	if listing.PostedBy == conn.UserID() {
		return nil
	}

	owner, ok := srv.hub.Session(listing.PostedBy)
	if !ok {
		return nil
	}
	snap := owner.Snapshot()
	if !snap.Preferences.RealTimeUpdates {
		return nil
	}

	actorName := ""
	if actor, ok := srv.hub.Session(conn.UserID()); ok {
		actorName = actor.UserName
	}

	srv.hub.EmitTo(snap.ConnID, realtime.EventFoodInteraction, realtime.FoodInteraction{
		FoodID:          listing.ID,
		FoodTitle:       listing.Title,
		InteractionType: interaction,
		InteractingUser: actorName,
		Timestamp:       srv.hub.Now(),
	})

	return nil
}
