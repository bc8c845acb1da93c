package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/geo"
	"beacon/internal/domain/realtime"
	"beacon/internal/domain/realtime/realtimetest"
	"beacon/internal/domain/repository"
	mockRepo "beacon/internal/mocks/repository"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapFixture struct {
	hub      *realtime.Hub
	clock    *realtimetest.Clock
	listings *mockRepo.MockListingRepository
	users    *mockRepo.MockUserRepository
	service  usecase.MapUsecase
}

func newMapFixture(t *testing.T) *mapFixture {
	hub, clock := newTestHub()
	f := &mapFixture{
		hub:      hub,
		clock:    clock,
		listings: mockRepo.NewMockListingRepository(t),
		users:    mockRepo.NewMockUserRepository(t),
	}
	f.service = NewMapService(hub, f.listings, f.users, newTestMetrics(), testConfig(), discardLogger())

	return f
}

// streetViewport spans 3x3 street cells around central London.
func streetViewport() usecase.ViewportInput {
	return usecase.ViewportInput{
		Bounds: realtime.Bounds{North: 51.52, South: 51.50, East: -0.12, West: -0.14},
		Zoom:   15,
	}
}

func TestMapService_StartMapSessionSubscribesViewport(t *testing.T) {
	f := newMapFixture(t)
	conn, session := join(f.hub, "a", "Alice")
	vp := streetViewport()
	radius := 2000.0

	err := f.service.StartMapSession(context.Background(), conn, &usecase.MapSessionStartInput{
		Viewport:    &vp,
		Preferences: &realtime.PreferencesPatch{NotifyRadius: &radius},
	})

	require.NoError(t, err)
	snap := session.Snapshot()
	assert.True(t, snap.ViewingMap)
	assert.Equal(t, 2000.0, snap.Preferences.NotifyRadius)
	assert.Len(t, f.hub.Cells().RoomsOf("a"), 9)
	assert.True(t, f.hub.Cells().Has("a", "geo_51.510_-0.130"))
}

func TestMapService_StartMapSessionWithoutViewport(t *testing.T) {
	f := newMapFixture(t)
	conn, session := join(f.hub, "a", "Alice")

	require.NoError(t, f.service.StartMapSession(context.Background(), conn, &usecase.MapSessionStartInput{}))

	assert.True(t, session.ViewingMap())
	assert.Empty(t, f.hub.Cells().RoomsOf("a"))
}

func TestMapService_ClosedSessionIsRejected(t *testing.T) {
	f := newMapFixture(t)
	conn, session := join(f.hub, "a", "Alice")
	session.Close(f.hub.Now())

	err := f.service.StartMapSession(context.Background(), conn, &usecase.MapSessionStartInput{})

	assert.ErrorIs(t, err, domainerrors.ErrSessionClosed)
}

func TestMapService_ChangeViewportResubscribesAndDebounces(t *testing.T) {
	f := newMapFixture(t)
	ctx := context.Background()
	conn, _ := join(f.hub, "a", "Alice")
	require.NoError(t, f.service.StartMapSession(ctx, conn, &usecase.MapSessionStartInput{}))

	first := &usecase.ViewportChangeInput{ViewportInput: streetViewport()}
	second := &usecase.ViewportChangeInput{
		ViewportInput: usecase.ViewportInput{
			Bounds: realtime.Bounds{North: 25.04, South: 25.03, East: 121.57, West: 121.56},
			Zoom:   15,
		},
		Filters: realtime.MapFilters{PriceRange: realtime.PriceRangeFree},
	}

	require.NoError(t, f.service.ChangeViewport(ctx, conn, first))
	f.clock.Advance(100 * time.Millisecond)
	require.NoError(t, f.service.ChangeViewport(ctx, conn, second))

	assert.False(t, f.hub.Cells().Has("a", "geo_51.510_-0.130"))
	assert.True(t, f.hub.Cells().Has("a", string(geo.CellOf(orb.Point{121.565, 25.035}, geo.ResolutionStreet))))

	f.clock.Advance(499 * time.Millisecond)
	assert.Empty(t, conn.Named(realtime.EventViewportFoodUpdate))

	f.clock.Advance(time.Millisecond)
	updates := conn.Named(realtime.EventViewportFoodUpdate)
	require.Len(t, updates, 1)
	update := updates[0].(realtime.ViewportFoodUpdate)
	assert.Equal(t, second.Bounds, update.Bounds)
	assert.Equal(t, realtime.PriceRangeFree, update.Filters.PriceRange)
}

func TestMapService_ChangeViewportTooLarge(t *testing.T) {
	f := newMapFixture(t)
	conn, _ := join(f.hub, "a", "Alice")
	f.hub.Cells().Subscribe("a", "geo_51.500_-0.130")

	err := f.service.ChangeViewport(context.Background(), conn, &usecase.ViewportChangeInput{
		ViewportInput: usecase.ViewportInput{
			Bounds: realtime.Bounds{North: 60, South: 40, East: 10, West: -10},
			Zoom:   17,
		},
	})

	assert.ErrorIs(t, err, domainerrors.ErrViewportTooLarge)
	assert.True(t, f.hub.Cells().Has("a", "geo_51.500_-0.130"))
}

func TestMapService_ChangeFilters(t *testing.T) {
	f := newMapFixture(t)
	ctx := context.Background()
	conn, session := join(f.hub, "a", "Alice")
	filters := realtime.MapFilters{Categories: []string{"bakery"}}

	t.Run("without viewport and none stored", func(t *testing.T) {
		require.NoError(t, f.service.ChangeFilters(ctx, conn, &usecase.MapFilterChangeInput{Filters: filters}))
		assert.Nil(t, session.Snapshot().Viewport)
	})

	t.Run("with viewport", func(t *testing.T) {
		vp := streetViewport()
		require.NoError(t, f.service.ChangeFilters(ctx, conn, &usecase.MapFilterChangeInput{Filters: filters, Viewport: &vp}))
		require.NotNil(t, session.Snapshot().Viewport)
		assert.Equal(t, []string{"bakery"}, session.Snapshot().Viewport.Filters.Categories)
	})

	t.Run("replaces stored filters", func(t *testing.T) {
		require.NoError(t, f.service.ChangeFilters(ctx, conn, &usecase.MapFilterChangeInput{
			Filters: realtime.MapFilters{HotDealsOnly: true},
		}))
		assert.True(t, session.Snapshot().Viewport.Filters.HotDealsOnly)
	})
}

func TestMapService_JoinAndLeaveArea(t *testing.T) {
	f := newMapFixture(t)
	ctx := context.Background()
	conn, _ := join(f.hub, "a", "Alice")

	areaID, err := f.service.JoinArea(ctx, conn, &usecase.JoinAreaInput{Latitude: 51.5074, Longitude: -0.1278, Radius: 500})

	require.NoError(t, err)
	assert.Equal(t, "51.507_-0.128_500", areaID)
	assert.True(t, f.hub.Areas().Has("a", "geo_area_51.507_-0.128_500"))
	assert.Empty(t, f.hub.Cells().RoomsOf("a"))

	fractional, err := f.service.JoinArea(ctx, conn, &usecase.JoinAreaInput{Latitude: 51.5074, Longitude: -0.1278, Radius: 1500.5})
	require.NoError(t, err)
	assert.Equal(t, "51.507_-0.128_1500", fractional)
	require.NoError(t, f.service.LeaveArea(ctx, conn, &usecase.LeaveAreaInput{AreaID: fractional}))

	named, err := f.service.JoinArea(ctx, conn, &usecase.JoinAreaInput{AreaID: "soho"})
	require.NoError(t, err)
	assert.Equal(t, "soho", named)

	require.NoError(t, f.service.LeaveArea(ctx, conn, &usecase.LeaveAreaInput{AreaID: areaID}))
	assert.Equal(t, []string{"geo_area_soho"}, f.hub.Areas().RoomsOf("a"))
}

func TestMapService_UpdateLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("accurate fix is stored and persisted", func(t *testing.T) {
		f := newMapFixture(t)
		conn, session := join(f.hub, "a", "Alice")
		point := orb.Point{-0.1278, 51.5074}
		f.users.EXPECT().UpdateLocation(ctx, session.UserID, point).Return(nil)

		err := f.service.UpdateLocation(ctx, conn, &usecase.LocationUpdateInput{Latitude: 51.5074, Longitude: -0.1278, Accuracy: 20})

		require.NoError(t, err)
		loc := session.Snapshot().Location
		require.NotNil(t, loc)
		assert.Equal(t, point, loc.Point)
		assert.Equal(t, testStart, loc.UpdatedAt)
		assert.Len(t, f.hub.Cells().RoomsOf("a"), 25)
		assert.True(t, f.hub.Cells().Has("a", string(geo.CellOf(point, geo.ResolutionStreet))))
	})

	t.Run("coarse fix is not persisted", func(t *testing.T) {
		f := newMapFixture(t)
		conn, session := join(f.hub, "a", "Alice")

		err := f.service.UpdateLocation(ctx, conn, &usecase.LocationUpdateInput{Latitude: 51.5, Longitude: -0.12, Accuracy: 500})

		require.NoError(t, err)
		assert.NotNil(t, session.Snapshot().Location)
	})

	t.Run("share level none is ignored", func(t *testing.T) {
		f := newMapFixture(t)
		conn, session := join(f.hub, "a", "Alice")

		err := f.service.UpdateLocation(ctx, conn, &usecase.LocationUpdateInput{
			Latitude: 51.5, Longitude: -0.12, Accuracy: 5, ShareLevel: realtime.ShareLevelNone,
		})

		require.NoError(t, err)
		assert.Nil(t, session.Snapshot().Location)
		assert.Empty(t, f.hub.Cells().RoomsOf("a"))
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		f := newMapFixture(t)
		conn, session := join(f.hub, "a", "Alice")
		f.users.EXPECT().UpdateLocation(ctx, session.UserID, orb.Point{-0.12, 51.5}).Return(errors.New("timeout"))

		err := f.service.UpdateLocation(ctx, conn, &usecase.LocationUpdateInput{Latitude: 51.5, Longitude: -0.12, Accuracy: 5})

		var external *domainerrors.ExternalServiceError
		assert.ErrorAs(t, err, &external)
	})
}

func TestMapService_UpdateLocationThrottled(t *testing.T) {
	f := newMapFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	conn := newThrottledConn(f.hub, userID, 10*time.Second)

	require.NoError(t, f.service.UpdateLocation(ctx, conn, &usecase.LocationUpdateInput{Latitude: 51.5, Longitude: -0.12, Accuracy: 500}))
	require.NoError(t, f.service.UpdateLocation(ctx, conn, &usecase.LocationUpdateInput{Latitude: 48.85, Longitude: 2.35, Accuracy: 500}))

	session, ok := f.hub.Session(userID)
	require.True(t, ok)
	assert.Equal(t, orb.Point{-0.12, 51.5}, session.Snapshot().Location.Point)

	f.clock.Advance(10 * time.Second)
	require.NoError(t, f.service.UpdateLocation(ctx, conn, &usecase.LocationUpdateInput{Latitude: 48.85, Longitude: 2.35, Accuracy: 500}))
	assert.Equal(t, orb.Point{2.35, 48.85}, session.Snapshot().Location.Point)
}

func TestMapService_SetPreferencesEchoes(t *testing.T) {
	f := newMapFixture(t)
	conn, _ := join(f.hub, "a", "Alice")
	hotOnly := true

	err := f.service.SetPreferences(context.Background(), conn, &realtime.PreferencesPatch{
		HotDealsOnly: &hotOnly,
		Categories:   []string{"meal"},
	})

	require.NoError(t, err)
	echoed := conn.Named(realtime.EventPreferencesUpdated)
	require.Len(t, echoed, 1)
	prefs := echoed[0].(realtime.Preferences)
	assert.True(t, prefs.HotDealsOnly)
	assert.Equal(t, []string{"meal"}, prefs.Categories)
	assert.True(t, prefs.RealTimeUpdates)
}

func TestMapService_SearchNotifiesNearbyViewers(t *testing.T) {
	f := newMapFixture(t)
	searcher, searcherSession := join(f.hub, "searcher", "Alice")
	near, nearSession := join(f.hub, "near", "Bob")
	far, farSession := join(f.hub, "far", "Carol")

	for _, s := range []*realtime.Session{searcherSession, nearSession, farSession} {
		s.StartMap(nil, nil)
	}
	searcherSession.SetLocation(realtime.Location{Point: orb.Point{-0.1278, 51.5074}})
	nearSession.SetLocation(realtime.Location{Point: orb.Point{-0.1280, 51.5080}})
	farSession.SetLocation(realtime.Location{Point: orb.Point{-0.2000, 51.5074}})

	err := f.service.Search(context.Background(), searcher, &usecase.MapSearchInput{
		Query:    "bread",
		Location: &usecase.LatLng{Latitude: 51.5074, Longitude: -0.1278},
	})

	require.NoError(t, err)
	assert.Empty(t, searcher.Named(realtime.EventSearchActivity))
	assert.Empty(t, far.Named(realtime.EventSearchActivity))
	activity := near.Named(realtime.EventSearchActivity)
	require.Len(t, activity, 1)
	assert.Equal(t, orb.Point{-0.1278, 51.5074}, activity[0].(realtime.SearchActivity).Area)
}

func TestMapService_MarkerViewed(t *testing.T) {
	ctx := context.Background()

	t.Run("counts the view", func(t *testing.T) {
		f := newMapFixture(t)
		conn, _ := join(f.hub, "a", "Alice")
		foodID := uuid.New()
		f.listings.EXPECT().IncrementViews(ctx, foodID, entity.ListingViewMapMarker).Return(nil)

		require.NoError(t, f.service.MarkerViewed(ctx, conn, &usecase.MarkerViewedInput{FoodID: foodID, Duration: 3}))
	})

	t.Run("unknown listing", func(t *testing.T) {
		f := newMapFixture(t)
		conn, _ := join(f.hub, "a", "Alice")
		foodID := uuid.New()
		f.listings.EXPECT().IncrementViews(ctx, foodID, entity.ListingViewMapMarker).Return(repository.ErrListingNotFound)

		err := f.service.MarkerViewed(ctx, conn, &usecase.MarkerViewedInput{FoodID: foodID})

		assert.ErrorIs(t, err, domainerrors.ErrListingNotFound)
	})
}

func TestMapService_MarkerClickedNotifiesOwner(t *testing.T) {
	f := newMapFixture(t)
	ctx := context.Background()
	clicker, _ := join(f.hub, "clicker", "Alice")
	owner, ownerSession := join(f.hub, "owner", "Bob")
	listing := &entity.Listing{ID: uuid.New(), PostedBy: ownerSession.UserID, Title: "Sourdough"}

	f.listings.EXPECT().IncrementViews(ctx, listing.ID, entity.ListingViewMapClick).Return(nil)
	f.listings.EXPECT().FindByID(ctx, listing.ID).Return(listing, nil)

	require.NoError(t, f.service.MarkerClicked(ctx, clicker, &usecase.MarkerClickedInput{FoodID: listing.ID}))

	got := owner.Named(realtime.EventFoodInteraction)
	require.Len(t, got, 1)
	assert.Equal(t, realtime.FoodInteraction{
		FoodID:          listing.ID,
		FoodTitle:       "Sourdough",
		InteractionType: realtime.InteractionViewedOnMap,
		InteractingUser: "Alice",
		Timestamp:       testStart,
	}, got[0])
	assert.Empty(t, clicker.Named(realtime.EventFoodInteraction))
}

func TestMapService_ReserveAttemptOwnerRules(t *testing.T) {
	ctx := context.Background()

	t.Run("owner acting on own listing", func(t *testing.T) {
		f := newMapFixture(t)
		owner, ownerSession := join(f.hub, "owner", "Bob")
		listing := &entity.Listing{ID: uuid.New(), PostedBy: ownerSession.UserID}
		f.listings.EXPECT().FindByID(ctx, listing.ID).Return(listing, nil)

		require.NoError(t, f.service.ReserveAttempt(ctx, owner, &usecase.ReserveAttemptInput{FoodID: listing.ID}))
		assert.Empty(t, owner.Named(realtime.EventFoodInteraction))
	})

	t.Run("owner opted out of realtime updates", func(t *testing.T) {
		f := newMapFixture(t)
		actor, _ := join(f.hub, "actor", "Alice")
		owner, ownerSession := join(f.hub, "owner", "Bob")
		off := false
		ownerSession.UpdatePreferences(&realtime.PreferencesPatch{RealTimeUpdates: &off})
		listing := &entity.Listing{ID: uuid.New(), PostedBy: ownerSession.UserID}
		f.listings.EXPECT().FindByID(ctx, listing.ID).Return(listing, nil)

		require.NoError(t, f.service.ReserveAttempt(ctx, actor, &usecase.ReserveAttemptInput{FoodID: listing.ID}))
		assert.Empty(t, owner.Named(realtime.EventFoodInteraction))
	})

	t.Run("owner offline", func(t *testing.T) {
		f := newMapFixture(t)
		actor, _ := join(f.hub, "actor", "Alice")
		listing := &entity.Listing{ID: uuid.New(), PostedBy: uuid.New()}
		f.listings.EXPECT().FindByID(ctx, listing.ID).Return(listing, nil)

		require.NoError(t, f.service.ReserveAttempt(ctx, actor, &usecase.ReserveAttemptInput{FoodID: listing.ID}))
	})

	t.Run("owner online", func(t *testing.T) {
		f := newMapFixture(t)
		actor, _ := join(f.hub, "actor", "Alice")
		owner, ownerSession := join(f.hub, "owner", "Bob")
		listing := &entity.Listing{ID: uuid.New(), PostedBy: ownerSession.UserID}
		f.listings.EXPECT().FindByID(ctx, listing.ID).Return(listing, nil)

		require.NoError(t, f.service.ReserveAttempt(ctx, actor, &usecase.ReserveAttemptInput{FoodID: listing.ID}))
		got := owner.Named(realtime.EventFoodInteraction)
		require.Len(t, got, 1)
		assert.Equal(t, realtime.InteractionReservationAttempt, got[0].(realtime.FoodInteraction).InteractionType)
	})
}

// newThrottledConn registers a connection whose session accepts one location update per every.
func newThrottledConn(h *realtime.Hub, userID uuid.UUID, every time.Duration) realtime.Conn {
	conn := newConn("throttled", userID)
	h.Register(conn, realtime.NewSession(userID, "Throttled", conn.ID(), h.Now(), every))

	return conn
}
