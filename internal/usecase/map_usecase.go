package usecase

import (
	"context"

	"beacon/internal/domain/realtime"

	"github.com/google/uuid"
)

// MapSessionStartInput is the payload of map_session_start.
type MapSessionStartInput struct {
	Viewport    *ViewportInput             `json:"viewport,omitempty" validate:"omitempty"`
	Preferences *realtime.PreferencesPatch `json:"preferences,omitempty" validate:"omitempty"`
}

// ViewportChangeInput is the payload of map_viewport_change.
type ViewportChangeInput struct {
	ViewportInput
	Filters realtime.MapFilters `json:"filters"`
}

// MapFilterChangeInput is the payload of map_filter_change.
type MapFilterChangeInput struct {
	Filters  realtime.MapFilters `json:"filters"`
	Viewport *ViewportInput      `json:"viewport,omitempty" validate:"omitempty"`
}

// JoinAreaInput is the payload of join_geographic_area. AreaID is derived from the
// coordinates and radius when empty.
type JoinAreaInput struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Radius    float64 `json:"radius" validate:"gte=0"`
	AreaID    string  `json:"areaId,omitempty" validate:"omitempty,max=128"`
}

// LeaveAreaInput is the payload of leave_geographic_area.
type LeaveAreaInput struct {
	AreaID string `json:"areaId" validate:"required,max=128"`
}

// LocationUpdateInput is the payload of location_update.
type LocationUpdateInput struct {
	Latitude   float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude  float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Accuracy   float64 `json:"accuracy" validate:"gte=0"`
	ShareLevel string  `json:"shareLevel,omitempty" validate:"omitempty,max=32"`
}

// MarkerViewedInput is the payload of food_marker_viewed.
type MarkerViewedInput struct {
	FoodID       uuid.UUID      `json:"foodId" validate:"required"`
	Duration     float64        `json:"duration" validate:"gte=0"`
	UserLocation *LatLng        `json:"userLocation,omitempty" validate:"omitempty"`
	MarkerData   map[string]any `json:"markerData,omitempty"`
}

// MarkerClickedInput is the payload of food_marker_clicked.
type MarkerClickedInput struct {
	FoodID       uuid.UUID `json:"foodId" validate:"required"`
	UserLocation *LatLng   `json:"userLocation,omitempty" validate:"omitempty"`
	ActionType   string    `json:"actionType,omitempty" validate:"omitempty,max=64"`
}

// MapSearchInput is the payload of map_search.
type MapSearchInput struct {
	Query    string              `json:"query" validate:"max=256"`
	Filters  realtime.MapFilters `json:"filters"`
	Location *LatLng             `json:"location,omitempty" validate:"omitempty"`
}

// ReserveAttemptInput is the payload of food_reserve_attempt.
type ReserveAttemptInput struct {
	FoodID          uuid.UUID `json:"foodId" validate:"required"`
	ReservationType string    `json:"reservationType,omitempty" validate:"omitempty,max=64"`
}

// FoodMessageInput is the payload of food_message_sent.
type FoodMessageInput struct {
	FoodID      uuid.UUID `json:"foodId" validate:"required"`
	MessageType string    `json:"messageType,omitempty" validate:"omitempty,max=64"`
}

// MapAnalyticsInput is the payload of map_analytics.
type MapAnalyticsInput struct {
	EventType string         `json:"eventType" validate:"required,max=64"`
	EventData map[string]any `json:"eventData,omitempty"`
}

// MapUsecase handles the map events of a realtime connection.
type MapUsecase interface {
	// StartMapSession marks the session as viewing the map and subscribes it to the
	// cells of its viewport.
	StartMapSession(ctx context.Context, conn realtime.Conn, input *MapSessionStartInput) error

	// EndMapSession drops every cell subscription and the viewport.
	EndMapSession(ctx context.Context, conn realtime.Conn) error

	// ChangeViewport resubscribes the session to the cells of the new viewport and
	// schedules the debounced viewport update.
	ChangeViewport(ctx context.Context, conn realtime.Conn, input *ViewportChangeInput) error

	// ChangeFilters replaces the filters of the stored viewport.
	ChangeFilters(ctx context.Context, conn realtime.Conn, input *MapFilterChangeInput) error

	// JoinArea subscribes conn to a named area and returns the area identifier.
	JoinArea(ctx context.Context, conn realtime.Conn, input *JoinAreaInput) (string, error)

	// LeaveArea unsubscribes conn from a named area.
	LeaveArea(ctx context.Context, conn realtime.Conn, input *LeaveAreaInput) error

	// UpdateLocation records the user's position, subject to sharing level and throttling.
	UpdateLocation(ctx context.Context, conn realtime.Conn, input *LocationUpdateInput) error

	// SetPreferences merges a preferences patch and echoes the result to conn.
	SetPreferences(ctx context.Context, conn realtime.Conn, input *realtime.PreferencesPatch) error

	// Search announces a map search to nearby map viewers.
	Search(ctx context.Context, conn realtime.Conn, input *MapSearchInput) error

	// MarkerViewed counts a marker view of a listing.
	MarkerViewed(ctx context.Context, conn realtime.Conn, input *MarkerViewedInput) error

	// MarkerClicked counts a marker click and tells the listing owner.
	MarkerClicked(ctx context.Context, conn realtime.Conn, input *MarkerClickedInput) error

	// ReserveAttempt tells the listing owner someone is trying to reserve it.
	ReserveAttempt(ctx context.Context, conn realtime.Conn, input *ReserveAttemptInput) error

	// FoodMessageSent records that a user messaged about a listing.
	FoodMessageSent(ctx context.Context, conn realtime.Conn, input *FoodMessageInput) error

	// Analytics records a client analytics event.
	Analytics(ctx context.Context, conn realtime.Conn, input *MapAnalyticsInput) error
}
