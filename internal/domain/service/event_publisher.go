package service

import (
	"context"
)

// ListingEventType is the kind of change announced for a listing.
type ListingEventType string

const (
	ListingCreated ListingEventType = "listing.created"
	ListingUpdated ListingEventType = "listing.updated"
	ListingDeleted ListingEventType = "listing.deleted"
)

// ListingEvent announces a listing change to the realtime worker. Delete events carry
// the last known coordinates because the listing can no longer be loaded.
type ListingEvent struct {
	RequestID string           `json:"request_id,omitempty"` // For distributed tracing
	EventType ListingEventType `json:"event_type" validate:"required,oneof=listing.created listing.updated listing.deleted"`
	ListingID string           `json:"listing_id" validate:"required,uuid"`
	Latitude  *float64         `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64         `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishListingEvent publishes a listing change for async fan-out
	PublishListingEvent(ctx context.Context, event *ListingEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
