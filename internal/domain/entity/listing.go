package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// ListingStatus is the lifecycle state of a food listing.
type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusReserved  ListingStatus = "reserved"
	ListingStatusCollected ListingStatus = "collected"
	ListingStatusExpired   ListingStatus = "expired"
)

// CategoryMeal is the listing category rendered with the meal glyph in notifications.
const CategoryMeal = "meal"

const (
	hotDealExpiryWindow = 24 * time.Hour
	hotDealFreshWindow  = 2 * time.Hour
	hotDealPriceCeiling = 10
)

// Listing is a food item offered on the marketplace. The realtime engine references
// listings but never owns their lifecycle.
type Listing struct {
	ID          uuid.UUID     `json:"id"`                   // The Global Unique Identifier (GUID) for the listing.
	PostedBy    uuid.UUID     `json:"postedBy"`             // The owner of the listing.
	Title       string        `json:"title"`                // Short title shown on the map and in notifications.
	Description string        `json:"description"`          // Free-form description.
	Category    string        `json:"category"`             // Category used by preference filters (meal, bakery, ...).
	Quantity    int           `json:"quantity"`             // Number of portions offered.
	IsFree      bool          `json:"isFree"`               // Free listings never qualify as cheap deals.
	Price       float64       `json:"price"`                // Price in the marketplace currency; zero when free.
	Status      ListingStatus `json:"status"`               // Lifecycle state.
	Location    *orb.Point    `json:"location,omitempty"`   // Pickup point as [lng, lat]; nil when unknown.
	ExpiryDate  *time.Time    `json:"expiryDate,omitempty"` // Optional best-before time.
	ExpiredAt   *time.Time    `json:"expiredAt,omitempty"`  // When the expiry sweep retired the listing.
	Views       int           `json:"views"`                // Total view counter.
	CreatedAt   time.Time     `json:"createdAt"`            // Timestamp of when the listing was posted.
	UpdatedAt   time.Time     `json:"updatedAt"`            // Timestamp of the last modification.
}

// IsHotDeal reports whether the listing expires within the next 24 hours, is a paid
// listing under 10, or was posted within the last 2 hours.
func (l *Listing) IsHotDeal(now time.Time) bool {
	if l.ExpiryDate != nil {
		untilExpiry := l.ExpiryDate.Sub(now)
		if untilExpiry > 0 && untilExpiry <= hotDealExpiryWindow {
			return true
		}
	}

	if !l.IsFree && l.Price < hotDealPriceCeiling {
		return true
	}

	return now.Sub(l.CreatedAt) < hotDealFreshWindow
}

// IsExpired reports whether the listing's status or expiry date says it is no longer offered.
func (l *Listing) IsExpired(now time.Time) bool {
	if l.Status == ListingStatusExpired {
		return true
	}

	return l.ExpiryDate != nil && !l.ExpiryDate.After(now)
}

// ListingViewType distinguishes the surfaces a listing view is counted from.
type ListingViewType string

const (
	ListingViewMapMarker ListingViewType = "map_marker"
	ListingViewMapClick  ListingViewType = "map_click"
)
