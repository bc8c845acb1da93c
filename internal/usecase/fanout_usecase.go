package usecase

import (
	"context"

	"beacon/internal/domain/entity"
	"beacon/internal/domain/service"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// FanoutUsecase announces listing changes to connected users.
type FanoutUsecase interface {
	// ListingCreated sends tiered nearby notifications and the cell broadcast of a new listing.
	ListingCreated(ctx context.Context, listing *entity.Listing)

	// ListingUpdated broadcasts a changed listing globally, to its cells and to nearby viewers.
	ListingUpdated(ctx context.Context, listing *entity.Listing)

	// ListingDeleted broadcasts a removed listing globally and, with a location, to its cells.
	ListingDeleted(ctx context.Context, id uuid.UUID, location *orb.Point)

	// HandleListingEvent resolves a queued listing event and fans it out.
	HandleListingEvent(ctx context.Context, event *service.ListingEvent) error

	// ExpireListings retires overdue listings and announces each one. It returns how
	// many were expired.
	ExpireListings(ctx context.Context) (int, error)
}
