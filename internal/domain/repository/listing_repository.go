package repository

import (
	"context"
	"time"

	"beacon/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrListingNotFound is returned when a listing does not exist.
var ErrListingNotFound = errors.New("listing not found")

// ListingRepository defines the listing operations the realtime engine needs.
type ListingRepository interface {
	// FindByID retrieves a listing by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error)

	// IncrementViews adds one view to the listing, counted under viewType as well.
	IncrementViews(ctx context.Context, id uuid.UUID, viewType entity.ListingViewType) error

	// ExpireOverdue marks every available or reserved listing whose expiry date is not
	// after now as expired, and returns the listings it changed.
	ExpireOverdue(ctx context.Context, now time.Time) ([]*entity.Listing, error)
}
