package postgres

import (
	"context"
	"time"

	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/repository"
	"beacon/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// listingRepository implements the repository.ListingRepository interface.
type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository is the constructor for listingRepository.
func NewListingRepository(db *gorm.DB) repository.ListingRepository {
	return &listingRepository{
		db: db,
	}
}

// FindByID retrieves a listing by its unique ID.
func (repo *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	var listingM model.ListingModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&listingM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrListingNotFound
		}

		return nil, errors.Wrap(err, "failed to find listing by id")
	}

	return toListingDomain(&listingM), nil
}

// IncrementViews adds one view to the total and to the counter of viewType.
func (repo *listingRepository) IncrementViews(ctx context.Context, id uuid.UUID, viewType entity.ListingViewType) error {
	updates := map[string]any{
		"views": gorm.Expr("views + 1"),
	}

	switch viewType {
	case entity.ListingViewMapMarker:
		updates["marker_views"] = gorm.Expr("marker_views + 1")
	case entity.ListingViewMapClick:
		updates["click_views"] = gorm.Expr("click_views + 1")
	default:
		return domainerrors.ErrValidationFailed.WithDetails("unknown view type " + string(viewType))
	}

	result := repo.db.WithContext(ctx).
		Model(&model.ListingModel{}).
		Where("id = ?", id).
		UpdateColumns(updates)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to increment listing views")
	}

	if result.RowsAffected == 0 {
		return repository.ErrListingNotFound
	}

	return nil
}

// ExpireOverdue marks overdue available or reserved listings as expired and returns them.
func (repo *listingRepository) ExpireOverdue(ctx context.Context, now time.Time) ([]*entity.Listing, error) {
	var listingModels []*model.ListingModel

	result := repo.db.WithContext(ctx).
		Model(&listingModels).
		Clauses(clause.Returning{}).
		Where("status IN ? AND expiry_date IS NOT NULL AND expiry_date <= ?",
			[]string{string(entity.ListingStatusAvailable), string(entity.ListingStatusReserved)}, now).
		Updates(map[string]any{
			"status":     string(entity.ListingStatusExpired),
			"expired_at": now,
		})

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to expire overdue listings")
	}

	listings := make([]*entity.Listing, 0, len(listingModels))
	for _, listingM := range listingModels {
		listings = append(listings, toListingDomain(listingM))
	}

	return listings, nil
}

// --- Mapper Functions ---

// toListingDomain converts a GORM ListingModel to a domain Listing entity.
func toListingDomain(data *model.ListingModel) *entity.Listing {
	if data == nil {
		return nil
	}

	return &entity.Listing{
		ID:          data.ID,
		PostedBy:    data.PostedBy,
		Title:       data.Title,
		Description: data.Description,
		Category:    data.Category,
		Quantity:    data.Quantity,
		IsFree:      data.IsFree,
		Price:       data.Price,
		Status:      entity.ListingStatus(data.Status),
		Location:    model.PointFromColumns(data.Latitude, data.Longitude),
		ExpiryDate:  data.ExpiryDate,
		ExpiredAt:   data.ExpiredAt,
		Views:       data.Views,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
