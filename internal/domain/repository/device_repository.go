package repository

import (
	"context"

	"beacon/internal/domain/entity"

	"github.com/google/uuid"
)

// DeviceRepository defines the device operations used by offline push.
type DeviceRepository interface {
	// FindActiveDevicesByUser retrieves all active devices for a specific user.
	FindActiveDevicesByUser(ctx context.Context, userID uuid.UUID) ([]*entity.UserDevice, error)

	// DeleteDevicesByToken removes the devices registered with any of the given tokens.
	DeleteDevicesByToken(ctx context.Context, tokens []string) error
}
