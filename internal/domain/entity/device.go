package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserDevice is a device registered for offline push notifications.
type UserDevice struct {
	ID        uuid.UUID `json:"id"`        // The Global Unique Identifier (GUID) for the device.
	UserID    uuid.UUID `json:"userId"`    // The owner of the device.
	FCMToken  string    `json:"fcmToken"`  // Firebase Cloud Messaging registration token.
	Platform  string    `json:"platform"`  // Device platform (ios, android, web).
	IsActive  bool      `json:"isActive"`  // Inactive devices receive no pushes.
	LastSeen  time.Time `json:"lastSeen"`  // Last time the device refreshed its token.
	CreatedAt time.Time `json:"createdAt"` // Timestamp of when this device was registered.
}
