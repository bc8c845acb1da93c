// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// User is the marketplace account behind a realtime connection. Only the fields the
// realtime engine reads or writes are modelled here.
type User struct {
	ID        uuid.UUID  `json:"id"`                 // The Global Unique Identifier (GUID) for the user.
	Email     string     `json:"email"`              // The user's primary contact email.
	Name      string     `json:"name"`               // The user's display name.
	Location  *orb.Point `json:"location,omitempty"` // Last persisted location as [lng, lat]; nil when never shared.
	CreatedAt time.Time  `json:"createdAt"`          // Timestamp of when this user account was created.
	UpdatedAt time.Time  `json:"updatedAt"`          // Timestamp of the last modification to this user's data.
}

// UserSummary is the public projection of a user embedded in realtime payloads.
type UserSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Summary returns the public projection of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name}
}
